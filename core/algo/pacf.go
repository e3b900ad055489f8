package algo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// rcond is the relative singular value cutoff of the least squares solver.
// Smaller singular values are treated as zero, which yields the minimum-norm
// solution for rank deficient designs (e.g. a noise-free periodic series).
const rcond = 1e-10

// PACF computes the partial autocorrelation of x for every lag in [0, maxLag].
//
// The coefficient at lag k is the last coefficient of the least squares fit
//
//	x_t = c + b_1 x_{t-1} + ... + b_k x_{t-k},  t = k..n-1
//
// i.e. the correlation between x_t and x_{t-k} once the linear dependence on
// lags 1..k-1 is removed. maxLag must be below half the series length. A series
// with a single distinct value yields ErrZeroVariance.
func PACF(x []float64, maxLag int) ([]float64, error) {
	n := len(x)
	if maxLag < 0 || 2*maxLag >= n {
		return nil, fmt.Errorf("max lag %d must be below half of %d observations: %w", maxLag, n, ErrLagWindow)
	}
	if isConstant(x) {
		return nil, ErrZeroVariance
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1
	for k := 1; k <= maxLag; k++ {
		coef, err := lagRegression(x, k)
		if err != nil {
			return nil, fmt.Errorf("lag %d: %w", k, err)
		}
		pacf[k] = coef
	}
	return pacf, nil
}

// lagRegression fits x_t on an intercept and lags 1..k and returns the lag k coefficient.
func lagRegression(x []float64, k int) (float64, error) {
	rows := len(x) - k
	cols := k + 1

	design := mat.NewDense(rows, cols, nil)
	target := make([]float64, rows)
	for r := range rows {
		t := r + k
		design.Set(r, 0, 1)
		for j := 1; j <= k; j++ {
			design.Set(r, j, x[t-j])
		}
		target[r] = x[t]
	}

	beta, err := minNormSolve(design, target)
	if err != nil {
		return 0, err
	}
	coef := beta[k]
	if math.IsNaN(coef) || math.IsInf(coef, 0) {
		return 0, ErrZeroVariance
	}
	return coef, nil
}

// minNormSolve returns the minimum-norm least squares solution of a*beta = b
// through the thin singular value decomposition of a.
func minNormSolve(a *mat.Dense, b []float64) ([]float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("singular value decomposition did not converge: %w", ErrZeroVariance)
	}

	values := svd.Values(nil)
	if len(values) == 0 || values[0] == 0 {
		return nil, ErrZeroVariance
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	rows, cols := a.Dims()
	cutoff := rcond * values[0]
	beta := make([]float64, cols)
	for i, sigma := range values {
		if sigma <= cutoff {
			break // values are sorted in decreasing order
		}
		var uty float64
		for r := range rows {
			uty += u.At(r, i) * b[r]
		}
		scale := uty / sigma
		for c := range cols {
			beta[c] += scale * v.At(c, i)
		}
	}
	return beta, nil
}
