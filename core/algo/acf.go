package algo

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ACF computes the sample autocorrelation of x for every lag in [0, maxLag].
//
//	acf(k) = sum_{t=k}^{n-1} (x_t - m)(x_{t-k} - m) / sum_{t=0}^{n-1} (x_t - m)^2
//
// The denominator is the full-series sum of squares, so acf(0) is exactly 1 and
// every coefficient stays within [-1, 1]. A series with a single distinct value
// yields ErrZeroVariance.
func ACF(x []float64, maxLag int) ([]float64, error) {
	n := len(x)
	if maxLag < 0 || maxLag >= n {
		return nil, fmt.Errorf("max lag %d for %d observations: %w", maxLag, n, ErrLagWindow)
	}
	if isConstant(x) {
		return nil, ErrZeroVariance
	}

	mean := stat.Mean(x, nil)
	dev := make([]float64, n)
	for i, v := range x {
		dev[i] = v - mean
	}

	var denom float64
	for _, d := range dev {
		denom += d * d
	}

	acf := make([]float64, maxLag+1)
	acf[0] = 1
	for k := 1; k <= maxLag; k++ {
		var num float64
		for t := k; t < n; t++ {
			num += dev[t] * dev[t-k]
		}
		acf[k] = num / denom
	}
	return acf, nil
}

// isConstant reports whether x has at most one distinct value.
func isConstant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}
