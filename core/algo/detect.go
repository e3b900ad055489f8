package algo

import (
	"errors"
	"fmt"

	"github.com/huangsam/cadence/schema"
)

// Default detection parameters.
const (
	DefaultWindowSize    = 95
	DefaultMaxLag        = 35
	DefaultDropLags      = 3
	DefaultTopK          = 3
	DefaultACFThreshold  = 0.60
	DefaultPACFThreshold = 0.50
)

// Params holds the knobs of period detection for a single windowed series.
type Params struct {
	MaxLag        int     // Largest lag in days fed to the estimators
	DropLags      int     // Lags below this are discarded before ranking
	TopK          int     // Length of each ranked lag list
	ACFThreshold  float64 // ACF score a candidate must exceed
	PACFThreshold float64 // PACF score a candidate must exceed
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		MaxLag:        DefaultMaxLag,
		DropLags:      DefaultDropLags,
		TopK:          DefaultTopK,
		ACFThreshold:  DefaultACFThreshold,
		PACFThreshold: DefaultPACFThreshold,
	}
}

// Detection is the outcome of running both estimators and the resolution on one series.
type Detection struct {
	ACF        []schema.LagScore
	PACF       []schema.LagScore
	Period     *int
	Degenerate bool // PACF was undefined for this series
}

// Detect ranks the ACF and PACF lags of a windowed series and resolves its period.
// A zero variance series is not an error: it comes back Degenerate with empty
// lag lists and no period. A lag window that does not fit the series is an error.
func Detect(values []float64, p Params) (Detection, error) {
	var d Detection

	acf, err := ACF(values, p.MaxLag)
	switch {
	case errors.Is(err, ErrZeroVariance):
		acf = nil
	case err != nil:
		return d, fmt.Errorf("acf: %w", err)
	}

	pacf, err := PACF(values, p.MaxLag)
	switch {
	case errors.Is(err, ErrZeroVariance):
		pacf = nil
		d.Degenerate = true
	case err != nil:
		return d, fmt.Errorf("pacf: %w", err)
	}

	d.ACF = Rank(acf, p.DropLags, p.TopK)
	d.PACF = Rank(pacf, p.DropLags, p.TopK)
	d.Period = Resolve(d.ACF, d.PACF, p.ACFThreshold, p.PACFThreshold)
	return d, nil
}
