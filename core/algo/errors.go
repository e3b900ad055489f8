// Package algo has the numeric building blocks of periodicity detection:
// windowing, autocorrelation estimators, lag ranking and period resolution.
package algo

import "errors"

// Sentinel errors returned by the estimators and windowing. Callers should
// match them with errors.Is since they are usually wrapped with context.
var (
	// ErrInsufficientData means a series has fewer distinct days than required.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrZeroVariance means a series has a single distinct value, so the
	// correlation coefficients are undefined.
	ErrZeroVariance = errors.New("zero variance")

	// ErrMalformedInput means a series carries non-finite values or
	// conflicting values for the same day.
	ErrMalformedInput = errors.New("malformed input")

	// ErrLagWindow means the requested lag window does not fit the series.
	ErrLagWindow = errors.New("invalid lag window")
)
