package algo

import "github.com/huangsam/cadence/schema"

// Resolve picks the period of a series from its ranked ACF and PACF lags.
//
// ACF candidates are walked in ranked order. The first one whose ACF score is
// above acfThreshold and that also appears in the PACF list with a score above
// pacfThreshold wins. ACF order decides ties, never PACF order or lag value.
// A nil result means no significant period.
func Resolve(acf, pacf []schema.LagScore, acfThreshold, pacfThreshold float64) *int {
	for _, candidate := range acf {
		if candidate.Score <= acfThreshold {
			continue
		}
		for _, other := range pacf {
			if other.Lag == candidate.Lag && other.Score > pacfThreshold {
				period := candidate.Lag
				return &period
			}
		}
	}
	return nil
}
