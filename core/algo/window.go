package algo

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/huangsam/cadence/schema"
)

// TruncateDay normalizes a timestamp to midnight UTC of its calendar day.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Window keeps the windowSize most recent distinct days of a series and returns
// them oldest first. Days are selected by timestamp, never by input order.
//
// Points sharing a day collapse to the one with the lowest Row when their values
// agree. Disagreeing values for a day, NaN or infinite values fail the series
// with ErrMalformedInput. A series with fewer than minCoverage distinct days fails
// with ErrInsufficientData. A minCoverage <= 0 means "same as windowSize".
func Window(points []schema.Point, windowSize, minCoverage int) ([]schema.Point, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive (received %d): %w", windowSize, ErrLagWindow)
	}
	if minCoverage <= 0 {
		minCoverage = windowSize
	}

	sorted := make([]schema.Point, len(points))
	for i, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, fmt.Errorf("non-finite value %v at row %d: %w", p.Value, p.Row, ErrMalformedInput)
		}
		p.Day = TruncateDay(p.Day)
		sorted[i] = p
	}

	// Stable on (day, row) so duplicate days always resolve to the earliest row.
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Day.Equal(sorted[j].Day) {
			return sorted[i].Day.Before(sorted[j].Day)
		}
		return sorted[i].Row < sorted[j].Row
	})

	distinct := sorted[:0]
	for _, p := range sorted {
		if n := len(distinct); n > 0 && distinct[n-1].Day.Equal(p.Day) {
			kept := distinct[n-1]
			if kept.Value != p.Value {
				return nil, fmt.Errorf("conflicting values %v (row %d) and %v (row %d) on %s: %w",
					kept.Value, kept.Row, p.Value, p.Row, p.Day.Format(time.DateOnly), ErrMalformedInput)
			}
			continue
		}
		distinct = append(distinct, p)
	}

	if len(distinct) < minCoverage {
		return nil, fmt.Errorf("%d distinct days, need at least %d: %w", len(distinct), minCoverage, ErrInsufficientData)
	}
	if len(distinct) > windowSize {
		distinct = distinct[len(distinct)-windowSize:]
	}

	out := make([]schema.Point, len(distinct))
	copy(out, distinct)
	return out, nil
}
