package core

import (
	"github.com/huangsam/cadence/schema"
	"github.com/montanaflynn/stats"
)

// seriesStats summarizes a windowed series for detail output.
// Statistics that cannot be computed are left at zero.
func seriesStats(values []float64) *schema.SeriesStats {
	data := stats.Float64Data(values)
	summary := &schema.SeriesStats{}
	if mean, err := data.Mean(); err == nil {
		summary.Mean = mean
	}
	if sd, err := data.StandardDeviation(); err == nil {
		summary.StdDev = sd
	}
	if p95, err := data.Percentile(95); err == nil {
		summary.P95 = p95
	}
	return summary
}
