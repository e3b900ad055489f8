package outwriter

import (
	"testing"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

func intPtr(v int) *int { return &v }

// testConfig returns a text output configuration with a fixed width.
func testConfig() *contract.Config {
	return &contract.Config{
		Source:      contract.SourceConfig{Kind: schema.FileSource, Path: "/data/zabbix_trends.csv"},
		Metrics:     []string{"value_max"},
		Params:      contract.DefaultDetectionParams(),
		ResultLimit: 100,
		Workers:     4,
		Precision:   2,
		Output:      schema.TextOut,
		Width:       140,
	}
}

// sampleOutput has one result per outcome plus one exclusion.
func sampleOutput(t *testing.T) *schema.DetectOutput {
	t.Helper()
	day := time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC)
	return &schema.DetectOutput{
		Results: []schema.PeriodResult{
			{
				EntityID: "srv-01", Metric: "value_max", Period: intPtr(7),
				Label: schema.WeeklyLabel, Status: schema.PeriodicStatus,
				ACF:    []schema.LagScore{{Lag: 7, Score: 0.9247}, {Lag: 14, Score: 0.85}, {Lag: 21, Score: 0.78}},
				PACF:   []schema.LagScore{{Lag: 7, Score: 0.99}, {Lag: 14, Score: 0.5}},
				Stats:  &schema.SeriesStats{Mean: 22.1, StdDev: 16.4, P95: 50},
				Window: []schema.Point{{Day: day, Value: 10}, {Day: day.AddDate(0, 0, 1), Value: 20}},
			},
			{
				EntityID: "srv-02", Metric: "value_max",
				Label: schema.NoneLabel, Status: schema.NoPeriodStatus,
				ACF:  []schema.LagScore{{Lag: 5, Score: 0.12}},
				PACF: []schema.LagScore{{Lag: 5, Score: 0.1}},
			},
			{
				EntityID: "srv-03", Metric: "value_max",
				Label: schema.NoneLabel, Status: schema.DegenerateStatus,
				ACF: []schema.LagScore{}, PACF: []schema.LagScore{},
			},
		},
		Diagnostics: schema.Diagnostics{
			InputSeries: 4, Results: 3, Periodic: 1, NoPeriod: 1, DegeneratePACF: 1,
			Excluded: map[schema.ExclusionReason]int{schema.InsufficientDataReason: 1},
			Exclusions: []schema.Exclusion{
				{EntityID: "srv-04", Metric: "value_max", Reason: schema.InsufficientDataReason, Observations: 94, Message: "94 distinct days, need 95"},
			},
		},
	}
}
