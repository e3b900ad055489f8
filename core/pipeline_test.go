package core

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/huangsam/cadence/core/algo"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC)

// weeklyProfile is a seven-day usage shape that resolves to a period of 7.
var weeklyProfile = []float64{10, 20, 30, 40, 50, 5, 5}

func testConfig() *contract.Config {
	return &contract.Config{
		Metrics:   []string{"value_max"},
		Params:    contract.DefaultDetectionParams(),
		Workers:   4,
		Precision: 2,
	}
}

// repeat cycles pattern until n values are produced.
func repeat(pattern []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = pattern[i%len(pattern)]
	}
	return out
}

// daily builds one value_max observation per day for entity, numbering rows from firstRow.
func daily(entity string, values []float64, firstRow int) []schema.Observation {
	obs := make([]schema.Observation, len(values))
	for i, v := range values {
		obs[i] = schema.Observation{
			EntityID: entity,
			Clock:    day0.AddDate(0, 0, i),
			Metrics:  map[string]float64{"value_max": v},
			Row:      firstRow + i,
		}
	}
	return obs
}

// mixedInput has one entity per outcome: periodic, degenerate, insufficient and conflicting.
func mixedInput() schema.LoadOutput {
	var obs []schema.Observation
	obs = append(obs, daily("srv-weekly", repeat(weeklyProfile, 95), 0)...)
	obs = append(obs, daily("srv-flat", repeat([]float64{3}, 95), 1000)...)
	obs = append(obs, daily("srv-short", repeat(weeklyProfile, 94), 2000)...)
	conflicting := daily("srv-dupe", repeat(weeklyProfile, 95), 3000)
	dup := conflicting[10]
	dup.Metrics = map[string]float64{"value_max": 999}
	dup.Row = 4000
	obs = append(obs, append(conflicting, dup)...)
	return schema.LoadOutput{Observations: obs}
}

func TestRunPipeline_Outcomes(t *testing.T) {
	out, err := RunPipeline(context.Background(), testConfig(), mixedInput())
	require.NoError(t, err)

	require.Len(t, out.Results, 2)
	flat, weekly := out.Results[0], out.Results[1]

	assert.Equal(t, "srv-flat", flat.EntityID)
	assert.Equal(t, schema.DegenerateStatus, flat.Status)
	assert.Nil(t, flat.Period)
	assert.Empty(t, flat.ACF)
	assert.Empty(t, flat.PACF)
	assert.Equal(t, schema.NoneLabel, flat.Label)

	assert.Equal(t, "srv-weekly", weekly.EntityID)
	assert.Equal(t, "value_max", weekly.Metric)
	assert.Equal(t, schema.PeriodicStatus, weekly.Status)
	require.NotNil(t, weekly.Period)
	assert.Equal(t, 7, *weekly.Period)
	assert.Equal(t, schema.WeeklyLabel, weekly.Label)
	assert.Len(t, weekly.ACF, contract.DefaultTopK)
	assert.Equal(t, 7, weekly.ACF[0].Lag)
	assert.Nil(t, weekly.Stats)
	assert.Nil(t, weekly.Window)

	diag := out.Diagnostics
	assert.Equal(t, 4, diag.InputSeries)
	assert.Equal(t, 2, diag.Results)
	assert.Equal(t, 1, diag.Periodic)
	assert.Equal(t, 0, diag.NoPeriod)
	assert.Equal(t, 1, diag.DegeneratePACF)
	assert.Equal(t, 2, diag.TotalExcluded())
	assert.Equal(t, 1, diag.Excluded[schema.InsufficientDataReason])
	assert.Equal(t, 1, diag.Excluded[schema.MalformedInputReason])

	require.Len(t, diag.Exclusions, 2)
	dupe, short := diag.Exclusions[0], diag.Exclusions[1]
	assert.Equal(t, "srv-dupe", dupe.EntityID)
	assert.Equal(t, schema.MalformedInputReason, dupe.Reason)
	assert.Equal(t, 96, dupe.Observations)
	assert.Contains(t, dupe.Message, "conflicting values")

	assert.Equal(t, "srv-short", short.EntityID)
	assert.Equal(t, schema.InsufficientDataReason, short.Reason)
	assert.Equal(t, 94, short.Observations)
	assert.Contains(t, short.Message, "94 distinct days, need at least 95")
}

func TestRunPipeline_RowErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics = []string{"value_max", "value_avg"}

	input := schema.LoadOutput{
		Observations: daily("srv-weekly", repeat(weeklyProfile, 95), 2),
		RowErrors: []schema.RowError{
			{EntityID: "srv-bad", Row: 7, Message: "unrecognized timestamp 'x'"},
			{EntityID: "srv-weekly", Metric: "value_avg", Row: 9, Message: "non-numeric value_avg value 'n/a'"},
			{EntityID: "srv-weekly", Metric: "value_avg", Row: 4, Message: "non-numeric value_avg value '?'"},
		},
	}

	out, err := RunPipeline(context.Background(), cfg, input)
	require.NoError(t, err)

	// The malformed metric never hides the healthy one
	require.Len(t, out.Results, 1)
	assert.Equal(t, "srv-weekly", out.Results[0].EntityID)
	assert.Equal(t, "value_max", out.Results[0].Metric)

	require.Len(t, out.Diagnostics.Exclusions, 3)
	want := []struct{ entity, metric, message string }{
		{"srv-bad", "value_avg", "row 7: unrecognized timestamp 'x'"},
		{"srv-bad", "value_max", "row 7: unrecognized timestamp 'x'"},
		{"srv-weekly", "value_avg", "row 4: non-numeric value_avg value '?'"},
	}
	for i, w := range want {
		got := out.Diagnostics.Exclusions[i]
		assert.Equal(t, w.entity, got.EntityID)
		assert.Equal(t, w.metric, got.Metric)
		assert.Equal(t, schema.MalformedInputReason, got.Reason)
		assert.Equal(t, w.message, got.Message)
	}
	assert.Equal(t, 4, out.Diagnostics.InputSeries)
}

func TestRunPipeline_OrderIndependent(t *testing.T) {
	input := mixedInput()
	baseline, err := RunPipeline(context.Background(), testConfig(), input)
	require.NoError(t, err)

	for _, workers := range []int{1, 3, 16} {
		shuffled := make([]schema.Observation, len(input.Observations))
		copy(shuffled, input.Observations)
		rng := rand.New(rand.NewPCG(uint64(workers), 42))
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		cfg := testConfig()
		cfg.Workers = workers
		out, err := RunPipeline(context.Background(), cfg, schema.LoadOutput{Observations: shuffled})
		require.NoError(t, err)
		assert.Equal(t, baseline, out, "workers=%d", workers)
	}
}

func TestRunPipeline_DetailAndAnnotate(t *testing.T) {
	cfg := testConfig()
	cfg.Detail = true
	cfg.AnnotateRows = true

	out, err := RunPipeline(context.Background(), cfg, schema.LoadOutput{
		Observations: daily("srv-weekly", repeat(weeklyProfile, 120), 0),
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)

	r := out.Results[0]
	require.NotNil(t, r.Stats)
	assert.Greater(t, r.Stats.Mean, 0.0)
	assert.Greater(t, r.Stats.StdDev, 0.0)
	require.Len(t, r.Window, contract.DefaultWindow)
	assert.Equal(t, day0.AddDate(0, 0, 25), r.Window[0].Day)
	assert.Equal(t, day0.AddDate(0, 0, 119), r.Window[len(r.Window)-1].Day)

	rows := schema.AnnotateRows(out.Results)
	assert.Len(t, rows, contract.DefaultWindow)
	assert.Equal(t, r.Period, rows[0].Period)
}

func TestRunPipeline_MinCoverage(t *testing.T) {
	cfg := testConfig()
	cfg.Params.MinCoverage = 80
	cfg.AnnotateRows = true

	out, err := RunPipeline(context.Background(), cfg, schema.LoadOutput{
		Observations: append(
			daily("srv-short", repeat(weeklyProfile, 84), 0),
			daily("srv-shorter", repeat(weeklyProfile, 79), 100)...,
		),
	})
	require.NoError(t, err)

	// A series between the coverage and the window keeps all its days
	require.Len(t, out.Results, 1)
	assert.Equal(t, "srv-short", out.Results[0].EntityID)
	assert.Len(t, out.Results[0].Window, 84)

	require.Len(t, out.Diagnostics.Exclusions, 1)
	assert.Equal(t, schema.InsufficientDataReason, out.Diagnostics.Exclusions[0].Reason)
}

func TestRunPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunPipeline(ctx, testConfig(), mixedInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "detection interrupted")
}

func TestRunPipeline_Empty(t *testing.T) {
	out, err := RunPipeline(context.Background(), testConfig(), schema.LoadOutput{})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Equal(t, 0, out.Diagnostics.InputSeries)
	assert.NotNil(t, out.Diagnostics.Exclusions)
}

func TestExclusionReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want schema.ExclusionReason
	}{
		{"insufficient", fmt.Errorf("window: %w", algo.ErrInsufficientData), schema.InsufficientDataReason},
		{"lag window", fmt.Errorf("acf: %w", algo.ErrLagWindow), schema.InsufficientDataReason},
		{"malformed", fmt.Errorf("window: %w", algo.ErrMalformedInput), schema.MalformedInputReason},
		{"anything else", assert.AnError, schema.MalformedInputReason},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exclusionReason(tt.err))
		})
	}
}
