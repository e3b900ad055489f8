package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/iocache"
	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeSource returns canned observations.
type fakeSource struct {
	out schema.LoadOutput
	err error
}

func (f fakeSource) Load(ctx context.Context) (schema.LoadOutput, error) {
	if err := ctx.Err(); err != nil {
		return schema.LoadOutput{}, err
	}
	return f.out, f.err
}

// writeTrendsCSV writes the weekly fixture as a Zabbix style trends export.
func writeTrendsCSV(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("itemid,clock,value_max\n")
	for i, v := range repeat(weeklyProfile, 95) {
		fmt.Fprintf(&sb, "10084,%d,%g\n", day0.AddDate(0, 0, i).Unix(), v)
	}
	path := filepath.Join(t.TempDir(), "trends.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func fileConfig(path string) *contract.Config {
	cfg := testConfig()
	cfg.Source = contract.SourceConfig{
		Kind:         schema.FileSource,
		Path:         path,
		EntityColumn: contract.DefaultEntityColumn,
		TimeColumn:   contract.DefaultTimeColumn,
	}
	return cfg
}

func TestDetectFromSource_TracksRun(t *testing.T) {
	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.MatchedBy(func(params map[string]any) bool {
		return params["input"] == "trends.csv" && params["workers"] == 4
	})).Return(int64(11), nil)
	store.On("RecordPeriods", int64(11), mock.Anything, mock.MatchedBy(func(results []schema.PeriodResult) bool {
		return len(results) == 2
	})).Return(nil)
	store.On("EndRun", int64(11), mock.Anything, schema.RunSummary{TotalSeries: 4, PeriodicSeries: 1, ExcludedSeries: 2}).Return(nil)
	mgr := &iocache.MockRunManager{}
	mgr.On("GetRunStore").Return(store)

	cfg := testConfig()
	cfg.Source.Path = "trends.csv"
	out, duration, err := detectFromSource(context.Background(), cfg, mgr, fakeSource{out: mixedInput()}, time.Now())
	require.NoError(t, err)
	assert.Len(t, out.Results, 2)
	assert.Greater(t, duration, time.Duration(0))

	store.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestDetectFromSource_TrackingFailureIsNotFatal(t *testing.T) {
	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), errors.New("database is locked"))
	mgr := &iocache.MockRunManager{}
	mgr.On("GetRunStore").Return(store)

	out, _, err := detectFromSource(context.Background(), testConfig(), mgr, fakeSource{out: mixedInput()}, time.Now())
	require.NoError(t, err)
	assert.Len(t, out.Results, 2)
	store.AssertNotCalled(t, "RecordPeriods", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestDetectFromSource_Errors(t *testing.T) {
	t.Run("load error", func(t *testing.T) {
		_, _, err := detectFromSource(context.Background(), testConfig(), nil, fakeSource{err: errors.New("boom")}, time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load observations: boom")
	})

	t.Run("nothing loaded", func(t *testing.T) {
		_, _, err := detectFromSource(context.Background(), testConfig(), nil, fakeSource{}, time.Now())
		assert.ErrorIs(t, err, ErrNoObservations)
	})

	t.Run("only row errors", func(t *testing.T) {
		src := fakeSource{out: schema.LoadOutput{RowErrors: []schema.RowError{{EntityID: "a", Row: 2, Message: "empty timestamp"}}}}
		out, _, err := detectFromSource(context.Background(), testConfig(), nil, src, time.Now())
		require.NoError(t, err)
		assert.Empty(t, out.Results)
		assert.Equal(t, 1, out.Diagnostics.Excluded[schema.MalformedInputReason])
	})
}

func TestGetDetectResults_File(t *testing.T) {
	cfg := fileConfig(writeTrendsCSV(t))

	out, _, err := GetDetectResults(WithSuppressHeader(context.Background()), cfg, nil)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	r := out.Results[0]
	assert.Equal(t, "10084", r.EntityID)
	require.NotNil(t, r.Period)
	assert.Equal(t, 7, *r.Period)
}

func TestGetDetectResults_UnsupportedFile(t *testing.T) {
	_, _, err := GetDetectResults(WithSuppressHeader(context.Background()), fileConfig("trends.txt"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input format")
}

func TestExecuteDetect_JSONFile(t *testing.T) {
	cfg := fileConfig(writeTrendsCSV(t))
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "periods.json")

	require.NoError(t, ExecuteDetect(WithSuppressHeader(context.Background()), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var out schema.DetectOutput
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, schema.PeriodicStatus, out.Results[0].Status)
	assert.Equal(t, 1, out.Diagnostics.Periodic)
}

func TestExecuteDetect_RecordsSQLiteHistory(t *testing.T) {
	store, err := iocache.NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	mgr := &iocache.MockRunManager{}
	mgr.On("GetRunStore").Return(store)

	cfg := fileConfig(writeTrendsCSV(t))
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "periods.csv")
	require.NoError(t, ExecuteDetect(WithSuppressHeader(context.Background()), cfg, mgr))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, 1, status.TotalSeriesAnalyzed)

	periods, err := store.GetAllPeriods()
	require.NoError(t, err)
	require.Len(t, periods, 1)
	require.NotNil(t, periods[0].Period)
	assert.Equal(t, int32(7), *periods[0].Period)
}
