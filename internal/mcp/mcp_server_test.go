package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/iocache"
	mcp_internal "github.com/huangsam/cadence/internal/mcp"
	"github.com/huangsam/cadence/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		Source: contract.SourceConfig{
			Kind:         schema.FileSource,
			EntityColumn: contract.DefaultEntityColumn,
			TimeColumn:   contract.DefaultTimeColumn,
		},
		Metrics:     []string{contract.DefaultMetric},
		Params:      contract.DefaultDetectionParams(),
		ResultLimit: contract.DefaultResultLimit,
		Workers:     2,
		Precision:   contract.DefaultPrecision,
		Output:      schema.JSONOut,
	}
}

// writeWeeklyCSV writes 120 days of a weekly pattern for one item.
func writeWeeklyCSV(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("itemid,clock,value_max\n")
	start := time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC)
	for d := range 120 {
		day := start.AddDate(0, 0, d)
		value := float64(d%7) + 0.1*float64((d*13)%5)
		fmt.Fprintf(&sb, "srv-01,%s,%.2f\n", day.Format(time.DateOnly), value)
	}
	path := filepath.Join(t.TempDir(), "trends.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func call(t *testing.T, baseCfg *contract.Config, mgr contract.RunManager, name string, args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	s := mcp_internal.NewMCPServer(baseCfg, mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res, res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing path", map[string]any{}, "path is required"},
		{"window too small", map[string]any{"path": "trends.csv", "window": 5.0}, "invalid detection parameters"},
		{"top_k zero after override", map[string]any{"path": "trends.csv", "top_k": -1.0}, "top_k"},
		{"acf threshold above one", map[string]any{"path": "trends.csv", "acf_threshold": 1.5}, "acf_threshold"},
		{"missing file", map[string]any{"path": filepath.Join(os.TempDir(), "cadence-missing.csv")}, "detection failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, text := call(t, baseConfig(), nil, "detect_periods", tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestMCPServerHandlers_DetectPeriods(t *testing.T) {
	path := writeWeeklyCSV(t)

	res, text := call(t, baseConfig(), nil, "detect_periods", map[string]any{
		"path":   path,
		"metric": "value_max",
		"window": 80.0,
		"top_k":  2.0,
	})
	require.False(t, res.IsError, text)

	var output schema.DetectOutput
	require.NoError(t, json.Unmarshal([]byte(text), &output))
	require.Len(t, output.Results, 1)
	result := output.Results[0]
	assert.Equal(t, "srv-01", result.EntityID)
	assert.Equal(t, "value_max", result.Metric)
	assert.Len(t, result.ACF, 2)
	assert.LessOrEqual(t, len(result.PACF), 2)
	for _, s := range result.ACF {
		assert.GreaterOrEqual(t, s.Lag, contract.DefaultDropLags)
	}
	assert.Equal(t, 1, output.Diagnostics.InputSeries)
	assert.Empty(t, output.Diagnostics.Exclusions)
}

func TestMCPServerHandlers_DetectPeriodsUnknownMetric(t *testing.T) {
	path := writeWeeklyCSV(t)

	res, text := call(t, baseConfig(), nil, "detect_periods", map[string]any{"path": path, "metric": "value_avg"})
	assert.True(t, res.IsError)
	assert.Contains(t, text, "value_avg")
}

func TestMCPServerHandlers_DoesNotMutateBaseConfig(t *testing.T) {
	cfg := baseConfig()
	_, _ = call(t, cfg, nil, "detect_periods", map[string]any{"path": "x.csv", "metric": "other", "window": 60.0})
	assert.Equal(t, []string{contract.DefaultMetric}, cfg.Metrics)
	assert.Equal(t, contract.DefaultWindow, cfg.Params.Window)
	assert.Empty(t, cfg.Source.Path)
}

func TestMCPServerHandlers_RunStatus(t *testing.T) {
	t.Run("tracking disabled", func(t *testing.T) {
		res, text := call(t, baseConfig(), nil, "get_run_status", nil)
		require.False(t, res.IsError)
		var status schema.RunStatus
		require.NoError(t, json.Unmarshal([]byte(text), &status))
		assert.Equal(t, "none", status.Backend)
		assert.False(t, status.Connected)
	})

	t.Run("store status", func(t *testing.T) {
		store := &iocache.MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", Connected: true, TotalRuns: 3}, nil)
		mgr := &iocache.MockRunManager{}
		mgr.On("GetRunStore").Return(store)

		res, text := call(t, baseConfig(), mgr, "get_run_status", nil)
		require.False(t, res.IsError)
		var status schema.RunStatus
		require.NoError(t, json.Unmarshal([]byte(text), &status))
		assert.Equal(t, "sqlite", status.Backend)
		assert.Equal(t, 3, status.TotalRuns)
		store.AssertExpectations(t)
	})
}
