// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Cadence MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.RunManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Cadence Periodicity Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: detect_periods ---
	s.AddTool(mcp.NewTool("detect_periods",
		mcp.WithDescription("Detect the dominant period (weekly, monthly, custom) of every entity's daily metric series in a CSV, XLSX or Parquet file."),
		mcp.WithString("path", mcp.Description("Path to the observation file."), mcp.Required()),
		mcp.WithString("metric", mcp.Description("Metric column to analyze. Defaults to the server's configured metrics.")),
		mcp.WithNumber("window", mcp.Description("Number of most recent days analyzed per series.")),
		mcp.WithNumber("top_k", mcp.Description("Number of ranked lags reported per estimator.")),
		mcp.WithNumber("acf_threshold", mcp.Description("ACF score a period candidate must exceed.")),
		mcp.WithNumber("pacf_threshold", mcp.Description("PACF score a period candidate must exceed.")),
	), h.handleDetectPeriods)

	// --- 2. Tool: get_run_status ---
	s.AddTool(mcp.NewTool("get_run_status",
		mcp.WithDescription("Report the run history backend and how many detection runs it holds."),
	), h.handleGetRunStatus)

	return s
}

// StartMCPServer starts the Cadence MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.RunManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
