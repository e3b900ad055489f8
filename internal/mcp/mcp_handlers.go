package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.RunManager
}

func (h *toolHandler) handleDetectPeriods(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := strings.TrimSpace(request.GetString("path", ""))
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.Source.Kind = schema.FileSource
	cfg.Source.Path = path
	cfg.AnnotateRows = false
	if m := strings.TrimSpace(request.GetString("metric", "")); m != "" {
		cfg.Metrics = []string{m}
	}
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = []string{contract.DefaultMetric}
	}
	if w := request.GetInt("window", 0); w != 0 {
		cfg.Params.Window = w
	}
	if k := request.GetInt("top_k", 0); k != 0 {
		cfg.Params.TopK = k
	}
	cfg.Params.ACFThreshold = request.GetFloat("acf_threshold", cfg.Params.ACFThreshold)
	cfg.Params.PACFThreshold = request.GetFloat("pacf_threshold", cfg.Params.PACFThreshold)

	if err := contract.ValidateDetectionParams(cfg.Params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid detection parameters: %v", err)), nil
	}

	output, _, err := core.GetDetectResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("detection failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRunStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := schema.RunStatus{Backend: string(schema.NoneBackend), TableSizes: map[string]int64{}}
	if h.mgr != nil {
		if store := h.mgr.GetRunStore(); store != nil {
			var err error
			if status, err = store.GetStatus(); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to get run status: %v", err)), nil
			}
		}
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
