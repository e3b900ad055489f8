// Package core has core logic for periodicity detection: grouping observations
// into series, running detection across them and tracking runs.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/dataload"
	"github.com/huangsam/cadence/internal/outwriter"
	"github.com/huangsam/cadence/schema"
)

// ExecutorFunc defines the function signature for executing commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.RunManager) error

// ErrNoObservations means the source produced nothing to analyze.
var ErrNoObservations = errors.New("no observations found")

// ExecuteDetect runs periodicity detection and prints results.
// It serves as the main entry point for the 'detect' command.
func ExecuteDetect(ctx context.Context, cfg *contract.Config, mgr contract.RunManager) error {
	output, duration, err := GetDetectResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintDetectResults(output, cfg, duration)
}

// GetDetectResults loads observations, runs the pipeline and records the run.
// Output is not printed, which makes it suitable for programmatic callers.
func GetDetectResults(ctx context.Context, cfg *contract.Config, mgr contract.RunManager) (*schema.DetectOutput, time.Duration, error) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogDetectHeader(cfg)
	}

	src, err := dataload.NewSource(cfg.Source, cfg.Metrics)
	if err != nil {
		return nil, 0, err
	}
	return detectFromSource(ctx, cfg, mgr, src, start)
}

// detectFromSource is GetDetectResults with the source already resolved.
func detectFromSource(ctx context.Context, cfg *contract.Config, mgr contract.RunManager, src dataload.Source, start time.Time) (*schema.DetectOutput, time.Duration, error) {
	loaded, err := src.Load(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load observations: %w", err)
	}
	if len(loaded.Observations) == 0 && len(loaded.RowErrors) == 0 {
		return nil, 0, ErrNoObservations
	}

	tracker := beginRunTracking(cfg, mgr, start)

	output, err := RunPipeline(ctx, cfg, loaded)
	if err != nil {
		return nil, 0, err
	}

	tracker.end(time.Now(), output)
	return output, time.Since(start), nil
}
