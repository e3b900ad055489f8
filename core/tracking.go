package core

import (
	"fmt"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// runTracker records one detection run in the run history store.
// A zero tracker (no store or failed begin) ignores every call.
type runTracker struct {
	store contract.RunStore
	runID int64
}

// beginRunTracking opens a run in the history store when one is configured.
// Failures are reported as warnings and disable tracking for this run.
func beginRunTracking(cfg *contract.Config, mgr contract.RunManager, startTime time.Time) runTracker {
	if mgr == nil {
		return runTracker{}
	}
	store := mgr.GetRunStore()
	if store == nil {
		return runTracker{}
	}

	configParams := map[string]any{
		"source":   string(cfg.Source.Kind),
		"input":    sourceDescription(cfg),
		"metrics":  cfg.Metrics,
		"params":   cfg.Params,
		"workers":  cfg.Workers,
		"annotate": cfg.AnnotateRows,
		"output":   string(cfg.Output),
	}
	runID, err := store.BeginRun(startTime, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return runTracker{}
	}
	return runTracker{store: store, runID: runID}
}

// end stores the results of the run and closes it.
func (t runTracker) end(endTime time.Time, output *schema.DetectOutput) {
	if t.store == nil || t.runID <= 0 {
		return
	}
	if err := t.store.RecordPeriods(t.runID, endTime, output.Results); err != nil {
		logTrackingError("RecordPeriods", t.runID, err)
	}
	summary := schema.RunSummary{
		TotalSeries:    output.Diagnostics.InputSeries,
		PeriodicSeries: output.Diagnostics.Periodic,
		ExcludedSeries: output.Diagnostics.TotalExcluded(),
	}
	if err := t.store.EndRun(t.runID, endTime, summary); err != nil {
		logTrackingError("EndRun", t.runID, err)
	}
}

// logTrackingError logs database tracking errors to stderr without disrupting detection.
func logTrackingError(operation string, runID int64, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on run %d", operation, runID), err)
}

// sourceDescription names the input of a run for humans.
func sourceDescription(cfg *contract.Config) string {
	if cfg.Source.Kind == schema.PrometheusSource {
		return fmt.Sprintf("%s (%s)", cfg.Source.PromURL, cfg.Source.PromQuery)
	}
	return cfg.Source.Path
}
