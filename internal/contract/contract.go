// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/cadence/schema"
)

// RunManager defines the interface for reaching the run history store.
// This allows the history layer to be mocked for testing.
type RunManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking detection runs and their results.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// RecordPeriods stores the detection result of every series of a run
	RecordPeriods(runID int64, recordedAt time.Time, results []schema.PeriodResult) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllPeriods returns every recorded period row, ordered by run and series
	GetAllPeriods() ([]schema.PeriodRecord, error)

	// Close closes the underlying connection
	Close() error
}
