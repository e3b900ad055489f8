package schema

import "time"

// RunStatus represents the status of the run history store.
type RunStatus struct {
	Backend             string           `json:"backend"`
	Connected           bool             `json:"connected"`
	TotalRuns           int              `json:"total_runs"`
	LastRunID           int64            `json:"last_run_id"`
	LastRunTime         time.Time        `json:"last_run_time"`
	OldestRunTime       time.Time        `json:"oldest_run_time"`
	TotalSeriesAnalyzed int              `json:"total_series_analyzed"`
	TableSizes          map[string]int64 `json:"table_sizes"`
}

// RunSummary holds the counts recorded when a run finishes.
type RunSummary struct {
	TotalSeries    int
	PeriodicSeries int
	ExcludedSeries int
}

// RunRecord represents a row from the cadence_runs table.
type RunRecord struct {
	RunID          int64
	RunUUID        string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalSeries    int32
	PeriodicSeries int32
	ExcludedSeries int32
	ConfigParams   *string
}

// PeriodRecord represents a row from the cadence_periods table.
type PeriodRecord struct {
	RunID      int64
	EntityID   string
	Metric     string
	RecordedAt time.Time
	Period     *int32
	Status     string
	ACF        string // JSON encoded []LagScore
	PACF       string // JSON encoded []LagScore
}
