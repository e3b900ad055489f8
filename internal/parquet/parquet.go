// Package parquet provides data structures and functions for reading observations
// from and writing detection results and run history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/parquet-go/parquet-go"
)

// Observation is one row of a long format observation file: a single metric
// value of one entity on one day.
type Observation struct {
	// EntityID identifies the monitored unit
	EntityID string `parquet:"entity_id"`

	// Clock is the observation timestamp
	Clock time.Time `parquet:"clock"`

	// Metric names the measured quantity (e.g. value_max)
	Metric string `parquet:"metric"`

	// Value is the measurement (nullable, null rows are skipped)
	Value *float64 `parquet:"value,optional"`
}

// PeriodRow is one detection result.
type PeriodRow struct {
	EntityID string `parquet:"entity_id,snappy"`
	Metric   string `parquet:"metric,snappy"`

	// Period is the resolved cycle length in days (null when no significant period)
	Period *int32 `parquet:"period,optional,snappy"`

	Label  string `parquet:"label,snappy"`
	Status string `parquet:"status,snappy"`

	// ACF and PACF hold ranked lags as "lag:score" pairs joined by ";"
	ACF  string `parquet:"acf,snappy"`
	PACF string `parquet:"pacf,snappy"`

	// Summary statistics, only present with detail output
	Mean   *float64 `parquet:"mean,optional,snappy"`
	StdDev *float64 `parquet:"stddev,optional,snappy"`
	P95    *float64 `parquet:"p95,optional,snappy"`
}

// AnnotatedRow is one windowed observation carrying the result of its series.
type AnnotatedRow struct {
	EntityID string    `parquet:"entity_id,snappy"`
	Metric   string    `parquet:"metric,snappy"`
	Clock    time.Time `parquet:"clock,snappy"`
	Value    float64   `parquet:"value,snappy"`
	Period   *int32    `parquet:"period,optional,snappy"`
	ACF      string    `parquet:"acf,snappy"`
	PACF     string    `parquet:"pacf,snappy"`
}

// Run represents a single detection run with metadata.
// This struct maps to the cadence_runs database table.
type Run struct {
	// RunID is the unique identifier for this run within its store
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique identifier for this run
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalSeries    int32 `parquet:"total_series,snappy"`
	PeriodicSeries int32 `parquet:"periodic_series,snappy"`
	ExcludedSeries int32 `parquet:"excluded_series,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// PeriodHistory represents the stored result of one series in a run.
// This struct maps to the cadence_periods database table.
type PeriodHistory struct {
	RunID      int64     `parquet:"run_id,snappy"`
	EntityID   string    `parquet:"entity_id,snappy"`
	Metric     string    `parquet:"metric,snappy"`
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
	Period     *int32    `parquet:"period,optional,snappy"`
	Status     string    `parquet:"status,snappy"`

	// ACF and PACF are the JSON encoded ranked lag lists
	ACF  string `parquet:"acf,snappy"`
	PACF string `parquet:"pacf,snappy"`
}

// Write writes rows of any record type to w.
func Write[T any](w io.Writer, rows []T) error {
	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows of any record type to a new file at outputPath.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WritePeriodHistoryParquet writes a slice of PeriodHistory structs to a Parquet file.
func WritePeriodHistoryParquet(data []PeriodHistory, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ReadObservations reads a long format observation file.
func ReadObservations(path string) ([]Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[Observation](file)
	defer func() { _ = reader.Close() }()

	rows := make([]Observation, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows[:n], nil
}

// ConvertPeriodResults converts detection results for Parquet output.
func ConvertPeriodResults(results []schema.PeriodResult, precision int) []PeriodRow {
	rows := make([]PeriodRow, len(results))
	for i, r := range results {
		rows[i] = PeriodRow{
			EntityID: r.EntityID,
			Metric:   r.Metric,
			Period:   toInt32Ptr(r.Period),
			Label:    r.Label,
			Status:   string(r.Status),
			ACF:      schema.FormatLagScores(r.ACF, precision),
			PACF:     schema.FormatLagScores(r.PACF, precision),
		}
		if r.Stats != nil {
			rows[i].Mean = &r.Stats.Mean
			rows[i].StdDev = &r.Stats.StdDev
			rows[i].P95 = &r.Stats.P95
		}
	}
	return rows
}

// ConvertAnnotatedRows converts row-level output for Parquet.
func ConvertAnnotatedRows(annotated []schema.AnnotatedRow, precision int) []AnnotatedRow {
	rows := make([]AnnotatedRow, len(annotated))
	for i, r := range annotated {
		rows[i] = AnnotatedRow{
			EntityID: r.EntityID,
			Metric:   r.Metric,
			Clock:    r.Clock,
			Value:    r.Value,
			Period:   toInt32Ptr(r.Period),
			ACF:      schema.FormatLagScores(r.ACF, precision),
			PACF:     schema.FormatLagScores(r.PACF, precision),
		}
	}
	return rows
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:          record.RunID,
			RunUUID:        record.RunUUID,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			TotalSeries:    record.TotalSeries,
			PeriodicSeries: record.PeriodicSeries,
			ExcludedSeries: record.ExcludedSeries,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertPeriodRecords converts schema.PeriodRecord to PeriodHistory for Parquet export.
func ConvertPeriodRecords(records []schema.PeriodRecord) []PeriodHistory {
	result := make([]PeriodHistory, len(records))
	for i, record := range records {
		result[i] = PeriodHistory{
			RunID:      record.RunID,
			EntityID:   record.EntityID,
			Metric:     record.Metric,
			RecordedAt: record.RecordedAt,
			Period:     record.Period,
			Status:     record.Status,
			ACF:        record.ACF,
			PACF:       record.PACF,
		}
	}
	return result
}

func toInt32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	p := int32(*v)
	return &p
}
