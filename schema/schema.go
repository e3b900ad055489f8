// Package schema has models and constants shared by all parts of cadence.
package schema

import (
	"fmt"
	"strings"
	"time"
)

// Observation is one input row: an entity's metric values for one calendar day.
type Observation struct {
	EntityID string             // Monitored unit identifier (server, item, instance)
	Clock    time.Time          // Observation day, normalized to UTC midnight
	Metrics  map[string]float64 // Metric column name to value
	Row      int                // Position in the original input
}

// RowError marks an input row that could not be parsed. The loader keeps going and
// the pipeline fails the offending entity only.
type RowError struct {
	EntityID string
	Metric   string // Empty when the whole row is unusable
	Row      int
	Message  string
}

// LoadOutput bundles everything a source produced.
type LoadOutput struct {
	Observations []Observation
	RowErrors    []RowError
}

// Point is a single day of a series.
type Point struct {
	Day   time.Time `json:"day"`
	Value float64   `json:"value"`
	Row   int       `json:"-"`
}

// Series is the ordered daily series of one metric for one entity.
type Series struct {
	EntityID string
	Metric   string
	Points   []Point
}

// Values returns the metric values in series order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// LagScore pairs a lag (in days) with its correlation coefficient.
type LagScore struct {
	Lag   int     `json:"lag"`
	Score float64 `json:"score"`
}

// SeriesStats holds summary statistics of a windowed series for detail output.
type SeriesStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	P95    float64 `json:"p95"`
}

// PeriodResult is the outcome of periodicity detection for one (entity, metric).
type PeriodResult struct {
	EntityID string       `json:"entity_id"`
	Metric   string       `json:"metric"`
	Period   *int         `json:"period"`
	Label    string       `json:"label"`
	Status   ResultStatus `json:"status"`
	ACF      []LagScore   `json:"acf"`
	PACF     []LagScore   `json:"pacf"`
	Stats    *SeriesStats `json:"stats,omitempty"`

	// Window holds the windowed points, used for row-level output.
	Window []Point `json:"-"`
}

// Exclusion records a series that produced no result row.
type Exclusion struct {
	EntityID     string          `json:"entity_id"`
	Metric       string          `json:"metric"`
	Reason       ExclusionReason `json:"reason"`
	Observations int             `json:"observations"`
	Message      string          `json:"message"`
}

// Diagnostics summarizes a pipeline run.
type Diagnostics struct {
	InputSeries    int                     `json:"input_series"`
	Results        int                     `json:"results"`
	Periodic       int                     `json:"periodic"`
	NoPeriod       int                     `json:"no_period"`
	DegeneratePACF int                     `json:"degenerate_pacf"`
	Excluded       map[ExclusionReason]int `json:"excluded"`
	Exclusions     []Exclusion             `json:"exclusions"`
}

// TotalExcluded returns the number of series excluded for any reason.
func (d Diagnostics) TotalExcluded() int {
	total := 0
	for _, n := range d.Excluded {
		total += n
	}
	return total
}

// DetectOutput is the full result of a detection run.
type DetectOutput struct {
	Results     []PeriodResult `json:"results"`
	Diagnostics Diagnostics    `json:"diagnostics"`
}

// AnnotatedRow is one windowed observation carrying its series' detection result.
type AnnotatedRow struct {
	EntityID string     `json:"entity_id"`
	Metric   string     `json:"metric"`
	Clock    time.Time  `json:"clock"`
	Value    float64    `json:"value"`
	Period   *int       `json:"period"`
	ACF      []LagScore `json:"acf"`
	PACF     []LagScore `json:"pacf"`
}

// AnnotateRows expands results into one row per windowed observation.
func AnnotateRows(results []PeriodResult) []AnnotatedRow {
	var rows []AnnotatedRow
	for _, r := range results {
		for _, p := range r.Window {
			rows = append(rows, AnnotatedRow{
				EntityID: r.EntityID,
				Metric:   r.Metric,
				Clock:    p.Day,
				Value:    p.Value,
				Period:   r.Period,
				ACF:      r.ACF,
				PACF:     r.PACF,
			})
		}
	}
	return rows
}

// Period labels.
const (
	WeeklyLabel  = "Weekly"
	MonthlyLabel = "Monthly"
	CustomLabel  = "Custom"
	NoneLabel    = "None"
)

// GetPeriodLabel returns a plain text label describing a resolved period.
func GetPeriodLabel(period *int) string {
	switch {
	case period == nil:
		return NoneLabel
	case *period >= 28 && *period <= 31:
		return MonthlyLabel
	case *period%7 == 0:
		return WeeklyLabel
	default:
		return CustomLabel
	}
}

// FormatLagScores renders a ranked list as "lag:score" pairs joined by ";".
func FormatLagScores(scores []LagScore, precision int) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%d:%.*f", s.Lag, precision, s.Score)
	}
	return strings.Join(parts, ";")
}
