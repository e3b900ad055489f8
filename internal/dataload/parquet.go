package dataload

import (
	"context"
	"strings"

	"github.com/huangsam/cadence/internal/parquet"
	"github.com/huangsam/cadence/schema"
)

// ParquetSource reads a long format file: one row per entity, day and metric.
type ParquetSource struct {
	Path    string
	Metrics []string
}

// Load implements Source. Rows for metrics that were not requested are ignored
// and null values are missing observations. Row numbers are 1-based positions.
func (s *ParquetSource) Load(ctx context.Context) (schema.LoadOutput, error) {
	var out schema.LoadOutput
	if err := ctx.Err(); err != nil {
		return out, err
	}
	records, err := parquet.ReadObservations(s.Path)
	if err != nil {
		return out, err
	}

	wanted := make(map[string]struct{}, len(s.Metrics))
	for _, m := range s.Metrics {
		wanted[m] = struct{}{}
	}

	for i, rec := range records {
		entity := strings.TrimSpace(rec.EntityID)
		if _, ok := wanted[rec.Metric]; !ok || entity == "" || rec.Value == nil {
			continue
		}
		row := i + 1
		if rec.Clock.IsZero() {
			out.RowErrors = append(out.RowErrors, schema.RowError{
				EntityID: entity, Metric: rec.Metric, Row: row, Message: "empty timestamp",
			})
			continue
		}
		out.Observations = append(out.Observations, schema.Observation{
			EntityID: entity,
			Clock:    toDay(rec.Clock),
			Metrics:  map[string]float64{rec.Metric: *rec.Value},
			Row:      row,
		})
	}
	return out, nil
}
