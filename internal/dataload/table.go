package dataload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/cadence/schema"
)

// tableSpec names the columns of a wide, header-first table: one row per entity
// and timestamp, one column per metric.
type tableSpec struct {
	entityColumn string
	timeColumn   string
	timeFormat   string
	metrics      []string
}

// processRows converts raw string rows into observations. rows[0] is the header.
// Row numbers in the output are 1-based line numbers, so the first data row is 2.
//
// Rows without an entity id are skipped. An empty metric cell is a missing
// observation. Unparseable timestamps and non-numeric values become row errors
// for their entity and loading continues.
func (t tableSpec) processRows(rows [][]string) (schema.LoadOutput, error) {
	var out schema.LoadOutput
	if len(rows) == 0 {
		return out, fmt.Errorf("input has no header row")
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		name := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	column := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("%w '%s'", ErrMissingColumn, name)
		}
		return i, nil
	}
	entityIdx, err := column(t.entityColumn)
	if err != nil {
		return out, err
	}
	timeIdx, err := column(t.timeColumn)
	if err != nil {
		return out, err
	}
	metricIdx := make([]int, len(t.metrics))
	for i, metric := range t.metrics {
		if metricIdx[i], err = column(metric); err != nil {
			return out, err
		}
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		line := i + 1
		cell := func(j int) string {
			if j < len(row) {
				return strings.TrimSpace(row[j])
			}
			return ""
		}

		entity := cell(entityIdx)
		if entity == "" {
			continue
		}

		clock, err := ParseTimestamp(cell(timeIdx), t.timeFormat)
		if err != nil {
			out.RowErrors = append(out.RowErrors, schema.RowError{
				EntityID: entity,
				Row:      line,
				Message:  err.Error(),
			})
			continue
		}

		obs := schema.Observation{
			EntityID: entity,
			Clock:    clock,
			Metrics:  make(map[string]float64, len(t.metrics)),
			Row:      line,
		}
		for k, metric := range t.metrics {
			raw := cell(metricIdx[k])
			if raw == "" {
				continue
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				out.RowErrors = append(out.RowErrors, schema.RowError{
					EntityID: entity,
					Metric:   metric,
					Row:      line,
					Message:  fmt.Sprintf("non-numeric %s value '%s'", metric, raw),
				})
				continue
			}
			obs.Metrics[metric] = value
		}
		if len(obs.Metrics) > 0 {
			out.Observations = append(out.Observations, obs)
		}
	}
	return out, nil
}
