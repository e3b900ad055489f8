package dataload

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// promStep is the resolution of range queries: one sample per day.
const promStep = 24 * time.Hour

// PrometheusSource evaluates a PromQL range query with a daily step. Every returned
// series is one entity, named by EntityLabel, and its samples feed a single metric.
type PrometheusSource struct {
	Query        string
	EntityLabel  string
	LookbackDays int
	Metric       string

	promAPI v1.API
	now     func() time.Time
}

func newPrometheusSource(src contract.SourceConfig, metric string) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{Address: src.PromURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}
	label := src.PromEntityLabel
	if label == "" {
		label = contract.DefaultPromEntityLabel
	}
	lookback := src.PromLookbackDays
	if lookback <= 0 {
		lookback = contract.DefaultPromLookbackDays
	}
	return &PrometheusSource{
		Query:        src.PromQuery,
		EntityLabel:  label,
		LookbackDays: lookback,
		Metric:       metric,
		promAPI:      v1.NewAPI(client),
		now:          time.Now,
	}, nil
}

// Load implements Source.
func (s *PrometheusSource) Load(ctx context.Context) (schema.LoadOutput, error) {
	end := toDay(s.now())
	r := v1.Range{
		Start: end.AddDate(0, 0, -s.LookbackDays),
		End:   end,
		Step:  promStep,
	}

	result, _, err := s.promAPI.QueryRange(ctx, s.Query, r)
	if err != nil {
		return schema.LoadOutput{}, fmt.Errorf("prometheus query failed: %w", err)
	}
	return s.parseMatrix(result)
}

// parseMatrix turns a range query result into observations. Series are visited in
// the order Prometheus returned them and each sample gets the next row number.
func (s *PrometheusSource) parseMatrix(result model.Value) (schema.LoadOutput, error) {
	var out schema.LoadOutput
	matrix, ok := result.(model.Matrix)
	if !ok {
		return out, fmt.Errorf("unexpected result type: %T", result)
	}

	row := 0
	for _, series := range matrix {
		entity := string(series.Metric[model.LabelName(s.EntityLabel)])
		if entity == "" {
			entity = series.Metric.String()
		}
		for _, sample := range series.Values {
			row++
			out.Observations = append(out.Observations, schema.Observation{
				EntityID: entity,
				Clock:    toDay(sample.Timestamp.Time()),
				Metrics:  map[string]float64{s.Metric: float64(sample.Value)},
				Row:      row,
			})
		}
	}
	return out, nil
}
