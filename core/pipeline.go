package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/cadence/core/algo"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// seriesKey identifies one metric of one entity.
type seriesKey struct {
	entity string
	metric string
}

// seriesOutcome is what a worker produces for one series: a result or an exclusion.
type seriesOutcome struct {
	result    *schema.PeriodResult
	exclusion *schema.Exclusion
}

// RunPipeline groups observations into series, runs windowing and detection on each
// series in parallel, and assembles results plus diagnostics.
// A failing series is recorded as an exclusion and never affects the others. The only
// batch-level failure is cancellation of ctx.
func RunPipeline(ctx context.Context, cfg *contract.Config, input schema.LoadOutput) (*schema.DetectOutput, error) {
	groups := groupSeries(input.Observations, cfg.Metrics)
	rowErrs := groupRowErrors(input.RowErrors, cfg.Metrics)

	keys := make([]seriesKey, 0, len(groups)+len(rowErrs))
	for key := range groups {
		keys = append(keys, key)
	}
	for key := range rowErrs {
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
	}
	sortKeys(keys)

	// Each worker writes only its own slot.
	outcomes := make([]seriesOutcome, len(keys))
	workers := max(cfg.Workers, 1)
	log := cfg.Log()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, key := range keys {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = detectSeries(cfg, key, groups[key], rowErrs[key])
			logOutcome(log, key, outcomes[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("detection interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("detection interrupted: %w", err)
	}

	return assembleOutput(outcomes), nil
}

// groupSeries builds the explicit (entity, metric) -> points map. Observations lacking
// a metric simply contribute no point to that series.
func groupSeries(observations []schema.Observation, metrics []string) map[seriesKey][]schema.Point {
	groups := make(map[seriesKey][]schema.Point)
	for _, obs := range observations {
		for _, metric := range metrics {
			value, ok := obs.Metrics[metric]
			if !ok {
				continue
			}
			key := seriesKey{entity: obs.EntityID, metric: metric}
			groups[key] = append(groups[key], schema.Point{Day: obs.Clock, Value: value, Row: obs.Row})
		}
	}
	return groups
}

// groupRowErrors maps every affected series to the first load error seen for it.
// A row error without a metric affects every configured metric of its entity.
func groupRowErrors(rowErrs []schema.RowError, metrics []string) map[seriesKey]*schema.RowError {
	byKey := make(map[seriesKey]*schema.RowError)
	for i := range rowErrs {
		re := &rowErrs[i]
		targets := metrics
		if re.Metric != "" {
			targets = []string{re.Metric}
		}
		for _, metric := range targets {
			key := seriesKey{entity: re.EntityID, metric: metric}
			if prev, ok := byKey[key]; !ok || re.Row < prev.Row {
				byKey[key] = re
			}
		}
	}
	return byKey
}

// sortKeys orders series by entity id, then metric.
func sortKeys(keys []seriesKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].entity != keys[j].entity {
			return keys[i].entity < keys[j].entity
		}
		return keys[i].metric < keys[j].metric
	})
}

// detectSeries runs windowing and detection on a single series.
func detectSeries(cfg *contract.Config, key seriesKey, points []schema.Point, rowErr *schema.RowError) seriesOutcome {
	exclude := func(reason schema.ExclusionReason, msg string) seriesOutcome {
		return seriesOutcome{exclusion: &schema.Exclusion{
			EntityID:     key.entity,
			Metric:       key.metric,
			Reason:       reason,
			Observations: len(points),
			Message:      msg,
		}}
	}

	if rowErr != nil {
		return exclude(schema.MalformedInputReason, fmt.Sprintf("row %d: %s", rowErr.Row, rowErr.Message))
	}

	window, err := algo.Window(points, cfg.Params.Window, cfg.Params.Coverage())
	if err != nil {
		return exclude(exclusionReason(err), err.Error())
	}

	series := schema.Series{EntityID: key.entity, Metric: key.metric, Points: window}
	values := series.Values()
	d, err := algo.Detect(values, detectParams(cfg.Params))
	if err != nil {
		return exclude(exclusionReason(err), err.Error())
	}

	result := &schema.PeriodResult{
		EntityID: key.entity,
		Metric:   key.metric,
		Period:   d.Period,
		Label:    schema.GetPeriodLabel(d.Period),
		Status:   resultStatus(d),
		ACF:      d.ACF,
		PACF:     d.PACF,
	}
	if cfg.Detail {
		result.Stats = seriesStats(values)
	}
	if cfg.AnnotateRows {
		result.Window = window
	}
	return seriesOutcome{result: result}
}

// exclusionReason maps a detection error onto the reason reported in diagnostics.
// A lag window that does not fit a short series means it has too little data.
func exclusionReason(err error) schema.ExclusionReason {
	switch {
	case errors.Is(err, algo.ErrInsufficientData), errors.Is(err, algo.ErrLagWindow):
		return schema.InsufficientDataReason
	default:
		return schema.MalformedInputReason
	}
}

// resultStatus classifies a detection.
func resultStatus(d algo.Detection) schema.ResultStatus {
	switch {
	case d.Degenerate:
		return schema.DegenerateStatus
	case d.Period != nil:
		return schema.PeriodicStatus
	default:
		return schema.NoPeriodStatus
	}
}

// detectParams converts validated configuration into estimator parameters.
func detectParams(p contract.DetectionParams) algo.Params {
	return algo.Params{
		MaxLag:        p.MaxLag,
		DropLags:      p.DropLags,
		TopK:          p.TopK,
		ACFThreshold:  p.ACFThreshold,
		PACFThreshold: p.PACFThreshold,
	}
}

// assembleOutput collects ordered outcomes into results and diagnostics.
func assembleOutput(outcomes []seriesOutcome) *schema.DetectOutput {
	out := &schema.DetectOutput{
		Results: make([]schema.PeriodResult, 0, len(outcomes)),
		Diagnostics: schema.Diagnostics{
			InputSeries: len(outcomes),
			Excluded:    make(map[schema.ExclusionReason]int),
			Exclusions:  []schema.Exclusion{},
		},
	}
	diag := &out.Diagnostics
	for _, o := range outcomes {
		switch {
		case o.result != nil:
			out.Results = append(out.Results, *o.result)
			switch o.result.Status {
			case schema.PeriodicStatus:
				diag.Periodic++
			case schema.DegenerateStatus:
				diag.DegeneratePACF++
			default:
				diag.NoPeriod++
			}
		case o.exclusion != nil:
			diag.Exclusions = append(diag.Exclusions, *o.exclusion)
			diag.Excluded[o.exclusion.Reason]++
		}
	}
	diag.Results = len(out.Results)
	return out
}

// logOutcome emits one debug event per series.
func logOutcome(log *zap.Logger, key seriesKey, o seriesOutcome) {
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}
	fields := []zap.Field{zap.String("entity", key.entity), zap.String("metric", key.metric)}
	switch {
	case o.result != nil:
		log.Debug("series analyzed", append(fields,
			zap.String("status", string(o.result.Status)),
			zap.Intp("period", o.result.Period),
			zap.String("acf", schema.FormatLagScores(o.result.ACF, 3)),
			zap.String("pacf", schema.FormatLagScores(o.result.PACF, 3)),
		)...)
	case o.exclusion != nil:
		log.Debug("series excluded", append(fields,
			zap.String("reason", string(o.exclusion.Reason)),
			zap.String("message", strings.TrimSpace(o.exclusion.Message)),
		)...)
	}
}
