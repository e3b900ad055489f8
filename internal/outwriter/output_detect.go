package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/parquet"
	"github.com/huangsam/cadence/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeDetectResults outputs one row per series, dispatching on the configured format.
func writeDetectResults(output *schema.DetectOutput, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, output)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDetectCSV(w, output.Results, cfg, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertPeriodResults(output.Results, cfg.Precision))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDetectTable(output, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeDetectTable generates and writes the human-readable table.
func writeDetectTable(output *schema.DetectOutput, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	headers := []string{"Entity", "Metric", "Period", "Label", "ACF", "PACF"}
	if cfg.Detail {
		headers = append(headers, "Mean", "StdDev", "P95")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	shown := output.Results
	if cfg.ResultLimit > 0 && len(shown) > cfg.ResultLimit {
		shown = shown[:cfg.ResultLimit]
	}

	entityWidth := GetMaxTableEntityWidth(cfg)
	var data [][]string
	for _, r := range shown {
		pacf := schema.FormatLagScores(r.PACF, cfg.Precision)
		if r.Status == schema.DegenerateStatus {
			pacf = "undefined"
		}
		row := []string{
			contract.TruncateID(r.EntityID, entityWidth),
			r.Metric,
			formatPeriod(r.Period),
			contract.GetColorLabel(r.Period),
			schema.FormatLagScores(r.ACF, cfg.Precision),
			pacf,
		}
		if cfg.Detail {
			if r.Stats != nil {
				row = append(row, fmtFloat(r.Stats.Mean), fmtFloat(r.Stats.StdDev), fmtFloat(r.Stats.P95))
			} else {
				row = append(row, "-", "-", "-")
			}
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	d := output.Diagnostics
	if _, err := fmt.Fprintf(writer, "Showing %d of %d series (periodic: %d, none: %d, degenerate: %d, excluded: %d)\n",
		len(shown), len(output.Results), d.Periodic, d.NoPeriod, d.DegeneratePACF, d.TotalExcluded()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Detection completed in %v with %d workers. Run backend: %s\n", duration, cfg.Workers, runBackendName(cfg)); err != nil {
		return err
	}
	return nil
}

// writeDetectCSV writes one row per series. Lag lists are "lag:score" pairs joined by ";".
func writeDetectCSV(w io.Writer, results []schema.PeriodResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	header := []string{"entity_id", "metric", "period", "label", "status", "acf", "pacf"}
	if cfg.Detail {
		header = append(header, "mean", "stddev", "p95")
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range results {
			row := []string{
				r.EntityID,
				r.Metric,
				formatCSVPeriod(r.Period),
				r.Label,
				string(r.Status),
				schema.FormatLagScores(r.ACF, cfg.Precision),
				schema.FormatLagScores(r.PACF, cfg.Precision),
			}
			if cfg.Detail {
				if r.Stats != nil {
					row = append(row, fmtFloat(r.Stats.Mean), fmtFloat(r.Stats.StdDev), fmtFloat(r.Stats.P95))
				} else {
					row = append(row, "", "", "")
				}
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// formatPeriod renders a period for the table, "-" meaning no significant period.
func formatPeriod(period *int) string {
	if period == nil {
		return "-"
	}
	return strconv.Itoa(*period)
}

// formatCSVPeriod renders a period for CSV output, empty meaning no significant period.
func formatCSVPeriod(period *int) string {
	if period == nil {
		return ""
	}
	return strconv.Itoa(*period)
}

// runBackendName returns the run history backend for summary lines.
func runBackendName(cfg *contract.Config) string {
	if cfg.RunBackend == "" {
		return string(schema.NoneBackend)
	}
	return string(cfg.RunBackend)
}
