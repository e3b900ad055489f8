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
)

// annotatedOutput is the JSON document of row-level output.
type annotatedOutput struct {
	Rows        []schema.AnnotatedRow `json:"rows"`
	Diagnostics schema.Diagnostics    `json:"diagnostics"`
}

// writeAnnotatedResults outputs every windowed observation with the result of its series.
func writeAnnotatedResults(output *schema.DetectOutput, cfg *contract.Config) error {
	rows := schema.AnnotateRows(output.Results)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, annotatedOutput{Rows: rows, Diagnostics: output.Diagnostics})
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertAnnotatedRows(rows, cfg.Precision))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnnotatedCSV(w, rows, cfg.Precision)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	}
	return nil
}

// writeAnnotatedCSV writes one row per windowed observation.
func writeAnnotatedCSV(w io.Writer, rows []schema.AnnotatedRow, precision int) error {
	header := []string{"entity_id", "metric", "clock", "value", "period", "acf", "pacf"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range rows {
			record := []string{
				r.EntityID,
				r.Metric,
				r.Clock.Format(time.DateOnly),
				strconv.FormatFloat(r.Value, 'f', -1, 64),
				formatCSVPeriod(r.Period),
				schema.FormatLagScores(r.ACF, precision),
				schema.FormatLagScores(r.PACF, precision),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
