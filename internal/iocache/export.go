package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/parquet"
)

// ExecuteRunsExport exports the run history to <outputFile>.runs.parquet and
// <outputFile>.periods.parquet, reporting progress to w.
func ExecuteRunsExport(w io.Writer, mgr contract.RunManager, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetRunStore()
	if store == nil {
		return errors.New("run tracking is disabled. Set --run-backend to export history")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total period records: %d\n", status.TableSizes[periodsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	periods, err := store.GetAllPeriods()
	if err != nil {
		return fmt.Errorf("failed to retrieve periods: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	periodsFile := outputFile + ".periods.parquet"
	parquetPeriods := parquet.ConvertPeriodRecords(periods)
	if err := parquet.WritePeriodHistoryParquet(parquetPeriods, periodsFile); err != nil {
		return fmt.Errorf("failed to write periods: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d period records to: %s\n", len(parquetPeriods), periodsFile)

	return nil
}
