package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/iocache"
	"github.com/huangsam/cadence/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resolveRunBackend reads and validates the run history settings. An empty backend
// means NoneBackend.
func resolveRunBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := strings.ToLower(strings.TrimSpace(viper.GetString("run-backend")))
	connStr := viper.GetString("run-db-connect")

	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run history operations
// and opens the store.
func runsSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := resolveRunBackend()
	if err != nil {
		return err
	}
	if err := iocache.InitRunStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsAdminSetup is like runsSetup but does NOT open the store or create tables,
// so that clear and migrate work on a fresh or broken database.
func runsAdminSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := resolveRunBackend()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = iocache.GetRunDBFilePath()
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	return nil
}

// runsCmd focused on run history management.
//
// Note: runs subcommands use minimal initialization instead of the full
// sharedSetup, so they never require an input file.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of detection runs",
	Long: `Manage the history of detection runs used for reporting.

When --run-backend is set, every detect run stores:
- Run metadata (timestamp, configuration, duration, series counts)
- The period, status and ranked lags of every series

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Check run history status
  cadence runs status --run-backend sqlite

  # Export for analysis in pandas/DuckDB
  cadence runs export --run-backend sqlite --output-file history`,
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, connection state, run counts and table sizes of the run history.

Examples:
  CADENCE_RUN_BACKEND=sqlite cadence runs status`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			iocache.PrintRunStatus(os.Stdout, schema.RunStatus{Backend: string(schema.NoneBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and period rows to Parquet.

Writes two files:
- <output-file>.runs.parquet    - one row per detect run
- <output-file>.periods.parquet - one row per series per run

Requires: --output-file parameter

Examples:
  cadence runs export --run-backend sqlite --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.periods.parquet') LIMIT 10"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(os.Stdout, iocache.Manager, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run history",
	Long: `Delete all stored runs and period rows.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the run, period and migration tables

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  cadence runs export --run-backend sqlite --output-file backup
  cadence runs clear --run-backend sqlite`,
	PreRunE: runsAdminSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunBackend, cfg.RunDBConnect, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions of the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  cadence runs migrate --run-backend sqlite

  # Migrate to specific version
  cadence runs migrate --run-backend sqlite --target-version 1

  # Rollback to initial state
  cadence runs migrate --run-backend sqlite --target-version 0`,
	PreRunE: runsAdminSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(os.Stdout, cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
