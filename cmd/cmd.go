// Package cmd defines the command-line interface for cadence.
package cmd

import (
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-series summary statistics (mean, stddev, p95)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display in text output")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to ('auto' derives a name from the window and metrics)")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every series outcome to stderr")
	rootCmd.PersistentFlags().String("run-backend", "", "Run history backend: sqlite or mysql or postgresql or none (empty = disabled)")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run history (e.g., user:pass@tcp(host:port)/dbname?parseTime=true)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of detectCmd to Viper
	detectCmd.Flags().String("metrics", contract.DefaultMetric, "Comma-separated metric columns to analyze")
	detectCmd.Flags().Int("window", contract.DefaultWindow, "Number of most recent distinct days analyzed per series")
	detectCmd.Flags().Int("min-coverage", 0, "Minimum distinct days a series needs (0 = window)")
	detectCmd.Flags().Int("max-lag", contract.DefaultMaxLag, "Largest lag in days fed to ACF and PACF")
	detectCmd.Flags().Int("drop-lags", contract.DefaultDropLags, "Lags below this are never reported")
	detectCmd.Flags().Int("top-k", contract.DefaultTopK, "Number of ranked lags kept per estimator")
	detectCmd.Flags().Float64("acf-threshold", contract.DefaultACFThreshold, "ACF score a period candidate must exceed")
	detectCmd.Flags().Float64("pacf-threshold", contract.DefaultPACFThreshold, "PACF score a period candidate must exceed")
	detectCmd.Flags().String("entity-column", contract.DefaultEntityColumn, "Column holding the entity id")
	detectCmd.Flags().String("time-column", contract.DefaultTimeColumn, "Column holding the observation time")
	detectCmd.Flags().String("time-format", "", "Go time layout of the time column (empty = auto-detect)")
	detectCmd.Flags().String("sheet", "", "Spreadsheet sheet to read (empty = first sheet)")
	detectCmd.Flags().String("source", string(schema.FileSource), "Observation source: file or prometheus")
	detectCmd.Flags().String("prom-url", "", "Prometheus server URL")
	detectCmd.Flags().String("prom-query", "", "PromQL query returning one daily value per entity")
	detectCmd.Flags().String("prom-entity-label", contract.DefaultPromEntityLabel, "Label holding the entity id")
	detectCmd.Flags().Int("prom-lookback-days", contract.DefaultPromLookbackDays, "Days of history fetched from Prometheus")
	detectCmd.Flags().Bool("annotate-rows", false, "Write every windowed observation annotated with its period")
	detectCmd.Flags().String("diagnostics-file", "", "Write diagnostics JSON to this file")
	if err := viper.BindPFlags(detectCmd.Flags()); err != nil {
		contract.LogFatal("Error binding detect flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
