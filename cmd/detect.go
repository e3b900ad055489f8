package cmd

import (
	"fmt"

	"github.com/huangsam/cadence/core"
	"github.com/spf13/cobra"
)

// detectCmd performs periodicity detection.
var detectCmd = &cobra.Command{
	Use:   "detect <input>",
	Short: "Find the dominant cycle of every entity's daily metric series.",
	Long: `Read daily observations and report, per entity and metric, the period that
both ACF and PACF agree on.

For each series, cadence:
- Keeps the most recent --window distinct days (series with fewer are excluded)
- Ranks the top --top-k lags of ACF and PACF from --drop-lags up to --max-lag
- Picks the first ACF lag above --acf-threshold whose PACF is above --pacf-threshold

Inputs are CSV, XLSX or Parquet files, "-" for CSV on stdin, or a Prometheus
range query with --source prometheus.

Examples:
  # Detect cycles in Zabbix trends
  cadence detect zabbix_trends.csv

  # Analyze two metrics with summary statistics
  cadence detect trends.xlsx --metrics value_max,value_avg --detail

  # Annotate every observation with its period for a dashboard
  cadence detect trends.csv --annotate-rows --output csv --output-file auto

  # Query Prometheus directly
  cadence detect --source prometheus --prom-url http://prom:9090 \
    --prom-query 'max_over_time(node_load1[1d])'`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	// RunE lets main stop profiling and close the run store on failure
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := core.ExecuteDetect(rootCtx, cfg, runManager); err != nil {
			return fmt.Errorf("cannot run periodicity detection: %w", err)
		}
		return nil
	},
}
