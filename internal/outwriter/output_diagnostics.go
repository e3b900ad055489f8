package outwriter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"

	"github.com/olekukonko/tablewriter"
)

// writeDiagnosticsOutput reports exclusions. A diagnostics file gets the full JSON
// document. Otherwise a summary goes next to the results: stdout for the table and
// stderr for machine formats. Plain JSON output already embeds the diagnostics.
func writeDiagnosticsOutput(d schema.Diagnostics, cfg *contract.Config) error {
	if cfg.DiagnosticsFile != "" {
		return writeWithFile(cfg.DiagnosticsFile, func(w io.Writer) error {
			return writeJSON(w, d)
		}, "Wrote diagnostics")
	}

	switch {
	case cfg.Output == schema.JSONOut && !cfg.AnnotateRows:
		return nil
	case cfg.Output == schema.TextOut || cfg.Output == "":
		if cfg.OutputFile != "" {
			// The table went to a file, keep the diagnostics with it
			return appendDiagnostics(cfg.OutputFile, d, cfg)
		}
		return writeDiagnosticsTable(os.Stdout, d, cfg)
	default:
		return writeDiagnosticsTable(os.Stderr, d, cfg)
	}
}

// appendDiagnostics adds the diagnostics table to an existing output file.
func appendDiagnostics(path string, d schema.Diagnostics, cfg *contract.Config) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	return writeDiagnosticsTable(file, d, cfg)
}

// writeDiagnosticsTable prints the exclusion counts and one row per excluded series.
// Nothing is printed when no series was excluded.
func writeDiagnosticsTable(w io.Writer, d schema.Diagnostics, cfg *contract.Config) error {
	if len(d.Exclusions) == 0 {
		return nil
	}

	reasons := make([]string, 0, len(d.Excluded))
	for reason := range d.Excluded {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	parts := make([]string, len(reasons))
	for i, reason := range reasons {
		parts[i] = fmt.Sprintf("%s: %d", reason, d.Excluded[schema.ExclusionReason(reason)])
	}
	if _, err := fmt.Fprintf(w, "⚠️  Excluded %d of %d series (%s)\n", d.TotalExcluded(), d.InputSeries, strings.Join(parts, ", ")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Entity", "Metric", "Reason", "Obs", "Message"})

	entityWidth := GetMaxTableEntityWidth(cfg)
	var data [][]string
	for _, e := range d.Exclusions {
		data = append(data, []string{
			contract.TruncateID(e.EntityID, entityWidth),
			e.Metric,
			string(e.Reason),
			strconv.Itoa(e.Observations),
			e.Message,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
