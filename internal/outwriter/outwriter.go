// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// LogDetectHeader prints a concise, 2-line header before detection starts.
// Machine readable output keeps stdout clean, so the header goes to stderr then.
func LogDetectHeader(cfg *contract.Config) {
	writeDetectHeader(headerWriter(cfg), cfg)
}

// headerWriter returns where the run header and trailing notes are printed.
func headerWriter(cfg *contract.Config) io.Writer {
	if cfg.Output == schema.TextOut || cfg.Output == "" {
		return os.Stdout
	}
	return os.Stderr
}

func writeDetectHeader(w io.Writer, cfg *contract.Config) {
	// Line 1: Where observations come from and which metrics are analyzed
	_, _ = fmt.Fprintf(w, "🔎 Source: %s (Metrics: %s)\n", describeSource(cfg.Source), strings.Join(cfg.Metrics, ", "))

	// Line 2: The detection window
	p := cfg.Params
	_, _ = fmt.Fprintf(w, "🪟 Window: last %d days (max lag: %d, top-k: %d, thresholds: %.2f/%.2f)\n",
		p.Window, p.MaxLag, p.TopK, p.ACFThreshold, p.PACFThreshold)
}

// describeSource returns a short human readable name for the observation source.
func describeSource(src contract.SourceConfig) string {
	if src.Kind == schema.PrometheusSource {
		return fmt.Sprintf("prometheus %s", src.PromURL)
	}
	if src.Path == "" || src.Path == "-" {
		return "stdin"
	}
	return filepath.Base(src.Path)
}

// PrintDetectResults writes detection output in the configured format, followed by
// the diagnostics.
func PrintDetectResults(output *schema.DetectOutput, cfg *contract.Config, duration time.Duration) error {
	if cfg.AnnotateRows {
		if err := writeAnnotatedResults(output, cfg); err != nil {
			return err
		}
	} else if err := writeDetectResults(output, cfg, duration); err != nil {
		return err
	}
	return writeDiagnosticsOutput(output.Diagnostics, cfg)
}
