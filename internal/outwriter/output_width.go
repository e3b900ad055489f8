package outwriter

import (
	"os"

	"github.com/huangsam/cadence/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableEntityWidth calculates the maximum width for entity ids in table output
// based on terminal width and table configuration.
func GetMaxTableEntityWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Metric + Period + Label + ACF + PACF with borders/padding
	baseWidth := 75

	if cfg.Detail {
		baseWidth += 30 // Mean + StdDev + P95
	}

	// Table borders and separators
	baseWidth += 10

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 48 {
		return 48
	}
	return available
}
