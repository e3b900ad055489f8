package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/cadence/schema"
	"go.uber.org/zap"
)

// Color variables for console output.
var (
	WeeklyColor  = color.New(color.FgGreen, color.Bold)   // WeeklyColor marks the most common business cycle.
	MonthlyColor = color.New(color.FgMagenta, color.Bold) // MonthlyColor marks a calendar month cycle.
	CustomColor  = color.New(color.FgYellow)              // CustomColor marks any other cycle.
	NoneColor    = color.New(color.FgCyan)                // NoneColor marks series without a period.
)

// GetColorLabel returns a colored period label for console output (table).
// It uses schema.GetPeriodLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(period *int) string {
	text := schema.GetPeriodLabel(period)

	switch text {
	case schema.WeeklyLabel:
		return WeeklyColor.Sprint(text)
	case schema.MonthlyLabel:
		return MonthlyColor.Sprint(text)
	case schema.CustomLabel:
		return CustomColor.Sprint(text)
	default: // "None"
		return NoneColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// NewLogger builds the structured logger used for per-series debug events.
// It writes to stderr when verbose is set and discards everything otherwise.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.DisableStacktrace = true
	return zcfg.Build()
}

// GetRunDBFilePath returns the path to the SQLite DB file for run history.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".cadence_runs.db"
	}
	return filepath.Join(homeDir, ".cadence_runs.db")
}

// TruncateID truncates an identifier to a maximum width with an ellipsis prefix,
// keeping the tail which is usually the distinguishing part.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncateID(id string, maxWidth int) string {
	runes := []rune(id)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return id
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
