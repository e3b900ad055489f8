package contract

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/cadence/schema"
	"go.uber.org/zap"
)

// Default values for configuration.
const (
	DefaultWindow           = 95
	DefaultMaxLag           = 35
	DefaultDropLags         = 3
	DefaultTopK             = 3
	DefaultACFThreshold     = 0.60
	DefaultPACFThreshold    = 0.50
	DefaultResultLimit      = 100
	MaxResultLimit          = 100000
	DefaultPrecision        = 2
	DefaultMetric           = "value_max"
	DefaultEntityColumn     = "itemid"
	DefaultTimeColumn       = "clock"
	DefaultPromEntityLabel  = "instance"
	DefaultPromLookbackDays = 120
)

// AutoOutputFile asks for an output file name derived from the run parameters.
const AutoOutputFile = "auto"

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// DetectionParams holds the periodicity detection knobs.
type DetectionParams struct {
	Window        int     `json:"window" validate:"gte=8,lte=3660"`
	MinCoverage   int     `json:"min_coverage" validate:"gte=0"`
	MaxLag        int     `json:"max_lag" validate:"gte=1"`
	DropLags      int     `json:"drop_lags" validate:"gte=0"`
	TopK          int     `json:"top_k" validate:"gte=1,lte=100"`
	ACFThreshold  float64 `json:"acf_threshold" validate:"gte=-1,lte=1"`
	PACFThreshold float64 `json:"pacf_threshold" validate:"gte=-1,lte=1"`
}

// DefaultDetectionParams returns the detection parameters used when nothing is configured.
func DefaultDetectionParams() DetectionParams {
	return DetectionParams{
		Window:        DefaultWindow,
		MaxLag:        DefaultMaxLag,
		DropLags:      DefaultDropLags,
		TopK:          DefaultTopK,
		ACFThreshold:  DefaultACFThreshold,
		PACFThreshold: DefaultPACFThreshold,
	}
}

// Coverage returns the minimum number of distinct days a series needs.
func (p DetectionParams) Coverage() int {
	if p.MinCoverage <= 0 {
		return p.Window
	}
	return p.MinCoverage
}

// SourceConfig describes where observations are loaded from.
type SourceConfig struct {
	Kind         schema.SourceKind
	Path         string
	EntityColumn string
	TimeColumn   string
	TimeFormat   string // Custom Go layout (empty = auto-detect)
	Sheet        string // Spreadsheet sheet (empty = first sheet)

	PromURL          string
	PromQuery        string
	PromEntityLabel  string
	PromLookbackDays int
}

// Config holds the runtime configuration for detection.
// This struct remains the "final, validated" config.
type Config struct {
	Source  SourceConfig
	Metrics []string
	Params  DetectionParams

	ResultLimit     int
	Workers         int
	Detail          bool
	Precision       int
	Output          schema.OutputMode
	OutputFile      string
	AnnotateRows    bool
	DiagnosticsFile string
	Width           int // Terminal width override (0 = auto-detect)

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
	Verbose   bool

	// Logger receives per-series debug events. Nil means no logging.
	Logger *zap.Logger
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPath string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output       string `mapstructure:"output"`
	OutputFile   string `mapstructure:"output-file"`
	Precision    int    `mapstructure:"precision"`
	Limit        int    `mapstructure:"limit"`
	Detail       bool   `mapstructure:"detail"`
	Workers      int    `mapstructure:"workers"`
	Width        int    `mapstructure:"width"`
	Color        string `mapstructure:"color"`
	Verbose      bool   `mapstructure:"verbose"`
	RunBackend   string `mapstructure:"run-backend"`
	RunDBConnect string `mapstructure:"run-db-connect"`

	// --- Fields from detectCmd.Flags() ---
	Metrics          string  `mapstructure:"metrics"`
	Window           int     `mapstructure:"window"`
	MinCoverage      int     `mapstructure:"min-coverage"`
	MaxLag           int     `mapstructure:"max-lag"`
	DropLags         int     `mapstructure:"drop-lags"`
	TopK             int     `mapstructure:"top-k"`
	ACFThreshold     float64 `mapstructure:"acf-threshold"`
	PACFThreshold    float64 `mapstructure:"pacf-threshold"`
	EntityColumn     string  `mapstructure:"entity-column"`
	TimeColumn       string  `mapstructure:"time-column"`
	TimeFormat       string  `mapstructure:"time-format"`
	Sheet            string  `mapstructure:"sheet"`
	Source           string  `mapstructure:"source"`
	PromURL          string  `mapstructure:"prom-url"`
	PromQuery        string  `mapstructure:"prom-query"`
	PromEntityLabel  string  `mapstructure:"prom-entity-label"`
	PromLookbackDays int     `mapstructure:"prom-lookback-days"`
	AnnotateRows     bool    `mapstructure:"annotate-rows"`
	DiagnosticsFile  string  `mapstructure:"diagnostics-file"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Metrics != nil {
		clone.Metrics = make([]string, len(c.Metrics))
		copy(clone.Metrics, c.Metrics)
	}
	return &clone
}

// Log returns the configured logger, or a no-op logger when none is set.
func (c *Config) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDetectionParams(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	if err := processOutputFile(cfg); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessRunBackend validates the run history backend settings and stores them in cfg.
// An empty backend disables run history.
func ProcessRunBackend(cfg *Config, backend, connStr string) error {
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(backend)))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	cfg.RunDBConnect = connStr
	return ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect)
}

// validateSimpleInputs processes and validates all output and execution fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = strings.TrimSpace(input.OutputFile)
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.AnnotateRows = input.AnnotateRows
	cfg.DiagnosticsFile = strings.TrimSpace(input.DiagnosticsFile)
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 1 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}
	if cfg.AnnotateRows && cfg.Output == schema.TextOut {
		return fmt.Errorf("--annotate-rows requires csv, json or parquet output")
	}

	// --- 4. Backend Validation ---
	return ProcessRunBackend(cfg, input.RunBackend, input.RunDBConnect)
}

// processDetectionParams validates the detection knobs, one by one and against each other.
func processDetectionParams(cfg *Config, input *ConfigRawInput) error {
	params := DetectionParams{
		Window:        input.Window,
		MinCoverage:   input.MinCoverage,
		MaxLag:        input.MaxLag,
		DropLags:      input.DropLags,
		TopK:          input.TopK,
		ACFThreshold:  input.ACFThreshold,
		PACFThreshold: input.PACFThreshold,
	}
	if err := ValidateDetectionParams(params); err != nil {
		return err
	}
	cfg.Params = params

	cfg.Metrics = splitList(input.Metrics)
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = []string{DefaultMetric}
	}
	return nil
}

// paramsValidator checks DetectionParams struct tags and reports fields by their json name.
var paramsValidator = newParamsValidator()

func newParamsValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateDetectionParams checks the bounds of every detection parameter and
// the constraints between them.
func ValidateDetectionParams(p DetectionParams) error {
	if err := paramsValidator.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("invalid detection parameter: %s", formatFieldError(fieldErrs[0]))
		}
		return err
	}
	if 2*p.MaxLag >= p.Coverage() {
		return fmt.Errorf("max_lag must be below half of the series length (max_lag %d, length %d)", p.MaxLag, p.Coverage())
	}
	if p.DropLags > p.MaxLag {
		return fmt.Errorf("drop_lags cannot exceed max_lag (drop_lags %d, max_lag %d)", p.DropLags, p.MaxLag)
	}
	if p.MinCoverage > p.Window {
		return fmt.Errorf("min_coverage cannot exceed window (min_coverage %d, window %d)", p.MinCoverage, p.Window)
	}
	return nil
}

// formatFieldError turns a validator field error into a readable message.
func formatFieldError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()
	switch err.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s (received %v)", field, param, err.Value())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s (received %v)", field, param, err.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// processSource resolves where observations come from.
func processSource(cfg *Config, input *ConfigRawInput) error {
	src := SourceConfig{
		Kind:             schema.SourceKind(strings.ToLower(strings.TrimSpace(input.Source))),
		Path:             strings.TrimSpace(input.InputPath),
		EntityColumn:     strings.TrimSpace(input.EntityColumn),
		TimeColumn:       strings.TrimSpace(input.TimeColumn),
		TimeFormat:       input.TimeFormat,
		Sheet:            input.Sheet,
		PromURL:          strings.TrimSpace(input.PromURL),
		PromQuery:        strings.TrimSpace(input.PromQuery),
		PromEntityLabel:  strings.TrimSpace(input.PromEntityLabel),
		PromLookbackDays: input.PromLookbackDays,
	}
	if src.Kind == "" {
		src.Kind = schema.FileSource
	}
	if _, ok := schema.ValidSourceKinds[src.Kind]; !ok {
		return fmt.Errorf("invalid source '%s'. must be file, prometheus", input.Source)
	}
	if src.EntityColumn == "" {
		src.EntityColumn = DefaultEntityColumn
	}
	if src.TimeColumn == "" {
		src.TimeColumn = DefaultTimeColumn
	}
	if src.PromEntityLabel == "" {
		src.PromEntityLabel = DefaultPromEntityLabel
	}

	switch src.Kind {
	case schema.FileSource:
		if src.Path == "" {
			return fmt.Errorf("an input file is required for the file source")
		}
	case schema.PrometheusSource:
		if src.PromURL == "" || src.PromQuery == "" {
			return fmt.Errorf("--prom-url and --prom-query are required for the prometheus source")
		}
		if src.PromLookbackDays <= 0 {
			src.PromLookbackDays = DefaultPromLookbackDays
		}
		if src.PromLookbackDays < cfg.Params.Coverage() {
			return fmt.Errorf("prom-lookback-days (%d) must cover the required %d days", src.PromLookbackDays, cfg.Params.Coverage())
		}
		if len(cfg.Metrics) != 1 {
			return fmt.Errorf("the prometheus source yields exactly one metric (received %d)", len(cfg.Metrics))
		}
	}

	cfg.Source = src
	return nil
}

// processOutputFile expands the "auto" output file name.
func processOutputFile(cfg *Config) error {
	if cfg.OutputFile != AutoOutputFile {
		return nil
	}
	cfg.OutputFile = AutoOutputFileName(cfg.Params.Window, cfg.Metrics, cfg.Output)
	return nil
}

// AutoOutputFileName derives the result file name from the window and metric names.
func AutoOutputFileName(window int, metrics []string, output schema.OutputMode) string {
	ext := string(output)
	if output == schema.TextOut {
		ext = "txt"
	}
	name := fmt.Sprintf("periodicity_%d_last_days_on_%s.%s", window, strings.Join(metrics, "_"), ext)
	return filepath.Clean(name)
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}
