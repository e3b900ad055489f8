package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string

	// SourceKind represents where observations are loaded from.
	SourceKind string

	// ResultStatus represents the outcome of periodicity detection for one series.
	ResultStatus string

	// ExclusionReason explains why a series produced no result row.
	ExclusionReason string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All observation sources supported.
const (
	FileSource       SourceKind = "file" // default
	PrometheusSource SourceKind = "prometheus"
)

// Result statuses.
const (
	PeriodicStatus   ResultStatus = "periodic"
	NoPeriodStatus   ResultStatus = "none"
	DegenerateStatus ResultStatus = "degenerate"
)

// Exclusion reasons.
const (
	InsufficientDataReason ExclusionReason = "insufficient_data"
	MalformedInputReason   ExclusionReason = "malformed_input"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid run history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSourceKinds lists all valid observation sources.
var ValidSourceKinds = map[SourceKind]struct{}{
	FileSource:       {},
	PrometheusSource: {},
}
