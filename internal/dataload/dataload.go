// Package dataload reads daily observations from files and telemetry backends.
package dataload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// ErrMissingColumn means a required column is absent from the input header.
var ErrMissingColumn = errors.New("missing required column")

// ErrUnsupportedFormat means the input file extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// StdinPath is the input path that reads CSV from standard input.
const StdinPath = "-"

// Source produces observations for a detection run.
type Source interface {
	Load(ctx context.Context) (schema.LoadOutput, error)
}

// NewSource resolves the configured source into a loader for the given metrics.
func NewSource(src contract.SourceConfig, metrics []string) (Source, error) {
	if len(metrics) == 0 {
		return nil, errors.New("at least one metric is required")
	}

	switch src.Kind {
	case schema.PrometheusSource:
		return newPrometheusSource(src, metrics[0])
	case schema.FileSource, "":
		return newFileSource(src, metrics)
	default:
		return nil, fmt.Errorf("unknown source kind '%s'", src.Kind)
	}
}

// newFileSource picks a reader by file extension.
func newFileSource(src contract.SourceConfig, metrics []string) (Source, error) {
	table := tableSpec{
		entityColumn: src.EntityColumn,
		timeColumn:   src.TimeColumn,
		timeFormat:   src.TimeFormat,
		metrics:      metrics,
	}
	if table.entityColumn == "" {
		table.entityColumn = contract.DefaultEntityColumn
	}
	if table.timeColumn == "" {
		table.timeColumn = contract.DefaultTimeColumn
	}

	if src.Path == StdinPath {
		return &CSVSource{Path: StdinPath, table: table}, nil
	}

	switch ext := strings.ToLower(filepath.Ext(src.Path)); ext {
	case ".csv":
		return &CSVSource{Path: src.Path, table: table}, nil
	case ".xlsx":
		return &XLSXSource{Path: src.Path, Sheet: src.Sheet, table: table}, nil
	case ".parquet":
		return &ParquetSource{Path: src.Path, Metrics: metrics}, nil
	default:
		return nil, fmt.Errorf("%w '%s' (expected .csv, .xlsx or .parquet)", ErrUnsupportedFormat, ext)
	}
}
