package dataload

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/cadence/schema"
)

// CSVSource reads a comma separated file with a header row.
// A Path of "-" reads from Stdin, or os.Stdin when Stdin is nil.
type CSVSource struct {
	Path  string
	Stdin io.Reader
	table tableSpec
}

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context) (schema.LoadOutput, error) {
	if err := ctx.Err(); err != nil {
		return schema.LoadOutput{}, err
	}
	var in io.Reader
	if s.Path == StdinPath {
		in = s.Stdin
		if in == nil {
			in = os.Stdin
		}
	} else {
		file, err := os.Open(s.Path)
		if err != nil {
			return schema.LoadOutput{}, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer func() { _ = file.Close() }()
		in = file
	}

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return schema.LoadOutput{}, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return s.table.processRows(rows)
}
