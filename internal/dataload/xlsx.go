package dataload

import (
	"context"
	"fmt"

	"github.com/huangsam/cadence/schema"
	"github.com/xuri/excelize/v2"
)

// XLSXSource reads one sheet of a spreadsheet laid out like the CSV input.
type XLSXSource struct {
	Path  string
	Sheet string // Empty means the first sheet
	table tableSpec
}

// Load implements Source.
func (s *XLSXSource) Load(ctx context.Context) (schema.LoadOutput, error) {
	if err := ctx.Err(); err != nil {
		return schema.LoadOutput{}, err
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return schema.LoadOutput{}, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return schema.LoadOutput{}, fmt.Errorf("workbook %s has no sheets", s.Path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return schema.LoadOutput{}, fmt.Errorf("failed to read sheet '%s': %w", sheet, err)
	}
	return s.table.processRows(rows)
}
