package spreadsheet

import (
	"context"
	"errors"
	"fmt"

	"sheet2form/internal/app"
)

// ErrEmptySheet is returned when a worksheet has no header row.
var ErrEmptySheet = errors.New("worksheet has no header row")

// Sheet is a loaded worksheet. Rows excludes the header; Rows[0] is spreadsheet row 2.
type Sheet struct {
	Headers []string
	Rows    []app.Row
}

// TotalRows returns the number of data rows.
func (s *Sheet) TotalRows() int {
	return len(s.Rows)
}

// Loader reads a worksheet from one source.
type Loader interface {
	Load(ctx context.Context) (*Sheet, error)
}

// ReadError reports a spreadsheet that could not be loaded.
type ReadError struct {
	Source string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read spreadsheet %s: %v", e.Source, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// newSheet treats the first record as the header and pads every data row to
// the header width. Cells past the header width are kept.
func newSheet(records [][]string) (*Sheet, error) {
	if len(records) == 0 {
		return nil, ErrEmptySheet
	}

	headers := append([]string(nil), records[0]...)
	rows := make([]app.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		width := len(headers)
		if len(record) > width {
			width = len(record)
		}
		row := make(app.Row, width)
		copy(row, record)
		rows = append(rows, row)
	}

	return &Sheet{Headers: headers, Rows: rows}, nil
}
