package spreadsheet

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"sheet2form/internal/remote"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Built-in number formats 9 ("0%") and 10 ("0.00%").
const (
	numFmtPercent        = 9
	numFmtPercentDecimal = 10
)

// FileLoader reads the active worksheet of a local xlsx workbook.
type FileLoader struct {
	Path string
}

// Load opens the workbook and reads its active worksheet.
func (l *FileLoader) Load(ctx context.Context) (*Sheet, error) {
	f, err := excelize.OpenFile(l.Path)
	if err != nil {
		return nil, &ReadError{Source: l.Path, Err: err}
	}
	defer f.Close()

	sheet, err := readWorkbook(f)
	if err != nil {
		return nil, &ReadError{Source: l.Path, Err: err}
	}
	return sheet, nil
}

// Fetcher downloads a remote file.
type Fetcher interface {
	Fetch(ctx context.Context, target remote.Target) ([]byte, error)
}

// RemoteLoader downloads an xlsx workbook over SSH and reads its active worksheet.
type RemoteLoader struct {
	Fetcher Fetcher
	Target  remote.Target
}

// Load fetches the workbook and reads its active worksheet.
func (l *RemoteLoader) Load(ctx context.Context) (*Sheet, error) {
	data, err := l.Fetcher.Fetch(ctx, l.Target)
	if err != nil {
		return nil, &ReadError{Source: l.Target.String(), Err: err}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ReadError{Source: l.Target.String(), Err: fmt.Errorf("not a valid xlsx workbook: %w", err)}
	}
	defer f.Close()

	sheet, err := readWorkbook(f)
	if err != nil {
		return nil, &ReadError{Source: l.Target.String(), Err: err}
	}
	return sheet, nil
}

// readWorkbook renders every cell of the active worksheet as the operator sees it.
func readWorkbook(f *excelize.File) (*Sheet, error) {
	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no active worksheet")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", sheetName, err)
	}

	for rowIdx, row := range rows {
		if rowIdx == 0 {
			continue
		}
		for colIdx := range row {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			if value, ok := percentValue(f, sheetName, cellName); ok {
				row[colIdx] = value
			}
		}
	}

	sheet, err := newSheet(rows)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("worksheet", sheetName).
		Int("columns", len(sheet.Headers)).
		Int("rows", sheet.TotalRows()).
		Msg("Read xlsx worksheet")

	return sheet, nil
}

// percentValue renders a percentage-formatted cell as a whole percent, e.g. 0.755 -> "76%".
// ok is false for cells that are not percentage-formatted or hold no number.
func percentValue(f *excelize.File, sheetName, cellName string) (string, bool) {
	styleID, err := f.GetCellStyle(sheetName, cellName)
	if err != nil || styleID == 0 {
		return "", false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || !isPercentFormat(style) {
		return "", false
	}

	raw, err := f.GetCellValue(sheetName, cellName, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", false
	}
	if raw == "" {
		return "", true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%.0f%%", v*100), true
}

func isPercentFormat(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.NumFmt == numFmtPercent || style.NumFmt == numFmtPercentDecimal {
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}
	switch strings.TrimSpace(*style.CustomNumFmt) {
	case "0%", "0.0%", "0.00%", "0.000%":
		return true
	}
	return false
}
