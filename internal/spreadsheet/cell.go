package spreadsheet

import (
	"fmt"
	"strconv"
)

// Cell provides type-safe access to a Google Sheets cell value.
type Cell struct {
	raw interface{}
}

// NewCell creates a Cell from a raw value returned by the Sheets API
func NewCell(raw interface{}) Cell {
	return Cell{raw: raw}
}

// String returns the cell value as the sheet displays it
func (c Cell) String() string {
	switch v := c.raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// IsEmpty returns true if the cell has no value
func (c Cell) IsEmpty() bool {
	return c.String() == ""
}
