package app

import (
	"fmt"
	"time"
)

// MinDelay is the smallest post-submit delay an operator may choose.
const MinDelay = time.Second

// Row is one spreadsheet data row rendered as display strings, in column order.
type Row []string

// SubmissionRange is a 1-based, inclusive span of spreadsheet rows.
type SubmissionRange struct {
	Start int
	End   int
}

// Validate checks 1 <= Start <= End <= totalRows.
func (r SubmissionRange) Validate(totalRows int) error {
	if totalRows < 1 {
		return fmt.Errorf("spreadsheet has no data rows")
	}
	if r.Start < 1 {
		return fmt.Errorf("start row must be at least 1, got %d", r.Start)
	}
	if r.End < r.Start {
		return fmt.Errorf("end row %d is before start row %d", r.End, r.Start)
	}
	if r.End > totalRows {
		return fmt.Errorf("end row %d is past the last row %d", r.End, totalRows)
	}
	return nil
}

// Len returns the number of rows in the range.
func (r SubmissionRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r SubmissionRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}
