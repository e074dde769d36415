package submission

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RunState is the state shared between the presentation goroutine and the
// controller goroutine for a single run. Build a new one for every run.
type RunState struct {
	ID        string
	StartedAt time.Time

	lastSubmittedRow atomic.Int64
	cancelRequested  atomic.Bool
}

// NewRunState creates a fresh RunState with no submitted rows and no cancel request.
func NewRunState() *RunState {
	return &RunState{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// LastSubmittedRow returns the 1-based index of the most recent successful row,
// or 0 when nothing has been submitted.
func (s *RunState) LastSubmittedRow() int {
	return int(s.lastSubmittedRow.Load())
}

// AdvanceTo records row as submitted. It never moves the value backwards and
// reports whether the value changed.
func (s *RunState) AdvanceTo(row int) bool {
	next := int64(row)
	for {
		current := s.lastSubmittedRow.Load()
		if next <= current {
			return false
		}
		if s.lastSubmittedRow.CompareAndSwap(current, next) {
			return true
		}
	}
}

// RequestCancel asks the controller to stop at the next row boundary.
func (s *RunState) RequestCancel() {
	s.cancelRequested.Store(true)
}

// CancelRequested reports whether cancellation was requested.
func (s *RunState) CancelRequested() bool {
	return s.cancelRequested.Load()
}

// ResumeRow returns the row a follow-up run should start from, given the start
// row of this run.
func (s *RunState) ResumeRow(start int) int {
	if last := s.LastSubmittedRow(); last >= start {
		return last + 1
	}
	return start
}
