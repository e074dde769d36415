package submission

import (
	"fmt"
	"strings"
)

// RunStatus is the way a run ended.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
	StatusEmpty     RunStatus = "empty"
)

// Summary aggregates the events of one run.
type Summary struct {
	RunID         string
	Status        RunStatus
	Attempted     int
	Succeeded     int
	FailedRow     int
	FailureReason string
	LastSubmitted int
}

// Summarize folds a run's events, in order, into a Summary.
func Summarize(events []Event) Summary {
	s := Summary{Status: StatusRunning}
	for _, e := range events {
		s.Add(e)
	}
	return s
}

// Add folds one event into the summary.
func (s *Summary) Add(e Event) {
	if e.RunID != "" {
		s.RunID = e.RunID
	}

	switch e.Kind {
	case EventProgress:
		s.Attempted++
	case EventSuccess:
		s.Succeeded++
		if e.Row > s.LastSubmitted {
			s.LastSubmitted = e.Row
		}
	case EventFailure:
		s.Status = StatusFailed
		s.FailedRow = e.Row
		s.FailureReason = e.Reason
	case EventCancelled:
		s.Status = StatusCancelled
	case EventSummary:
		s.Status = StatusCompleted
		s.LastSubmitted = e.LastSubmitted
	case EventNoRowsSubmitted:
		s.Status = StatusEmpty
	}
}

// Err returns nil for a completed run and a descriptive error otherwise.
func (s Summary) Err() error {
	switch s.Status {
	case StatusCompleted:
		return nil
	case StatusFailed:
		return fmt.Errorf("run stopped at row %d: %s", s.FailedRow, s.FailureReason)
	case StatusCancelled:
		return fmt.Errorf("run cancelled after row %d", s.LastSubmitted)
	case StatusEmpty:
		return fmt.Errorf("no rows were submitted")
	default:
		return fmt.Errorf("run did not finish")
	}
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %s, %d/%d rows submitted", s.RunID, s.Status, s.Succeeded, s.Attempted)
	if s.LastSubmitted > 0 {
		fmt.Fprintf(&b, ", last submitted row %d", s.LastSubmitted)
	}
	if s.Status == StatusFailed {
		fmt.Fprintf(&b, ", failed at row %d (%s)", s.FailedRow, s.FailureReason)
	}
	return b.String()
}
