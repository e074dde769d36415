package submission

import (
	"fmt"
	"time"
)

// EventKind enumerates status event kinds.
type EventKind string

const (
	// EventProgress announces that a row is about to be submitted.
	EventProgress EventKind = "progress"
	// EventSuccess reports a submitted row.
	EventSuccess EventKind = "success"
	// EventFailure reports the row that stopped the run, with the reason.
	EventFailure EventKind = "failure"
	// EventCancelled reports that the operator stopped the run.
	EventCancelled EventKind = "cancelled"
	// EventCompletionMarker precedes the summary when every row in range was submitted.
	EventCompletionMarker EventKind = "completion_marker"
	// EventSummary names the last submitted row of a completed run.
	EventSummary EventKind = "summary"
	// EventNoRowsSubmitted warns that a run finished without submitting anything.
	EventNoRowsSubmitted EventKind = "no_rows_submitted"
)

// Event is one status update from the controller to the presentation layer.
// Only a subset of fields is set depending on Kind.
type Event struct {
	Kind  EventKind
	RunID string
	Time  time.Time

	// Progress, success and failure
	Row int

	// Failure
	Reason string

	// Summary
	LastSubmitted int
}

// Message renders the operator-facing text for the event.
func (e Event) Message() string {
	switch e.Kind {
	case EventProgress:
		return fmt.Sprintf("Submitting row %d ...", e.Row)
	case EventSuccess:
		return fmt.Sprintf("Row %d submitted successfully.", e.Row)
	case EventFailure:
		return fmt.Sprintf("Error at row %d: %s. Stopping.", e.Row, e.Reason)
	case EventCancelled:
		return "Automation stopped by user."
	case EventCompletionMarker:
		return "All rows in range submitted!"
	case EventSummary:
		return fmt.Sprintf("Finished, last submitted row: %d", e.LastSubmitted)
	case EventNoRowsSubmitted:
		return "No rows were submitted."
	default:
		return string(e.Kind)
	}
}

// Terminal reports whether no further events follow this one in the same run.
func (e Event) Terminal() bool {
	switch e.Kind {
	case EventFailure, EventCancelled, EventSummary, EventNoRowsSubmitted:
		return true
	}
	return false
}

func progressEvent(row int) Event {
	return Event{Kind: EventProgress, Row: row}
}

func successEvent(row int) Event {
	return Event{Kind: EventSuccess, Row: row}
}

func failureEvent(row int, reason string) Event {
	return Event{Kind: EventFailure, Row: row, Reason: reason}
}

func summaryEvent(lastSubmitted int) Event {
	return Event{Kind: EventSummary, LastSubmitted: lastSubmitted}
}
