package submission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sheet2form/internal/app"
)

// fakeSubmitter returns scripted outcomes keyed by the row's first value.
type fakeSubmitter struct {
	mu       sync.Mutex
	failures map[string]error
	calls    []app.Row
	delays   []time.Duration
	onSubmit func(row app.Row)
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{failures: make(map[string]error)}
}

func (f *fakeSubmitter) failOn(key string, err error) *fakeSubmitter {
	f.failures[key] = err
	return f
}

func (f *fakeSubmitter) Submit(ctx context.Context, formAddress string, row app.Row, postDelay time.Duration) Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, row)
	f.delays = append(f.delays, postDelay)
	hook := f.onSubmit
	err := f.failures[row[0]]
	f.mu.Unlock()

	if hook != nil {
		hook(row)
	}
	if err != nil {
		return Failure(err)
	}
	return Success()
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingSink keeps every published event.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// makeRows builds n rows whose first value is "r<index>" (1-based).
func makeRows(n int) []app.Row {
	rows := make([]app.Row, n)
	for i := range rows {
		rows[i] = app.Row{fmt.Sprintf("r%d", i+1), "value"}
	}
	return rows
}

// describe renders events as compact strings for comparisons.
func describe(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		switch e.Kind {
		case EventProgress, EventSuccess:
			out[i] = fmt.Sprintf("%s(%d)", e.Kind, e.Row)
		case EventFailure:
			out[i] = fmt.Sprintf("%s(%d,%s)", e.Kind, e.Row, e.Reason)
		case EventSummary:
			out[i] = fmt.Sprintf("%s(%d)", e.Kind, e.LastSubmitted)
		default:
			out[i] = string(e.Kind)
		}
	}
	return out
}

func newTestRequest(rows []app.Row, start, end int) RunRequest {
	return RunRequest{
		Rows:        rows,
		FormAddress: "https://forms.example.com/f/1",
		Delay:       time.Second,
		Range:       app.SubmissionRange{Start: start, End: end},
	}
}
