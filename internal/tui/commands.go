package tui

import (
	"context"
	"time"

	"sheet2form/internal/spreadsheet"
	"sheet2form/internal/submission"

	tea "github.com/charmbracelet/bubbletea"
)

// sheetLoadedMsg carries the result of a spreadsheet load.
type sheetLoadedMsg struct {
	source string
	sheet  *spreadsheet.Sheet
	err    error
}

// eventsMsg carries every event that was queued when the wait returned.
type eventsMsg struct {
	queue  *submission.EventQueue
	events []submission.Event
	done   bool
}

type copiedToClipboardMsg struct {
	err error
}

type hideCopiedMsg struct{}

// LoadFunc reads the spreadsheet at source.
type LoadFunc func(ctx context.Context, source string) (*spreadsheet.Sheet, error)

func loadSheetCmd(load LoadFunc, source string) tea.Cmd {
	return func() tea.Msg {
		sheet, err := load(context.Background(), source)
		return sheetLoadedMsg{source: source, sheet: sheet, err: err}
	}
}

// waitForEventsCmd blocks until the controller publishes something or finishes.
func waitForEventsCmd(queue *submission.EventQueue) tea.Cmd {
	return func() tea.Msg {
		events, done, _ := queue.Wait(context.Background())
		return eventsMsg{queue: queue, events: events, done: done}
	}
}

func copyToClipboardCmd(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return copiedToClipboardMsg{err: write(text)}
	}
}

func hideCopiedCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return hideCopiedMsg{}
	})
}
