package main

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"sheet2form/internal/app"
	"sheet2form/internal/spreadsheet"
	"sheet2form/internal/submission"
)

func TestRunFlagsApply(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		cfg           app.Config
		expectError   string
		expectedDelay time.Duration
		expectedForm  string
	}{
		{
			name:          "flags override config",
			args:          []string{"--source", "rows.xlsx", "--form", "https://f/2", "--delay", "5"},
			cfg:           app.Config{Source: "old.xlsx", FormURL: "https://f/1", Delay: 30 * time.Second},
			expectedDelay: 5 * time.Second,
			expectedForm:  "https://f/2",
		},
		{
			name:          "config used when flags absent",
			args:          []string{},
			cfg:           app.Config{Source: "old.xlsx", FormURL: "https://f/1", Delay: 30 * time.Second},
			expectedDelay: 30 * time.Second,
			expectedForm:  "https://f/1",
		},
		{
			name:        "delay below minimum",
			args:        []string{"--delay", "0"},
			cfg:         app.Config{Source: "old.xlsx", FormURL: "https://f/1", Delay: 30 * time.Second},
			expectError: "delay must be at least",
		},
		{
			name:        "missing source",
			args:        []string{"--form", "https://f/1"},
			cfg:         app.Config{Delay: 30 * time.Second},
			expectError: "no spreadsheet source",
		},
		{
			name:        "missing form",
			args:        []string{"--source", "rows.xlsx"},
			cfg:         app.Config{Delay: 30 * time.Second},
			expectError: "no form URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRunCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags failed: %v", err)
			}

			flags := &runFlags{}
			flags.source, _ = cmd.Flags().GetString("source")
			flags.formURL, _ = cmd.Flags().GetString("form")
			flags.delay, _ = cmd.Flags().GetInt("delay")
			flags.headless, _ = cmd.Flags().GetBool("headless")

			cfg := tt.cfg
			err := flags.apply(cmd, &cfg)

			if tt.expectError != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectError) {
					t.Errorf("Expected error containing %q, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg.Delay != tt.expectedDelay {
				t.Errorf("Expected delay %s, got %s", tt.expectedDelay, cfg.Delay)
			}
			if cfg.FormURL != tt.expectedForm {
				t.Errorf("Expected form %s, got %s", tt.expectedForm, cfg.FormURL)
			}
		})
	}
}

func TestConsumeEvents(t *testing.T) {
	queue := submission.NewEventQueue()
	for _, e := range []submission.Event{
		{Kind: submission.EventProgress, RunID: "run-1", Row: 1},
		{Kind: submission.EventSuccess, RunID: "run-1", Row: 1},
		{Kind: submission.EventProgress, RunID: "run-1", Row: 2},
		{Kind: submission.EventFailure, RunID: "run-1", Row: 2, Reason: "form did not load properly"},
	} {
		queue.Publish(e)
	}
	queue.Close()

	summary, err := consumeEvents(context.Background(), queue)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if summary.Status != submission.StatusFailed || summary.FailedRow != 2 || summary.LastSubmitted != 1 {
		t.Errorf("Unexpected summary %+v", summary)
	}
	if summary.Err() == nil {
		t.Error("Expected a non-nil error for a failed run")
	}
}

func TestConsumeEventsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := consumeEvents(ctx, submission.NewEventQueue()); err == nil {
		t.Error("Expected error when the context is cancelled")
	}
}

func TestHandleSignals(t *testing.T) {
	t.Run("ReturnsWhenRunEnds", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		state := submission.NewRunState()
		done := make(chan struct{})

		go func() {
			handleSignals(ctx, make(chan os.Signal), state, cancel)
			close(done)
		}()
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Expected handleSignals to return after the run ended")
		}
		if state.CancelRequested() {
			t.Error("Expected no cancel request without a signal")
		}
	})

	t.Run("FirstSignalStopsSecondAborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		state := submission.NewRunState()
		signals := make(chan os.Signal)
		done := make(chan struct{})

		go func() {
			handleSignals(ctx, signals, state, cancel)
			close(done)
		}()

		signals <- os.Interrupt
		deadline := time.Now().Add(time.Second)
		for !state.CancelRequested() && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if !state.CancelRequested() {
			t.Error("Expected cancel request after the first signal")
		}
		if ctx.Err() != nil {
			t.Error("Expected the run context to stay alive after the first signal")
		}

		signals <- os.Interrupt
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Expected handleSignals to return after the second signal")
		}
		if ctx.Err() == nil {
			t.Error("Expected the run context to be aborted")
		}
	})
}

func TestDescribeSheet(t *testing.T) {
	sheet := &spreadsheet.Sheet{
		Headers: []string{"Name", "Score"},
		Rows:    []app.Row{{"Alice", "42%"}},
	}

	out := describeSheet(sheet)
	for _, part := range []string{"1 data rows", "field 1", "Name", "Alice", "field 2", "42%"} {
		if !strings.Contains(out, part) {
			t.Errorf("Expected %q in %q", part, out)
		}
	}
}

func TestBrowserOptions(t *testing.T) {
	cfg := &app.Config{Headless: false, ChromePath: "/opt/chrome", UserAgent: "sheet2form/1.0"}

	opts := browserOptions(cfg)
	if opts.Headless || opts.ExecPath != "/opt/chrome" || opts.UserAgent != "sheet2form/1.0" {
		t.Errorf("Unexpected browser options %+v", opts)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"run", "inspect"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected subcommand %s, got %v", name, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("Expected --config flag")
	}
}
