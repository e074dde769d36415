package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sheet2form/internal/app"
	"sheet2form/internal/spreadsheet"
	"sheet2form/internal/submission"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type runFlags struct {
	source   string
	formURL  string
	start    int
	end      int
	delay    int
	headless bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a range of rows without the interactive screen",
		Long: `Submit rows start..end (1-based, header excluded) and log every status event.
Interrupt once to stop after the current row; interrupt twice to abort it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			return runHeadless(cmd.Context(), cfg, flags.start, flags.end)
		},
	}

	cmd.Flags().StringVarP(&flags.source, "source", "s", "", "Spreadsheet: book.xlsx, user@host:/path/book.xlsx or gsheet:<id>[!range]")
	cmd.Flags().StringVarP(&flags.formURL, "form", "f", "", "Form URL")
	cmd.Flags().IntVar(&flags.start, "start", 1, "First row to submit")
	cmd.Flags().IntVar(&flags.end, "end", 0, "Last row to submit (default: last row)")
	cmd.Flags().IntVarP(&flags.delay, "delay", "d", 0, "Seconds to wait after each submitted row (default: from config)")
	cmd.Flags().BoolVar(&flags.headless, "headless", true, "Run the browser without a window")

	return cmd
}

// apply overrides cfg with the flags that were set on the command line.
func (f *runFlags) apply(cmd *cobra.Command, cfg *app.Config) error {
	if cmd.Flags().Changed("source") {
		cfg.Source = f.source
	}
	if cmd.Flags().Changed("form") {
		cfg.FormURL = f.formURL
	}
	if cmd.Flags().Changed("delay") {
		delay := time.Duration(f.delay) * time.Second
		if delay < app.MinDelay {
			return fmt.Errorf("delay must be at least %s, got %ds", app.MinDelay, f.delay)
		}
		cfg.Delay = delay
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = f.headless
	}

	if cfg.Source == "" {
		return fmt.Errorf("no spreadsheet source: use --source or SPREADSHEET_SOURCE")
	}
	if cfg.FormURL == "" {
		return fmt.Errorf("no form URL: use --form or FORM_URL")
	}
	return nil
}

func runHeadless(ctx context.Context, cfg *app.Config, start, end int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sheet, err := spreadsheet.Load(ctx, cfg.Source, cfg)
	if err != nil {
		return err
	}

	if end == 0 {
		end = sheet.TotalRows()
	}
	rng := app.SubmissionRange{Start: start, End: end}
	if err := rng.Validate(sheet.TotalRows()); err != nil {
		return fmt.Errorf("invalid row range: %w", err)
	}

	req := submission.RunRequest{
		Rows:        sheet.Rows,
		FormAddress: cfg.FormURL,
		Delay:       cfg.Delay,
		Range:       rng,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := submission.NewRunState()
	queue := submission.NewEventQueue()

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go handleSignals(runCtx, signals, state, cancel)

	newController(cfg).Start(runCtx, req, state, queue)

	summary, err := consumeEvents(ctx, queue)
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", summary.RunID).
		Str("status", string(summary.Status)).
		Int("attempted", summary.Attempted).
		Int("succeeded", summary.Succeeded).
		Int("resume_row", state.ResumeRow(start)).
		Msg(summary.String())

	return summary.Err()
}

// handleSignals stops the run after the current row on the first signal and
// aborts the current row on the second. It returns once ctx is done.
func handleSignals(ctx context.Context, signals <-chan os.Signal, state *submission.RunState, abort context.CancelFunc) {
	count := 0
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			count++
			if count == 1 {
				state.RequestCancel()
				log.Warn().
					Str("signal", sig.String()).
					Int("last_submitted_row", state.LastSubmittedRow()).
					Msg("Stop signal sent, finishing current row")
				continue
			}
			log.Warn().Str("signal", sig.String()).Msg("Aborting current row")
			abort()
			return
		}
	}
}

// consumeEvents logs every event until the queue closes and returns the folded summary.
func consumeEvents(ctx context.Context, queue *submission.EventQueue) (submission.Summary, error) {
	summary := submission.Summary{Status: submission.StatusRunning}
	for {
		events, done, err := queue.Wait(ctx)
		if err != nil {
			return summary, fmt.Errorf("waiting for run events: %w", err)
		}
		for _, e := range events {
			logEvent(e)
			summary.Add(e)
		}
		if done {
			return summary, nil
		}
	}
}

func logEvent(e submission.Event) {
	entry := log.Info()
	switch e.Kind {
	case submission.EventFailure:
		entry = log.Error().Str("reason", e.Reason)
	case submission.EventCancelled, submission.EventNoRowsSubmitted:
		entry = log.Warn()
	case submission.EventProgress:
		entry = log.Debug()
	}
	if e.Row > 0 {
		entry = entry.Int("row", e.Row)
	}
	entry.Str("run_id", e.RunID).Str("event", string(e.Kind)).Msg(e.Message())
}

func newInspectCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load a spreadsheet and show its columns and row count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cmd.Flags().Changed("source") {
				cfg.Source = source
			}
			if cfg.Source == "" {
				return fmt.Errorf("no spreadsheet source: use --source or SPREADSHEET_SOURCE")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sheet, err := spreadsheet.Load(ctx, cfg.Source, cfg)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), describeSheet(sheet))
			log.Info().
				Str("source", cfg.Source).
				Strs("headers", sheet.Headers).
				Int("rows", sheet.TotalRows()).
				Msg("Spreadsheet loaded")
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Spreadsheet: book.xlsx, user@host:/path/book.xlsx or gsheet:<id>[!range]")
	return cmd
}

// describeSheet renders the columns and the first data row as the form would receive it.
func describeSheet(sheet *spreadsheet.Sheet) string {
	out := fmt.Sprintf("%d data rows\n", sheet.TotalRows())
	for i, header := range sheet.Headers {
		value := ""
		if sheet.TotalRows() > 0 && i < len(sheet.Rows[0]) {
			value = sheet.Rows[0][i]
		}
		out += fmt.Sprintf("  field %d  %-24s %s\n", i+1, header, value)
	}
	return out
}
