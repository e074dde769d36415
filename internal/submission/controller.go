package submission

import (
	"context"
	"fmt"
	"time"

	"sheet2form/internal/app"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunRequest describes one run over a range of loaded rows.
type RunRequest struct {
	Rows        []app.Row
	FormAddress string
	Delay       time.Duration
	Range       app.SubmissionRange
}

// Controller submits a range of rows one at a time and reports progress as events.
type Controller struct {
	submitter RowSubmitter
	now       func() time.Time
}

// NewController creates a new Controller
func NewController(submitter RowSubmitter) *Controller {
	return &Controller{
		submitter: submitter,
		now:       time.Now,
	}
}

// Run submits rows req.Range.Start..req.Range.End in order. The range must
// already be validated against req.Rows. Cancellation is checked before each
// row; the first failed row stops the run. Run talks to the caller only through
// state and events.
func (c *Controller) Run(ctx context.Context, req RunRequest, state *RunState, events EventSink) {
	logger := log.With().
		Str("run_id", state.ID).
		Str("range", req.Range.String()).
		Logger()

	emit := func(e Event) {
		e.RunID = state.ID
		e.Time = c.now()
		events.Publish(e)
	}

	logger.Info().
		Str("url", req.FormAddress).
		Dur("delay", req.Delay).
		Msg("Starting submission run")

	for index := req.Range.Start - 1; index < req.Range.End; index++ {
		row := index + 1

		if state.CancelRequested() || ctx.Err() != nil {
			logger.Info().
				Int("row", row).
				Bool("operator_cancel", state.CancelRequested()).
				Int("last_submitted_row", state.LastSubmittedRow()).
				Msg("Run cancelled")
			emit(Event{Kind: EventCancelled})
			return
		}

		emit(progressEvent(row))

		outcome := c.submitRow(ctx, req, index, logger)
		if !outcome.OK() {
			logger.Error().
				Err(outcome.Err()).
				Int("row", row).
				Msg("Row submission failed, stopping run")
			emit(failureEvent(row, outcome.Reason()))
			return
		}

		state.AdvanceTo(row)
		logger.Info().Int("row", row).Msg("Row submitted")
		emit(successEvent(row))
	}

	last := state.LastSubmittedRow()
	if last == 0 {
		logger.Warn().Msg("Run finished without submitting any rows")
		emit(Event{Kind: EventNoRowsSubmitted})
		return
	}

	logger.Info().
		Int("last_submitted_row", last).
		Dur("elapsed", c.now().Sub(state.StartedAt)).
		Msg("Submission run completed")
	emit(Event{Kind: EventCompletionMarker})
	emit(summaryEvent(last))
}

func (c *Controller) submitRow(ctx context.Context, req RunRequest, index int, logger zerolog.Logger) Outcome {
	if index < 0 || index >= len(req.Rows) {
		return Failure(fmt.Errorf("row %d is outside the loaded spreadsheet (%d rows)", index+1, len(req.Rows)))
	}

	logger.Debug().Int("row", index+1).Msg("Submitting row")
	return c.submitter.Submit(ctx, req.FormAddress, req.Rows[index], req.Delay)
}

// Start runs the request on its own goroutine and closes queue when the run
// ends. The returned channel is closed at the same time.
func (c *Controller) Start(ctx context.Context, req RunRequest, state *RunState, queue *EventQueue) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer queue.Close()
		c.Run(ctx, req, state, queue)
	}()
	return done
}
