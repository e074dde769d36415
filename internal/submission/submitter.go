package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sheet2form/internal/app"
	"sheet2form/internal/browser"
	"sheet2form/internal/config"

	"github.com/rs/zerolog/log"
)

// submitPattern is matched case-insensitively as a substring of the submit
// control's visible text.
const submitPattern = "submit"

// settlePauses are the fixed waits around browser actions.
type settlePauses struct {
	pageLoad time.Duration
	field    time.Duration
	submit   time.Duration
}

var defaultSettlePauses = settlePauses{
	pageLoad: config.PageLoadSettle,
	field:    config.FieldInputSettle,
	submit:   config.SubmitClickSettle,
}

// Submitter drives one browser session per row to fill and submit a form.
type Submitter struct {
	driver         browser.Driver
	options        browser.Options
	attemptTimeout time.Duration
	pauses         settlePauses
}

// NewSubmitter creates a Submitter. attemptTimeout bounds every driver
// interaction of one attempt; the post-submit delay is not included.
func NewSubmitter(driver browser.Driver, options browser.Options, attemptTimeout time.Duration) *Submitter {
	if attemptTimeout <= 0 {
		attemptTimeout = app.DefaultAttemptTimeout
	}
	return &Submitter{
		driver:         driver,
		options:        options,
		attemptTimeout: attemptTimeout,
		pauses:         defaultSettlePauses,
	}
}

// Submit fills row into the form at formAddress and submits it. On success it
// waits postDelay before returning so consecutive calls are rate limited.
// Every failure is returned as a failed Outcome.
func (s *Submitter) Submit(ctx context.Context, formAddress string, row app.Row, postDelay time.Duration) Outcome {
	if formAddress == "" {
		return Failure(&LoadError{URL: formAddress, Err: errors.New("form address is empty")})
	}

	start := time.Now()
	if err := s.attempt(ctx, formAddress, row); err != nil {
		log.Warn().
			Err(err).
			Str("url", formAddress).
			Int("values", len(row)).
			Dur("elapsed", time.Since(start)).
			Msg("Form submission failed")
		return Failure(err)
	}

	log.Debug().
		Str("url", formAddress).
		Dur("elapsed", time.Since(start)).
		Dur("post_delay", postDelay).
		Msg("Form submitted")

	if err := sleepContext(ctx, postDelay); err != nil {
		// The row is already submitted; an interrupted delay does not undo that.
		log.Debug().Err(err).Msg("Post-submit delay interrupted")
	}
	return Success()
}

// attempt runs one complete submission inside its own browser session.
func (s *Submitter) attempt(ctx context.Context, formAddress string, row app.Row) error {
	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()

	session, err := s.driver.Open(attemptCtx, s.options)
	if err != nil {
		return s.driverError(attemptCtx, "open", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Str("url", formAddress).Msg("Failed to close browser session")
		}
	}()

	if err := session.Navigate(formAddress); err != nil {
		return s.driverError(attemptCtx, "navigate", err)
	}
	if err := sleepContext(attemptCtx, s.pauses.pageLoad); err != nil {
		return s.driverError(attemptCtx, "navigate", err)
	}

	loaded, err := session.PageContains("form")
	if err != nil {
		return s.driverError(attemptCtx, "inspect", err)
	}
	if !loaded {
		return &LoadError{URL: formAddress}
	}

	inputs, err := session.FindTextInputs()
	if err != nil {
		return s.driverError(attemptCtx, "find inputs", err)
	}
	if len(inputs) == 0 {
		return &NoInputsError{URL: formAddress}
	}

	filled := 0
	for i, input := range inputs {
		if i >= len(row) {
			break
		}
		if err := input.Type(row[i]); err != nil {
			return s.driverError(attemptCtx, "type", fmt.Errorf("field %d: %w", i+1, err))
		}
		filled++
		if err := sleepContext(attemptCtx, s.pauses.field); err != nil {
			return s.driverError(attemptCtx, "type", err)
		}
	}

	log.Debug().
		Int("inputs", len(inputs)).
		Int("values", len(row)).
		Int("filled", filled).
		Msg("Filled form fields")

	submit, err := session.FindByVisibleText(submitPattern)
	if err != nil {
		return s.driverError(attemptCtx, "find submit", err)
	}
	if err := submit.Click(); err != nil {
		return s.driverError(attemptCtx, "click", err)
	}

	if err := sleepContext(attemptCtx, s.pauses.submit); err != nil {
		log.Debug().Err(err).Msg("Submit settle pause interrupted")
	}
	return nil
}

// driverError wraps err, naming the attempt timeout when it is the cause.
func (s *Submitter) driverError(attemptCtx context.Context, step string, err error) error {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("attempt timed out after %s: %w", s.attemptTimeout, err)
	}
	return NewDriverError(step, err)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
