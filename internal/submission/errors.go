package submission

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed submission errors.
var (
	ErrLoad     = errors.New("form did not load")
	ErrNoInputs = errors.New("no input fields found")
	ErrDriver   = errors.New("browser driver failure")
)

// LoadError indicates the destination did not render an identifiable form.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("form did not load properly at %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("form did not load properly at %s", e.URL)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// NoInputsError indicates the loaded page has no single-line text inputs.
type NoInputsError struct {
	URL string
}

func (e *NoInputsError) Error() string {
	return "no input fields found in the form"
}

func (e *NoInputsError) Is(target error) bool {
	return target == ErrNoInputs
}

// DriverError wraps any other browser failure together with the step it happened in.
type DriverError struct {
	Step string // "open", "navigate", "inspect", "find inputs", "type", "find submit", "click"
	Err  error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("browser %s failed: %v", e.Step, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

func (e *DriverError) Is(target error) bool {
	return target == ErrDriver
}

// NewDriverError creates a new DriverError.
func NewDriverError(step string, err error) *DriverError {
	return &DriverError{
		Step: step,
		Err:  err,
	}
}
