package submission

// Outcome is the result of one row submission attempt.
type Outcome struct {
	err error
}

// Success returns a successful Outcome.
func Success() Outcome {
	return Outcome{}
}

// Failure returns a failed Outcome carrying err. A nil err still counts as a failure.
func Failure(err error) Outcome {
	if err == nil {
		err = ErrDriver
	}
	return Outcome{err: err}
}

// OK reports whether the attempt succeeded.
func (o Outcome) OK() bool {
	return o.err == nil
}

// Err returns the failure cause, or nil on success.
func (o Outcome) Err() error {
	return o.err
}

// Reason returns the human-readable failure text, or "" on success.
func (o Outcome) Reason() string {
	if o.err == nil {
		return ""
	}
	return o.err.Error()
}
