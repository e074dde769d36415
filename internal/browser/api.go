package browser

import (
	"context"
	"errors"
)

// ErrElementNotFound is returned when a query matches no element on the page.
var ErrElementNotFound = errors.New("element not found")

// Options configures how a browser session is launched.
type Options struct {
	Headless  bool
	ExecPath  string
	UserAgent string
}

// Driver launches browser sessions.
// This separates the browser process from the submission logic.
type Driver interface {
	// Open launches a new, exclusive browser session. The session lives no
	// longer than ctx and must be released with Close.
	Open(ctx context.Context, opts Options) (Session, error)
}

// Session is one browser process with a single page.
type Session interface {
	// Navigate loads url in the page.
	Navigate(url string) error

	// PageContains reports whether the page source contains text, ignoring case.
	PageContains(text string) (bool, error)

	// FindTextInputs returns the single-line text inputs in document order.
	// An empty slice is not an error.
	FindTextInputs() ([]Element, error)

	// FindByVisibleText returns the first visible button-like control whose own
	// text contains pattern, ignoring case. Returns ErrElementNotFound when
	// nothing matches.
	FindByVisibleText(pattern string) (Element, error)

	// Close tears down the browser process.
	Close() error
}

// Element is a node on the page that can receive input.
type Element interface {
	Type(text string) error
	Click() error
}
