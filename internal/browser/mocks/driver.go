package mocks

import (
	"context"

	"sheet2form/internal/browser"
)

// MockDriver is a test double for browser.Driver
type MockDriver struct {
	// Responses to return
	Session *MockSession

	// Errors to return
	OpenError error

	// Call tracking
	OpenCalls      int
	OpenCalledWith browser.Options
	OpenedContext  context.Context
}

// Open returns the configured session
func (m *MockDriver) Open(ctx context.Context, opts browser.Options) (browser.Session, error) {
	m.OpenCalls++
	m.OpenCalledWith = opts
	m.OpenedContext = ctx
	if m.OpenError != nil {
		return nil, m.OpenError
	}
	if m.Session == nil {
		m.Session = &MockSession{}
	}
	return m.Session, nil
}

// MockSession is a test double for browser.Session
type MockSession struct {
	// Responses to return
	PageContainsResponse bool
	Inputs               []*MockElement
	SubmitElement        *MockElement

	// Errors to return
	NavigateError          error
	PageContainsError      error
	FindTextInputsError    error
	FindByVisibleTextError error
	CloseError             error

	// Overrides
	NavigateFunc func(url string) error

	// Call tracking
	NavigateCalledWith          string
	PageContainsCalledWith      string
	FindTextInputsCalled        bool
	FindByVisibleTextCalledWith string
	CloseCalls                  int
}

// Navigate records the url
func (m *MockSession) Navigate(url string) error {
	m.NavigateCalledWith = url
	if m.NavigateFunc != nil {
		return m.NavigateFunc(url)
	}
	return m.NavigateError
}

// PageContains returns the configured response
func (m *MockSession) PageContains(text string) (bool, error) {
	m.PageContainsCalledWith = text
	if m.PageContainsError != nil {
		return false, m.PageContainsError
	}
	return m.PageContainsResponse, nil
}

// FindTextInputs returns the configured inputs
func (m *MockSession) FindTextInputs() ([]browser.Element, error) {
	m.FindTextInputsCalled = true
	if m.FindTextInputsError != nil {
		return nil, m.FindTextInputsError
	}
	elements := make([]browser.Element, len(m.Inputs))
	for i, input := range m.Inputs {
		elements[i] = input
	}
	return elements, nil
}

// FindByVisibleText returns the configured submit element
func (m *MockSession) FindByVisibleText(pattern string) (browser.Element, error) {
	m.FindByVisibleTextCalledWith = pattern
	if m.FindByVisibleTextError != nil {
		return nil, m.FindByVisibleTextError
	}
	if m.SubmitElement == nil {
		return nil, browser.ErrElementNotFound
	}
	return m.SubmitElement, nil
}

// Close counts releases
func (m *MockSession) Close() error {
	m.CloseCalls++
	return m.CloseError
}

// MockElement is a test double for browser.Element
type MockElement struct {
	// Errors to return
	TypeError  error
	ClickError error

	// Call tracking
	Typed  []string
	Clicks int
}

// Type records the text
func (m *MockElement) Type(text string) error {
	if m.TypeError != nil {
		return m.TypeError
	}
	m.Typed = append(m.Typed, text)
	return nil
}

// Click counts clicks
func (m *MockElement) Click() error {
	if m.ClickError != nil {
		return m.ClickError
	}
	m.Clicks++
	return nil
}

// NewFormSession builds a session that looks like a loaded form with the given
// number of text inputs and a submit control.
func NewFormSession(inputs int) *MockSession {
	session := &MockSession{
		PageContainsResponse: true,
		SubmitElement:        &MockElement{},
	}
	for i := 0; i < inputs; i++ {
		session.Inputs = append(session.Inputs, &MockElement{})
	}
	return session
}
