package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

const textInputSelector = `input[type='text']`

// ChromeDriver implements Driver with a local Chrome/Chromium via chromedp.
type ChromeDriver struct{}

// NewChromeDriver creates a new chromedp-backed driver
func NewChromeDriver() *ChromeDriver {
	return &ChromeDriver{}
}

// allocatorOptions maps Options onto Chrome command line flags.
func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.IgnoreCertErrors,
		chromedp.DisableGPU,
	)

	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	return allocOpts
}

// Open launches a browser process bound to ctx.
func (d *ChromeDriver) Open(ctx context.Context, opts Options) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug().Msgf(format, args...)
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			log.Warn().Msgf(format, args...)
		}),
	)

	// Running no actions starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Debug().
		Bool("headless", opts.Headless).
		Str("exec_path", opts.ExecPath).
		Msg("Browser session started")

	return &chromeSession{
		ctx:           browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

type chromeSession struct {
	ctx           context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	closed        bool
}

func (s *chromeSession) Navigate(url string) error {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) PageContains(text string) (bool, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return false, fmt.Errorf("failed to read page source: %w", err)
	}
	return strings.Contains(strings.ToLower(html), strings.ToLower(text)), nil
}

func (s *chromeSession) FindTextInputs() ([]Element, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(s.ctx, chromedp.Nodes(textInputSelector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("failed to query text inputs: %w", err)
	}

	elements := make([]Element, len(nodes))
	for i, node := range nodes {
		elements[i] = &chromeElement{ctx: s.ctx, node: node}
	}
	return elements, nil
}

func (s *chromeSession) FindByVisibleText(pattern string) (Element, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(s.ctx, chromedp.Nodes(visibleTextXPath(pattern), &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("failed to search for %q: %w", pattern, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no element with text %q: %w", pattern, ErrElementNotFound)
	}
	return &chromeElement{ctx: s.ctx, node: nodes[0]}, nil
}

// Close shuts the browser down gracefully, then releases the allocator. Safe to
// call more than once.
func (s *chromeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := chromedp.Cancel(s.ctx)
	s.browserCancel()
	s.allocCancel()
	if err != nil && s.ctx.Err() == nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type chromeElement struct {
	ctx  context.Context
	node *cdp.Node
}

func (e *chromeElement) Type(text string) error {
	if err := chromedp.Run(e.ctx, chromedp.SendKeys([]cdp.NodeID{e.node.NodeID}, text, chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("failed to type into %s: %w", e.node.LocalName, err)
	}
	return nil
}

func (e *chromeElement) Click() error {
	if err := chromedp.Run(e.ctx, chromedp.Click([]cdp.NodeID{e.node.NodeID}, chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("failed to click %s: %w", e.node.LocalName, err)
	}
	return nil
}

const (
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"

	// clickableNode is a button, an ARIA button or something nested inside one.
	clickableNode = "(self::button or @role='button' or ancestor::button or ancestor::*[@role='button'])"

	// hiddenNode excludes nodes inside a hidden subtree.
	hiddenNode = "ancestor-or-self::*[@hidden or @aria-hidden='true' or contains(translate(@style, ' ', ''), 'display:none') or contains(translate(@style, ' ', ''), 'visibility:hidden')]"
)

// visibleTextXPath matches clickable controls in the page body whose own text
// (or value, for input buttons) contains pattern, ignoring case. Plain text such
// as the title or a description line never matches.
func visibleTextXPath(pattern string) string {
	literal := xpathLiteral(strings.ToLower(pattern))
	return fmt.Sprintf(
		"//body//*[%s and not(%s) and text()[contains(translate(., '%s', '%s'), %s)]]"+
			" | //body//input[(@type='submit' or @type='button') and not(%s) and contains(translate(@value, '%s', '%s'), %s)]",
		clickableNode, hiddenNode, upperLetters, lowerLetters, literal,
		hiddenNode, upperLetters, lowerLetters, literal,
	)
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
