package locator

import (
	"context"
	"time"

	"form-agent/internal/application/port/output"
)

const DefaultSettle = 2 * time.Second

var (
	DefaultSubmitSelectors = []string{
		`button[type="submit"]`,
		`input[type="submit"]`,
	}

	DefaultSubmitLabels = []string{
		"Sign In",
		"Log in",
		"Login",
		"Register",
		"Sign Up",
		"Create Account",
		"Submit",
		"Continue",
		"Next",
	}

	// TextTags are searched for label matches; inputs match on their value
	// and only when they are submit or button typed.
	TextTags = []string{"button", "a", "input"}
)

type Config struct {
	Selectors []string
	Labels    []string
	Tags      []string
	Settle    time.Duration
}

func DefaultConfig() Config {
	return Config{
		Selectors: DefaultSubmitSelectors,
		Labels:    DefaultSubmitLabels,
		Tags:      TextTags,
		Settle:    DefaultSettle,
	}
}

// Locator finds and clicks the best submit candidate on the current page.
type Locator struct {
	browser output.BrowserPort
	logger  output.LoggerPort
	cfg     Config
}

func New(browser output.BrowserPort, logger output.LoggerPort, cfg Config) *Locator {
	return &Locator{browser: browser, logger: logger, cfg: cfg}
}

// Submit clicks the first typed submit control, otherwise the first element
// whose text contains one of the configured labels (labels in order). It
// returns false without an error when nothing is clickable.
func (l *Locator) Submit(ctx context.Context) (bool, error) {
	for _, sel := range l.cfg.Selectors {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		el, err := l.browser.FindOne(ctx, sel)
		if err != nil || el == nil {
			continue
		}
		if l.click(ctx, el, "selector", sel) {
			return true, nil
		}
	}

	for _, label := range l.cfg.Labels {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		el, err := l.browser.FindByText(ctx, l.cfg.Tags, label)
		if err != nil || el == nil {
			continue
		}
		if l.click(ctx, el, "text", label) {
			return true, nil
		}
	}

	l.logger.Debug("No submit control found")
	return false, nil
}

func (l *Locator) click(ctx context.Context, el output.ElementHandle, by, what string) bool {
	if err := el.Click(ctx); err != nil {
		l.logger.Warn("Submit candidate click failed", "by", by, "candidate", what, "error", err)
		return false
	}
	l.logger.Info("Submit clicked", "by", by, "candidate", what)
	if l.cfg.Settle > 0 {
		_ = l.browser.Wait(ctx, l.cfg.Settle)
	}
	return true
}
