package fallback

import (
	"context"
	"fmt"
	"time"

	"form-agent/internal/application/port/input"
	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"
)

var _ input.Strategy = (*Strategy)(nil)

type Config struct {
	EntrySelectors []string
	EntryTexts     []string
	EntryTags      []string

	IdentifierSelectors []string
	PasswordSelectors   []string

	SubmitSelectors []string
	SubmitTexts     []string
	SubmitTags      []string

	Settle time.Duration
}

func DefaultConfig() Config {
	return Config{
		EntrySelectors: []string{
			`button[type="submit"]`,
			`input[type="submit"]`,
			`a[href*="login"]`,
			`a[href*="signin"]`,
			`a[href*="auth"]`,
			".btn-primary",
			".login",
			".signin",
			".auth",
		},
		EntryTexts: []string{"Sign In", "Login", "Sign Up", "Log in", "Sign in"},
		EntryTags:  []string{"button", "a"},
		IdentifierSelectors: []string{
			`input[type="email"]`,
			`input[name*="email"]`,
			`input[name*="username"]`,
			`input[placeholder*="email"]`,
		},
		PasswordSelectors: []string{
			`input[type="password"]`,
			`input[name*="password"]`,
		},
		SubmitSelectors: []string{`button[type="submit"]`, `input[type="submit"]`},
		SubmitTexts:     []string{"Sign In", "Login", "Submit", "Log in"},
		SubmitTags:      []string{"button", "input"},
		Settle:          3 * time.Second,
	}
}

// Strategy clicks likely authentication entry points one after another and
// tries a minimal identifier plus password completion after each.
type Strategy struct {
	browser output.BrowserPort
	logger  output.LoggerPort
	cfg     Config
}

func New(browser output.BrowserPort, logger output.LoggerPort, cfg Config) *Strategy {
	return &Strategy{
		browser: browser,
		logger:  logger.WithField("strategy", entity.StrategyFallback),
		cfg:     cfg,
	}
}

func (s *Strategy) Name() entity.StrategyName {
	return entity.StrategyFallback
}

func (s *Strategy) Run(ctx context.Context, attempt entity.Attempt) (entity.StrategyResult, error) {
	hits := 0

	for _, sel := range s.cfg.EntrySelectors {
		if err := ctx.Err(); err != nil {
			return entity.StrategyFailed, err
		}
		el, err := s.browser.FindOne(ctx, sel)
		if err != nil || el == nil {
			continue
		}
		hits++
		s.logger.Info("Found potential auth element", "selector", sel)
		if s.enter(ctx, el, attempt.Credentials) {
			return entity.StrategySucceeded, nil
		}
	}

	for _, text := range s.cfg.EntryTexts {
		if err := ctx.Err(); err != nil {
			return entity.StrategyFailed, err
		}
		el, err := s.browser.FindByText(ctx, s.cfg.EntryTags, text)
		if err != nil || el == nil {
			continue
		}
		hits++
		s.logger.Info("Found potential auth element", "text", text)
		if s.enter(ctx, el, attempt.Credentials) {
			return entity.StrategySucceeded, nil
		}
	}

	if hits == 0 {
		s.logger.Info("No authentication elements found")
		return entity.StrategyNotApplicable, nil
	}
	return entity.StrategyFailed, fmt.Errorf("%d entry points tried, no form completed", hits)
}

func (s *Strategy) enter(ctx context.Context, entry output.ElementHandle, creds entity.Credentials) bool {
	if err := entry.Click(ctx); err != nil {
		s.logger.Debug("Entry click failed", "error", err)
		return false
	}
	_ = s.browser.Wait(ctx, s.cfg.Settle)
	return s.completeForm(ctx, creds)
}

// completeForm reports true only when both fields were typed and a submit
// control was clicked.
func (s *Strategy) completeForm(ctx context.Context, creds entity.Credentials) bool {
	identified := s.typeFirst(ctx, s.cfg.IdentifierSelectors, creds.Email)
	protected := s.typeFirst(ctx, s.cfg.PasswordSelectors, creds.Password)
	if !identified || !protected {
		s.logger.Debug("Form incomplete", "identifier", identified, "password", protected)
		return false
	}

	for _, sel := range s.cfg.SubmitSelectors {
		el, err := s.browser.FindOne(ctx, sel)
		if err != nil || el == nil {
			continue
		}
		if s.submit(ctx, el) {
			s.logger.Info("Submitted", "selector", sel)
			return true
		}
	}
	for _, text := range s.cfg.SubmitTexts {
		el, err := s.browser.FindByText(ctx, s.cfg.SubmitTags, text)
		if err != nil || el == nil {
			continue
		}
		if s.submit(ctx, el) {
			s.logger.Info("Submitted", "text", text)
			return true
		}
	}
	return false
}

func (s *Strategy) typeFirst(ctx context.Context, selectors []string, value string) bool {
	for _, sel := range selectors {
		el, err := s.browser.FindOne(ctx, sel)
		if err != nil || el == nil {
			continue
		}
		if err := el.Click(ctx); err != nil {
			s.logger.Debug("Field click failed", "selector", sel, "error", err)
			continue
		}
		if err := el.SetValue(ctx, ""); err != nil {
			s.logger.Debug("Clearing failed", "selector", sel, "error", err)
		}
		if err := el.Type(ctx, value); err != nil {
			s.logger.Debug("Typing failed", "selector", sel, "error", err)
			continue
		}
		return true
	}
	return false
}

func (s *Strategy) submit(ctx context.Context, el output.ElementHandle) bool {
	if err := el.Click(ctx); err != nil {
		s.logger.Debug("Submit click failed", "error", err)
		return false
	}
	_ = s.browser.Wait(ctx, s.cfg.Settle)
	return true
}
