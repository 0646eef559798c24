package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"form-agent/internal/application/port/input"
	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"
)

var DefaultAuthMarkers = []string{
	"form",
	`input[type="email"]`,
	`input[type="password"]`,
	`button[type="submit"]`,
	".login",
	".signin",
	".auth",
}

type Config struct {
	NavigationTimeout time.Duration
	// Settle is the pause after navigation before looking for auth markers.
	Settle        time.Duration
	MarkerTimeout time.Duration
	AuthMarkers   []string
	Defaults      entity.Defaults
}

func DefaultConfig() Config {
	return Config{
		NavigationTimeout: 30 * time.Second,
		Settle:            5 * time.Second,
		MarkerTimeout:     10 * time.Second,
		AuthMarkers:       DefaultAuthMarkers,
		Defaults:          entity.BuiltinDefaults(),
	}
}

var _ input.Authenticator = (*UseCase)(nil)

// UseCase runs one authentication attempt: it navigates, then tries each
// strategy in order until one succeeds.
type UseCase struct {
	browser    output.BrowserPort
	strategies []input.Strategy
	logger     output.LoggerPort
	progress   output.ProgressPort
	cfg        Config
}

func New(
	browser output.BrowserPort,
	strategies []input.Strategy,
	logger output.LoggerPort,
	progress output.ProgressPort,
	cfg Config,
) *UseCase {
	return &UseCase{
		browser:    browser,
		strategies: strategies,
		logger:     logger,
		progress:   progress,
		cfg:        cfg,
	}
}

// Authenticate returns a report whose Success field is the overall outcome.
// The error is non-nil only when the page could not be reached.
func (uc *UseCase) Authenticate(ctx context.Context, req entity.AuthRequest) (*entity.AttemptReport, error) {
	started := time.Now()
	attempt := uc.newAttempt(req)
	report := &entity.AttemptReport{}

	uc.logger.Info("Starting authentication", "url", attempt.URL, "email", attempt.Credentials.Email, "values", attempt.Values.Len())
	uc.progress.ShowAttemptStart(ctx, attempt.URL, attempt.Credentials.Email)

	finish := func(err error) (*entity.AttemptReport, error) {
		report.Duration = time.Since(started)
		uc.progress.ShowAttemptResult(ctx, report)
		return report, err
	}

	if err := uc.open(ctx, attempt.URL); err != nil {
		uc.logger.Error("Authentication aborted", "error", err)
		return finish(err)
	}

	for _, strategy := range uc.strategies {
		if err := ctx.Err(); err != nil {
			uc.logger.Warn("Authentication cancelled", "error", err)
			return finish(err)
		}

		outcome := uc.run(ctx, strategy, attempt)
		report.Outcomes = append(report.Outcomes, outcome)

		if outcome.Result.Terminal() {
			report.Success = true
			report.Strategy = outcome.Strategy
			uc.logger.Info("Authentication succeeded", "strategy", outcome.Strategy)
			return finish(nil)
		}
	}

	uc.logger.Warn("All strategies exhausted", "tried", len(report.Outcomes))
	return finish(nil)
}

func (uc *UseCase) newAttempt(req entity.AuthRequest) entity.Attempt {
	creds := req.Credentials.WithDefaults(uc.cfg.Defaults)
	return entity.Attempt{
		URL:         req.URL,
		Credentials: creds,
		Values:      entity.NewValueSource(uc.cfg.Defaults, creds, req.ExtraData),
		Options:     req.Options,
	}
}

// open brings the browser up and loads url. Missing auth markers are only
// logged.
func (uc *UseCase) open(ctx context.Context, url string) error {
	if err := uc.browser.Ready(ctx); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrBrowserUnavailable, err)
	}

	if err := uc.browser.Navigate(ctx, url, uc.cfg.NavigationTimeout); err != nil {
		if errors.Is(err, entity.ErrNavigation) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", entity.ErrNavigation, url, err)
	}
	uc.logger.Info("Page loaded", "url", uc.browser.CurrentURL())

	if uc.cfg.Settle > 0 {
		if err := uc.browser.Wait(ctx, uc.cfg.Settle); err != nil {
			return err
		}
	}

	if len(uc.cfg.AuthMarkers) > 0 {
		if err := uc.browser.WaitForCondition(ctx, uc.cfg.AuthMarkers, uc.cfg.MarkerTimeout); err != nil {
			uc.logger.Info("No auth markers yet, continuing", "error", err)
		}
	}
	return nil
}

func (uc *UseCase) run(ctx context.Context, strategy input.Strategy, attempt entity.Attempt) entity.StrategyOutcome {
	name := strategy.Name()
	uc.progress.ShowStrategyStart(ctx, name)
	uc.logger.Info("Running strategy", "strategy", name)

	started := time.Now()
	result, err := strategy.Run(ctx, attempt)
	if err != nil && result == entity.StrategySucceeded {
		result = entity.StrategyFailed
	}

	outcome := entity.StrategyOutcome{
		Strategy: name,
		Result:   result,
		Duration: time.Since(started),
	}
	if err != nil {
		outcome.Error = err.Error()
		uc.logger.Warn("Strategy error", "strategy", name, "result", result, "error", err)
	} else {
		uc.logger.Info("Strategy finished", "strategy", name, "result", result)
	}

	uc.progress.ShowStrategyResult(ctx, outcome)
	return outcome
}
