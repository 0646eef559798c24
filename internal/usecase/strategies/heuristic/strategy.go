package heuristic

import (
	"context"
	"fmt"
	"time"

	"form-agent/internal/application/port/input"
	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"
	"form-agent/internal/usecase/classifier"
	"form-agent/internal/usecase/injector"
	"form-agent/internal/usecase/locator"
)

const (
	controlSelector = "input, textarea"
	defaultSettle   = time.Second
)

var _ input.Strategy = (*Strategy)(nil)

type Config struct {
	// Settle is the pause between filling fields and looking for a submit.
	Settle  time.Duration
	Locator locator.Config
}

func DefaultConfig() Config {
	return Config{
		Settle:  defaultSettle,
		Locator: locator.DefaultConfig(),
	}
}

// Strategy fills every visible control it can classify and then submits.
type Strategy struct {
	browser output.BrowserPort
	logger  output.LoggerPort
	cfg     Config
}

func New(browser output.BrowserPort, logger output.LoggerPort, cfg Config) *Strategy {
	return &Strategy{
		browser: browser,
		logger:  logger.WithField("strategy", entity.StrategyHeuristic),
		cfg:     cfg,
	}
}

func (s *Strategy) Name() entity.StrategyName {
	return entity.StrategyHeuristic
}

// Run succeeds when a submit was clicked or at least one field was filled.
func (s *Strategy) Run(ctx context.Context, attempt entity.Attempt) (entity.StrategyResult, error) {
	controls, err := s.browser.FindAll(ctx, controlSelector)
	if err != nil {
		return entity.StrategyFailed, fmt.Errorf("enumerate controls: %w", err)
	}

	targets := s.plan(ctx, controls, attempt.Values)
	if len(targets) == 0 {
		s.logger.Info("No fillable controls", "controls", len(controls))
		return entity.StrategyNotApplicable, nil
	}

	inj := injector.New(attempt.Options, s.browser.Wait, s.logger)
	filled := inj.FillAll(ctx, targets)
	s.logger.Info("Fields filled", "filled", filled, "candidates", len(targets))

	if err := ctx.Err(); err != nil {
		return entity.StrategyFailed, err
	}
	if s.cfg.Settle > 0 {
		_ = s.browser.Wait(ctx, s.cfg.Settle)
	}

	submitted, err := locator.New(s.browser, s.logger, s.cfg.Locator).Submit(ctx)
	if err != nil {
		s.logger.Warn("Submit lookup aborted", "error", err)
	}

	switch {
	case submitted:
		return entity.StrategySucceeded, nil
	case filled > 0:
		s.logger.Info("No submit found, fields were filled")
		return entity.StrategySucceeded, nil
	default:
		return entity.StrategyFailed, fmt.Errorf("%d candidate fields, none filled", len(targets))
	}
}

// plan classifies visible, enabled controls and pairs them with values.
func (s *Strategy) plan(ctx context.Context, controls []output.ElementHandle, values entity.ValueSource) []injector.Target {
	var targets []injector.Target
	for _, el := range controls {
		field, err := el.Describe(ctx)
		if err != nil {
			s.logger.Debug("Describe failed", "error", err)
			continue
		}
		if !field.Visible || field.Disabled {
			continue
		}

		c := classifier.Classify(field, values)
		if c.IsNone() {
			continue
		}
		s.logger.Debug("Control classified", "name", field.Name, "type", field.Type, "rule", c.Rule)
		targets = append(targets, injector.Target{Element: el, Value: c.Value, Label: label(field)})
	}
	return targets
}

func label(f entity.FieldDescriptor) string {
	for _, v := range []string{f.Name, f.ID, f.Placeholder, f.AriaLabel, f.LabelText} {
		if v != "" {
			return v
		}
	}
	return f.Tag
}
