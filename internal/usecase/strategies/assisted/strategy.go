// Package assisted asks a multimodal model where the authentication
// controls are and acts on its answer after re-resolving every element on
// the live page.
package assisted

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"form-agent/internal/application/port/input"
	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"
	"form-agent/internal/infrastructure/prompts"
	"form-agent/internal/usecase/injector"
	"form-agent/internal/usecase/locator"
)

const (
	DefaultInstruction = "Find and fill the login or registration form on this page"
	DefaultMarkupLimit = 3000
)

var (
	DefaultEntrySelectors = []string{
		`[data-testid*="login"]`,
		`[data-testid*="signin"]`,
		`[data-testid*="auth"]`,
		".login-btn",
		".signin-btn",
		".auth-btn",
	}
	DefaultEntryTexts = []string{"Sign In", "Login", "Sign Up", "Log in", "Sign in"}
)

var _ input.Strategy = (*Strategy)(nil)

type Config struct {
	Instruction    string
	PromptTemplate string
	MarkupLimit    int

	EntrySelectors []string
	EntryTexts     []string
	EntryTags      []string

	// ClickSettle follows an entry-point click, SubmitSettle a submit click.
	ClickSettle  time.Duration
	SubmitSettle time.Duration

	Locator locator.Config
}

func DefaultConfig() Config {
	return Config{
		Instruction:    DefaultInstruction,
		PromptTemplate: prompts.AuthAnalysisPrompt,
		MarkupLimit:    DefaultMarkupLimit,
		EntrySelectors: DefaultEntrySelectors,
		EntryTexts:     DefaultEntryTexts,
		EntryTags:      []string{"button", "a"},
		ClickSettle:    2 * time.Second,
		SubmitSettle:   3 * time.Second,
		Locator:        locator.DefaultConfig(),
	}
}

type Strategy struct {
	browser  output.BrowserPort
	analyzer output.AnalyzerPort
	logger   output.LoggerPort
	// refill runs once on the view revealed by an entry-point click. May be nil.
	refill input.Strategy
	cfg    Config
}

func New(
	browser output.BrowserPort,
	analyzer output.AnalyzerPort,
	logger output.LoggerPort,
	refill input.Strategy,
	cfg Config,
) *Strategy {
	return &Strategy{
		browser:  browser,
		analyzer: analyzer,
		logger:   logger.WithField("strategy", entity.StrategyAssisted),
		refill:   refill,
		cfg:      cfg,
	}
}

func (s *Strategy) Name() entity.StrategyName {
	return entity.StrategyAssisted
}

func (s *Strategy) Run(ctx context.Context, attempt entity.Attempt) (entity.StrategyResult, error) {
	plan, err := s.analyze(ctx)
	if err != nil {
		s.logger.Warn("Page analysis unavailable", "error", err)
		return entity.StrategyNotApplicable, err
	}

	s.logger.Info("Page analyzed",
		"formFound", plan.FormFound,
		"authElementsVisible", plan.AuthElementsVisible,
		"formElements", len(plan.FormElements),
		"elementsToClick", len(plan.ElementsToClick),
		"analysis", plan.PageAnalysis,
	)

	switch {
	case plan.IsUnknown():
		s.logger.Info("No form or auth elements identified")
		return entity.StrategyNotApplicable, nil
	case plan.FormFound:
		return s.fillForm(ctx, plan, attempt)
	default:
		return s.openAuth(ctx, plan, attempt)
	}
}

// analyze returns a plan, the unknown plan when the response can't be
// decoded, or an error wrapping ErrNoAnalysis when there is no response.
func (s *Strategy) analyze(ctx context.Context) (*entity.FillPlan, error) {
	shot, err := s.browser.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %v", entity.ErrNoAnalysis, err)
	}

	markup, err := s.browser.Markup(ctx)
	if err != nil {
		s.logger.Warn("Markup unavailable, analyzing screenshot only", "error", err)
		markup = ""
	}

	prompt, err := prompts.GenerateAnalysisPrompt(s.cfg.PromptTemplate, prompts.AnalysisPromptData{
		Instruction: s.cfg.Instruction,
		Markup:      truncate(markup, s.cfg.MarkupLimit),
		MarkupLimit: s.cfg.MarkupLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("render analysis prompt: %w", err)
	}

	response, err := s.analyzer.Analyze(ctx, shot, prompt, prompts.SystemInstruction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrNoAnalysis, err)
	}
	if strings.TrimSpace(response) == "" {
		return nil, fmt.Errorf("%w: empty response", entity.ErrNoAnalysis)
	}
	s.logger.Debug("Analyzer response", "response", response)

	plan, err := ParseFillPlan(response)
	if err != nil {
		var perr *PlanParseError
		if errors.As(err, &perr) {
			s.logger.Warn("Unparseable analyzer response", "error", perr)
		}
		return entity.UnknownFillPlan(), nil
	}
	return plan, nil
}

func (s *Strategy) fillForm(ctx context.Context, plan *entity.FillPlan, attempt entity.Attempt) (entity.StrategyResult, error) {
	var targets []injector.Target
	taken := make(map[string]bool)
	for _, field := range plan.FormElements {
		if strings.EqualFold(field.Type, "button") || strings.EqualFold(field.FieldType, "submit") {
			continue
		}
		value, ok := valueFor(field, attempt)
		if !ok {
			s.logger.Debug("No value for field", "field", field.Description)
			continue
		}
		el := s.resolveField(ctx, field, taken)
		if el == nil {
			s.logger.Debug("Field not on page", "field", field.Description, "selector", field.Selector)
			continue
		}
		targets = append(targets, injector.Target{Element: el, Value: value, Label: field.Hint()})
	}

	filled := injector.New(attempt.Options, s.browser.Wait, s.logger).FillAll(ctx, targets)
	s.logger.Info("Planned fields filled", "filled", filled, "resolved", len(targets))

	submitted := false
	if plan.SubmitButton != nil {
		submitted = s.clickSubmit(ctx, plan.SubmitButton)
	}
	if !submitted && filled > 0 {
		var err error
		submitted, err = locator.New(s.browser, s.logger, s.cfg.Locator).Submit(ctx)
		if err != nil {
			s.logger.Warn("Submit lookup aborted", "error", err)
		}
	}

	switch {
	case submitted, filled > 0:
		return entity.StrategySucceeded, nil
	default:
		return entity.StrategyFailed, errors.New("planned form could not be filled or submitted")
	}
}

// resolveField returns the first element matched by the field's selector or
// its type's fallback selectors that no earlier field has claimed.
func (s *Strategy) resolveField(ctx context.Context, field entity.FormFieldItem, taken map[string]bool) output.ElementHandle {
	selectors := make([]string, 0, 3)
	if field.Selector != "" {
		selectors = append(selectors, field.Selector)
	}
	selectors = append(selectors, selectorsFor(field.FieldType)...)

	for _, sel := range selectors {
		found, err := s.browser.FindAll(ctx, sel)
		if err != nil {
			s.logger.Debug("Selector lookup failed", "selector", sel, "error", err)
			continue
		}
		for _, el := range found {
			id, err := el.NodeID(ctx)
			if err != nil {
				s.logger.Debug("Node identity unavailable", "selector", sel, "error", err)
				return el
			}
			if taken[id] {
				continue
			}
			taken[id] = true
			return el
		}
	}
	return nil
}

func (s *Strategy) clickSubmit(ctx context.Context, target *entity.SubmitTarget) bool {
	var el output.ElementHandle
	if target.Selector != "" {
		el, _ = s.browser.FindOne(ctx, target.Selector)
	}
	if el == nil && strings.TrimSpace(target.Text) != "" {
		el, _ = s.browser.FindByText(ctx, locator.TextTags, target.Text)
	}
	if el == nil {
		s.logger.Debug("Planned submit not on page", "selector", target.Selector, "text", target.Text)
		return false
	}
	if err := el.Click(ctx); err != nil {
		s.logger.Warn("Planned submit click failed", "error", err)
		return false
	}
	s.logger.Info("Planned submit clicked", "selector", target.Selector, "text", target.Text)
	_ = s.browser.Wait(ctx, s.cfg.SubmitSettle)
	return true
}

// openAuth clicks an entry point for every click item until one lands, then
// gives the revealed view one heuristic pass.
func (s *Strategy) openAuth(ctx context.Context, plan *entity.FillPlan, attempt entity.Attempt) (entity.StrategyResult, error) {
	clicked := false
	for _, item := range plan.ElementsToClick {
		if !item.IsClick() {
			continue
		}
		s.logger.Info("Opening auth element", "description", item.Description)
		if s.clickEntry(ctx) {
			clicked = true
			break
		}
	}
	if !clicked {
		return entity.StrategyFailed, errors.New("no auth entry point could be clicked")
	}

	if s.refill != nil {
		result, err := s.refill.Run(ctx, attempt)
		s.logger.Info("Post-click fill pass", "result", result, "error", err)
	}
	return entity.StrategySucceeded, nil
}

func (s *Strategy) clickEntry(ctx context.Context) bool {
	for _, sel := range s.cfg.EntrySelectors {
		el, err := s.browser.FindOne(ctx, sel)
		if err != nil || el == nil {
			continue
		}
		if err := el.Click(ctx); err != nil {
			s.logger.Debug("Entry click failed", "selector", sel, "error", err)
			continue
		}
		s.logger.Info("Clicked auth entry", "selector", sel)
		_ = s.browser.Wait(ctx, s.cfg.ClickSettle)
		return true
	}

	for _, text := range s.cfg.EntryTexts {
		el, err := s.browser.FindByText(ctx, s.cfg.EntryTags, text)
		if err != nil || el == nil {
			continue
		}
		if err := el.Click(ctx); err != nil {
			s.logger.Debug("Entry click failed", "text", text, "error", err)
			continue
		}
		s.logger.Info("Clicked auth entry", "text", text)
		_ = s.browser.Wait(ctx, s.cfg.ClickSettle)
		return true
	}
	return false
}

// valueFor maps the analyzer's description of a field onto the attempt's
// values. The structured fieldType decides first; label and description are
// consulted only when it is empty or unrecognised. A suggested value is used
// only when nothing else matches.
func valueFor(field entity.FormFieldItem, attempt entity.Attempt) (string, bool) {
	if v, ok := credentialFor(field.FieldType, attempt.Credentials); ok {
		return v, true
	}
	if v, ok := attempt.Values.Lookup(field.FieldType); ok {
		return v, true
	}
	for _, text := range []string{field.Label, field.Description} {
		if v, ok := credentialFor(text, attempt.Credentials); ok {
			return v, true
		}
	}
	if field.SuggestedValue != "" {
		return field.SuggestedValue, true
	}
	return "", false
}

func credentialFor(text string, creds entity.Credentials) (string, bool) {
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "password"):
		return creds.Password, true
	case strings.Contains(text, "email"), strings.Contains(text, "username"):
		return creds.Email, true
	default:
		return "", false
	}
}

func selectorsFor(fieldType string) []string {
	ft := strings.ToLower(fieldType)
	switch {
	case ft == "email":
		return []string{`input[type="email"]`, `input[name*="email"]`}
	case ft == "username":
		return []string{`input[name*="username"]`, `input[name*="user"]`}
	case strings.Contains(ft, "password"):
		return []string{`input[type="password"]`}
	default:
		return nil
	}
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
