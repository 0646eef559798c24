package assisted

import (
	"context"
	"errors"
	"strings"
	"testing"

	"form-agent/internal/domain/entity"
	"form-agent/internal/infrastructure/browser/fake"
	"form-agent/internal/infrastructure/logger"
	"form-agent/internal/usecase/strategies/heuristic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, image *entity.Screenshot, text, instruction string) (string, error) {
	args := m.Called(ctx, image, text, instruction)
	return args.String(0), args.Error(1)
}

func newAttempt() entity.Attempt {
	creds := entity.Credentials{Email: "a@b.com", Password: "p1"}
	return entity.Attempt{
		URL:         "https://example.test",
		Credentials: creds,
		Values:      entity.NewValueSource(entity.BuiltinDefaults(), creds, nil),
	}
}

func respond(analyzer *mockAnalyzer, response string, err error) {
	analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(response, err).Once()
}

func TestRun_FormFound(t *testing.T) {
	email := fake.Input("id", "email", "type", "text")
	pw := fake.Input("id", "pw", "type", "password")
	other := fake.Button("Log in")
	submit := fake.Button("Continue", "id", "go")
	page := fake.NewPage(email, pw, other, submit)

	analyzer := &mockAnalyzer{}
	respond(analyzer, `{"formFound": true, "formElements": [
		{"type": "input", "fieldType": "email", "selector": "#email", "description": "Email address"},
		{"type": "input", "fieldType": "password", "selector": "#pw", "description": "Password"},
		{"type": "button", "fieldType": "submit", "selector": "#go", "description": "Continue"}
	], "submitButton": {"selector": "#go", "text": "Continue"}}`, nil)

	s := New(page, analyzer, logger.NewNop(), nil, DefaultConfig())
	result, err := s.Run(context.Background(), newAttempt())
	require.NoError(t, err)

	assert.Equal(t, entity.StrategySucceeded, result)
	assert.Equal(t, "a@b.com", email.Value())
	assert.Equal(t, "p1", pw.Value())
	assert.Equal(t, 1, submit.Clicks())
	assert.Equal(t, 0, other.Clicks())
	assert.Equal(t, entity.StrategyAssisted, s.Name())
	analyzer.AssertExpectations(t)
}

func TestRun_PromptCarriesTruncatedMarkup(t *testing.T) {
	page := fake.NewPage()
	page.HTML = strings.Repeat("x", 3000) + "TAIL"

	analyzer := &mockAnalyzer{}
	analyzer.On("Analyze", mock.Anything,
		mock.MatchedBy(func(shot *entity.Screenshot) bool { return shot != nil && len(shot.Data) > 0 }),
		mock.MatchedBy(func(text string) bool {
			return strings.Contains(text, strings.Repeat("x", 3000)) && !strings.Contains(text, "TAIL")
		}),
		mock.AnythingOfType("string"),
	).Return(`{"formFound": false, "authElementsVisible": false}`, nil).Once()

	result, err := New(page, analyzer, logger.NewNop(), nil, DefaultConfig()).Run(context.Background(), newAttempt())
	require.NoError(t, err)

	assert.Equal(t, entity.StrategyNotApplicable, result)
	analyzer.AssertExpectations(t)
}

func TestRun_AnalyzerError(t *testing.T) {
	btn := fake.Button("Sign In", "type", "submit")
	page := fake.NewPage(btn)

	analyzer := &mockAnalyzer{}
	respond(analyzer, "", errors.New("quota exceeded"))

	result, err := New(page, analyzer, logger.NewNop(), nil, DefaultConfig()).Run(context.Background(), newAttempt())

	assert.Equal(t, entity.StrategyNotApplicable, result)
	assert.ErrorIs(t, err, entity.ErrNoAnalysis)
	assert.Equal(t, 0, btn.Clicks())
}

func TestRun_ScreenshotError(t *testing.T) {
	page := fake.NewPage()
	page.ScreenshotErr = errors.New("page crashed")
	analyzer := &mockAnalyzer{}

	result, err := New(page, analyzer, logger.NewNop(), nil, DefaultConfig()).Run(context.Background(), newAttempt())

	assert.Equal(t, entity.StrategyNotApplicable, result)
	assert.ErrorIs(t, err, entity.ErrNoAnalysis)
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_MalformedResponse(t *testing.T) {
	page := fake.NewPage(fake.Input("type", "email"))
	analyzer := &mockAnalyzer{}
	respond(analyzer, "Sorry, I can't help with that {", nil)

	result, err := New(page, analyzer, logger.NewNop(), nil, DefaultConfig()).Run(context.Background(), newAttempt())

	assert.NoError(t, err)
	assert.Equal(t, entity.StrategyNotApplicable, result)
}

func TestRun_FormFoundWithoutSelectors(t *testing.T) {
	email := fake.Input("type", "email", "name", "login")
	pw := fake.Input("type", "password", "name", "secret")
	submit := fake.Button("Go", "type", "submit")
	page := fake.NewPage(email, pw, submit)

	analyzer := &mockAnalyzer{}
	respond(analyzer, `{"formFound": true, "formElements": [
		{"type": "input", "fieldType": "email", "description": "email field"},
		{"type": "input", "fieldType": "password", "description": "password field"}
	]}`, nil)

	result, err := New(page, analyzer, logger.NewNop(), nil, DefaultConfig()).Run(context.Background(), newAttempt())
	require.NoError(t, err)

	assert.Equal(t, entity.StrategySucceeded, result)
	assert.Equal(t, "a@b.com", email.Value())
	assert.Equal(t, "p1", pw.Value())
	assert.Equal(t, 1, submit.Clicks())
}

func TestRun_FallbackSelectorsSkipClaimedElements(t *testing.T) {
	pw := fake.Input("type", "password", "name", "pw")
	confirm := fake.Input("type", "password", "name", "pw2")
	submit := fake.Button("Create", "type", "submit")
	page := fake.NewPage(pw, confirm, submit)

	analyzer := &mockAnalyzer{}
	respond(analyzer, `{"formFound": true, "formElements": [
		{"type": "input", "fieldType": "password", "selector": "#gone", "description": "Password"},
		{"type": "input", "fieldType": "confirmPassword", "selector": "#also-gone", "description": "Repeat password"}
	]}`, nil)

	result, err := New(page, analyzer, logger.NewNop(), nil, DefaultConfig()).Run(context.Background(), newAttempt())
	require.NoError(t, err)

	assert.Equal(t, entity.StrategySucceeded, result)
	assert.Equal(t, "p1", pw.Value())
	assert.Equal(t, "p1", confirm.Value())
	assert.Equal(t, 1, pw.Focuses())
	assert.Equal(t, 1, confirm.Focuses())
}

func TestRun_FormFoundNothingOnPage(t *testing.T) {
	page := fake.NewPage(fake.Link("Home"))
	analyzer := &mockAnalyzer{}
	respond(analyzer, `{"formFound": true, "formElements": [
		{"type": "input", "fieldType": "email", "selector": "#missing", "description": "email"}
	]}`, nil)

	result, err := New(page, analyzer, logger.NewNop(), nil, DefaultConfig()).Run(context.Background(), newAttempt())

	assert.Equal(t, entity.StrategyFailed, result)
	assert.Error(t, err)
}

func TestRun_AuthElementsRevealForm(t *testing.T) {
	email := fake.Input("type", "email", "name", "email")
	pw := fake.Input("type", "password", "name", "password")
	submit := fake.Button("Continue", "type", "submit")
	signIn := fake.Link("Sign in", "href", "/account")
	signIn.OnClick = func(p *fake.Page) { p.Add(email, pw, submit) }
	page := fake.NewPage(fake.Link("Pricing"), signIn)

	analyzer := &mockAnalyzer{}
	respond(analyzer, `{"formFound": false, "authElementsVisible": true, "elementsToClick": [
		{"type": "link", "description": "Sign in link", "action": "click", "value": null}
	]}`, nil)

	hcfg := heuristic.DefaultConfig()
	hcfg.Settle = 0
	refill := heuristic.New(page, logger.NewNop(), hcfg)

	result, err := New(page, analyzer, logger.NewNop(), refill, DefaultConfig()).Run(context.Background(), newAttempt())
	require.NoError(t, err)

	assert.Equal(t, entity.StrategySucceeded, result)
	assert.Equal(t, 1, signIn.Clicks())
	assert.Equal(t, "a@b.com", email.Value())
	assert.Equal(t, "p1", pw.Value())
	assert.Equal(t, 1, submit.Clicks())
}

func TestRun_AuthElementsPreferTestID(t *testing.T) {
	byText := fake.Button("Sign In")
	byTestID := fake.Button("Account", "data-testid", "header-login")
	page := fake.NewPage(byText, byTestID)

	analyzer := &mockAnalyzer{}
	respond(analyzer, `{"authElementsVisible": true, "elementsToClick": [
		{"type": "button", "description": "account", "action": "click"}
	]}`, nil)

	result, err := New(page, analyzer, logger.NewNop(), nil, DefaultConfig()).Run(context.Background(), newAttempt())
	require.NoError(t, err)

	assert.Equal(t, entity.StrategySucceeded, result)
	assert.Equal(t, 1, byTestID.Clicks())
	assert.Equal(t, 0, byText.Clicks())
}

func TestRun_AuthElementsNothingClickable(t *testing.T) {
	page := fake.NewPage(fake.Button("Subscribe"))
	analyzer := &mockAnalyzer{}
	respond(analyzer, `{"authElementsVisible": true, "elementsToClick": [
		{"type": "button", "description": "login", "action": "click"},
		{"type": "input", "description": "search", "action": "fill", "value": "x"}
	]}`, nil)

	result, err := New(page, analyzer, logger.NewNop(), nil, DefaultConfig()).Run(context.Background(), newAttempt())

	assert.Equal(t, entity.StrategyFailed, result)
	assert.Error(t, err)
}

func TestValueFor(t *testing.T) {
	attempt := newAttempt()
	tests := []struct {
		name  string
		field entity.FormFieldItem
		want  string
		ok    bool
	}{
		{"email type", entity.FormFieldItem{FieldType: "email"}, "a@b.com", true},
		{"username label", entity.FormFieldItem{Label: "Username"}, "a@b.com", true},
		{"password description", entity.FormFieldItem{Description: "Your password"}, "p1", true},
		{"known key", entity.FormFieldItem{FieldType: entity.KeyCity}, "Metropolis", true},
		{"suggested", entity.FormFieldItem{FieldType: "coupon", SuggestedValue: "SAVE10"}, "SAVE10", true},
		{"unknown", entity.FormFieldItem{FieldType: "captcha"}, "", false},
		{"password type mentioning email", entity.FormFieldItem{FieldType: "password", Label: "Password", Description: "Password field below the email input"}, "p1", true},
		{"email type mentioning password", entity.FormFieldItem{FieldType: "email", Description: "Email used to reset your password"}, "a@b.com", true},
		{"confirm password type", entity.FormFieldItem{FieldType: "confirmPassword"}, "p1", true},
		{"generic type falls back to label", entity.FormFieldItem{FieldType: "text", Label: "Email"}, "a@b.com", true},
		{"label beats description", entity.FormFieldItem{Label: "Password", Description: "next to the email box"}, "p1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := valueFor(tt.field, attempt)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", truncate("héllo", 4))
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abc", truncate("abc", 0))
}
