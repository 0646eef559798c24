package rod

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"form-agent/internal/domain/entity"
	"form-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginHTML = `<!DOCTYPE html>
<html>
<head><title>Login</title><style>body { margin: 0 }</style></head>
<body>
	<form id="login">
		<label for="email">Work email</label>
		<input id="email" type="email" name="user_email" />
		<label>Password <input id="pw" type="password" name="pw" /></label>
		<input id="secret" type="hidden" name="csrf" value="x" />
		<button id="go" type="submit">  Sign
			In </button>
	</form>
	<a href="/register" data-testid="nav-register">Create account</a>
	<div id="events"></div>
	<script>
		const log = document.getElementById('events');
		const email = document.getElementById('email');
		email.addEventListener('input', () => log.dataset.input = String(Number(log.dataset.input || 0) + 1));
		email.addEventListener('change', () => log.dataset.change = String(Number(log.dataset.change || 0) + 1));
		document.getElementById('login').addEventListener('submit', (e) => { e.preventDefault(); log.textContent = 'submitted'; });
	</script>
</body>
</html>`

func newTestAdapter(t *testing.T) (*BrowserAdapter, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, loginHTML)
	}))
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.Headless = true
	adapter := NewBrowserAdapter(cfg, logger.NewNop())
	t.Cleanup(adapter.Close)

	if err := adapter.Ready(context.Background()); err != nil {
		t.Skipf("browser unavailable: %v", err)
	}
	require.NoError(t, adapter.Navigate(context.Background(), server.URL, 30*time.Second))
	return adapter, server.URL
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Headless)
	assert.Equal(t, defaultTimeout, cfg.Timeout)
	assert.Equal(t, defaultShotWidth, cfg.ScreenshotWidth)
	assert.False(t, cfg.Stealth)
}

func TestNewBrowserAdapter_IsLazy(t *testing.T) {
	adapter := NewBrowserAdapter(BrowserConfig{}, logger.NewNop())

	assert.Nil(t, adapter.page)
	assert.Equal(t, defaultTimeout, adapter.cfg.Timeout)
	assert.Equal(t, defaultShotQuality, adapter.cfg.ScreenshotQuality)
	assert.Equal(t, "", adapter.CurrentURL())

	_, err := adapter.FindOne(context.Background(), "input")
	assert.ErrorIs(t, err, entity.ErrBrowserUnavailable)
}

func TestBrowserAdapter_ClosedIsUnavailable(t *testing.T) {
	adapter := NewBrowserAdapter(DefaultConfig(), logger.NewNop())
	adapter.Close()
	adapter.Close()

	assert.ErrorIs(t, adapter.Ready(context.Background()), entity.ErrBrowserUnavailable)
}

func TestBrowserAdapter_Wait(t *testing.T) {
	adapter := NewBrowserAdapter(DefaultConfig(), logger.NewNop())

	start := time.Now()
	require.NoError(t, adapter.Wait(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, adapter.Wait(ctx, time.Hour), context.Canceled)
}

func TestBrowserAdapter_DescribeResolvesLabels(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	email, err := adapter.FindOne(ctx, "#email")
	require.NoError(t, err)
	require.NotNil(t, email)
	fd, err := email.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "input", fd.Tag)
	assert.Equal(t, "email", fd.Type)
	assert.Equal(t, "user_email", fd.Name)
	assert.Equal(t, "Work email", fd.LabelText)
	assert.True(t, fd.Visible)

	pw, err := adapter.FindOne(ctx, "#pw")
	require.NoError(t, err)
	fd, err = pw.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Password", fd.LabelText)

	hidden, err := adapter.FindOne(ctx, "#secret")
	require.NoError(t, err)
	fd, err = hidden.Describe(ctx)
	require.NoError(t, err)
	assert.False(t, fd.Visible)
}

func TestBrowserAdapter_FindOneMissing(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	el, err := adapter.FindOne(context.Background(), "#nope")
	assert.NoError(t, err)
	assert.Nil(t, el)
}

func TestBrowserAdapter_FindAll(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	els, err := adapter.FindAll(context.Background(), "input, textarea")
	require.NoError(t, err)
	assert.Len(t, els, 3)
}

func TestBrowserAdapter_FindByText(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	el, err := adapter.FindByText(ctx, []string{"button", "a", "input"}, "sign in")
	require.NoError(t, err)
	require.NotNil(t, el)
	id, err := el.Attribute(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, "go", id)

	el, err = adapter.FindByText(ctx, []string{"button"}, "Create account")
	require.NoError(t, err)
	assert.Nil(t, el)
}

func TestBrowserAdapter_SetValueAndDispatch(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	el, err := adapter.FindOne(ctx, "#email")
	require.NoError(t, err)
	require.NoError(t, el.Focus(ctx))
	require.NoError(t, el.SetValue(ctx, "a@b.com"))
	require.NoError(t, el.Dispatch(ctx, "input"))
	require.NoError(t, el.Dispatch(ctx, "change"))

	value, err := adapter.Evaluate(ctx, `() => document.getElementById('email').value`)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", value)

	counts, err := adapter.Evaluate(ctx, `() => { const d = document.getElementById('events').dataset; return d.input + "/" + d.change }`)
	require.NoError(t, err)
	assert.Equal(t, "1/1", counts)
}

func TestBrowserAdapter_TypeAndClick(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	pw, err := adapter.FindOne(ctx, "#pw")
	require.NoError(t, err)
	require.NoError(t, pw.Click(ctx))
	require.NoError(t, pw.Type(ctx, "p1"))

	submit, err := adapter.FindOne(ctx, `button[type="submit"]`)
	require.NoError(t, err)
	require.NoError(t, submit.Click(ctx))

	text, err := adapter.Evaluate(ctx, `() => document.getElementById('events').textContent`)
	require.NoError(t, err)
	assert.Equal(t, "submitted", text)
}

func TestBrowserAdapter_WaitForCondition(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	assert.NoError(t, adapter.WaitForCondition(ctx, []string{".missing", `input[type="password"]`}, 5*time.Second))
	assert.Error(t, adapter.WaitForCondition(ctx, []string{".missing"}, 300*time.Millisecond))
}

func TestBrowserAdapter_Markup(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	markup, err := adapter.Markup(context.Background())
	require.NoError(t, err)

	assert.Contains(t, markup, `id="email"`)
	assert.Contains(t, markup, `data-testid="nav-register"`)
	assert.NotContains(t, markup, "<script")
	assert.NotContains(t, markup, "<title")
	assert.NotContains(t, markup, `name="csrf"`)
}

func TestBrowserAdapter_Screenshot(t *testing.T) {
	adapter, url := newTestAdapter(t)

	shot, err := adapter.Screenshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "jpeg", shot.Format)
	assert.Equal(t, "image/jpeg", shot.MimeType())
	assert.NotEmpty(t, shot.Data)
	assert.LessOrEqual(t, shot.Width, defaultShotWidth)
	assert.Equal(t, url+"/", adapter.CurrentURL())
}
