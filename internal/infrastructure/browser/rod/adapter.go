package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"
	"form-agent/internal/infrastructure/browser/rodwrapper"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultIdle        = 5 * time.Second
	defaultShotWidth   = 1024
	defaultShotQuality = 75
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

// BrowserAdapter drives one Chrome tab. Chrome is started on the first
// Ready call. All page access is serialized.
type BrowserAdapter struct {
	mu      sync.Mutex
	cfg     BrowserConfig
	logger  output.LoggerPort
	browser *rodwrapper.Browser
	page    *rod.Page
	closed  bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	// Timeout bounds single element operations.
	Timeout   time.Duration
	NoSandbox bool
	DevTools  bool
	Stealth   bool

	ViewportWidth  int
	ViewportHeight int

	// Screenshots wider than ScreenshotWidth are downscaled before encoding.
	ScreenshotWidth   int
	ScreenshotQuality int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:          false,
		Timeout:           defaultTimeout,
		NoSandbox:         true,
		ViewportWidth:     1366,
		ViewportHeight:    768,
		ScreenshotWidth:   defaultShotWidth,
		ScreenshotQuality: defaultShotQuality,
	}
}

func NewBrowserAdapter(cfg BrowserConfig, logger output.LoggerPort) *BrowserAdapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ScreenshotWidth <= 0 {
		cfg.ScreenshotWidth = defaultShotWidth
	}
	if cfg.ScreenshotQuality <= 0 || cfg.ScreenshotQuality > 100 {
		cfg.ScreenshotQuality = defaultShotQuality
	}
	return &BrowserAdapter{cfg: cfg, logger: logger}
}

func (b *BrowserAdapter) Ready(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("%w: adapter closed", entity.ErrBrowserUnavailable)
	}
	if b.page != nil {
		return nil
	}

	browser, err := rodwrapper.Launch(ctx, rodwrapper.LaunchConfig{
		Headless:   b.cfg.Headless,
		NoSandbox:  b.cfg.NoSandbox,
		DevTools:   b.cfg.DevTools,
		SlowMotion: b.cfg.SlowMotion,
		Stealth:    b.cfg.Stealth,
		Width:      b.cfg.ViewportWidth,
		Height:     b.cfg.ViewportHeight,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrBrowserUnavailable, err)
	}

	page, err := browser.Page()
	if err != nil {
		browser.Close()
		return fmt.Errorf("%w: %v", entity.ErrBrowserUnavailable, err)
	}

	b.browser = browser
	b.page = page
	b.logger.Info("Browser started", "headless", b.cfg.Headless, "stealth", b.cfg.Stealth)
	return nil
}

// pageFor must be called with mu held.
func (b *BrowserAdapter) pageFor(ctx context.Context) (*rod.Page, error) {
	if b.closed || b.page == nil {
		return nil, entity.ErrBrowserUnavailable
	}
	return b.page.Context(ctx), nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.pageFor(ctx)
	if err != nil {
		return err
	}

	p := page.Timeout(timeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("%w: %s: %v", entity.ErrNavigation, url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %s: wait load: %v", entity.ErrNavigation, url, err)
	}
	if err := page.WaitIdle(defaultIdle); err != nil {
		b.logger.Debug("Page not idle", "url", url, "error", err)
	}
	return nil
}

// WaitForCondition returns once any of selectors matches.
func (b *BrowserAdapter) WaitForCondition(ctx context.Context, selectors []string, timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.pageFor(ctx)
	if err != nil {
		return err
	}
	if len(selectors) == 0 {
		return nil
	}

	race := page.Timeout(timeout).Race()
	for _, sel := range selectors {
		race = race.Element(sel)
	}
	_, err = race.Do()
	return err
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}

	imgBytes, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(b.cfg.ScreenshotQuality),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > b.cfg.ScreenshotWidth {
		img = imaging.Resize(img, b.cfg.ScreenshotWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: b.cfg.ScreenshotQuality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

// Markup returns the form-relevant markup of the body.
func (b *BrowserAdapter) Markup(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.pageFor(ctx)
	if err != nil {
		return "", err
	}

	raw, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}

	cleaned, err := rodwrapper.CleanHTML(raw, nil)
	if err != nil {
		b.logger.Warn("HTML cleanup failed, using raw markup", "error", err)
	}
	return cleaned, nil
}

func (b *BrowserAdapter) Evaluate(ctx context.Context, script string, args ...any) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.pageFor(ctx)
	if err != nil {
		return "", err
	}

	res, err := page.Timeout(b.cfg.Timeout).Eval(script, args...)
	if err != nil {
		return "", fmt.Errorf("evaluate: %w", err)
	}
	return res.Value.Str(), nil
}

func (b *BrowserAdapter) FindOne(ctx context.Context, selector string) (output.ElementHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}

	has, el, err := page.Timeout(b.cfg.Timeout).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if !has {
		return nil, nil
	}
	return b.handle(el), nil
}

func (b *BrowserAdapter) FindAll(ctx context.Context, selector string) ([]output.ElementHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}

	els, err := page.Timeout(b.cfg.Timeout).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}

	out := make([]output.ElementHandle, 0, len(els))
	for _, el := range els {
		out = append(out, b.handle(el))
	}
	return out, nil
}

func (b *BrowserAdapter) FindByText(ctx context.Context, tags []string, text string) (output.ElementHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}

	el, err := page.Timeout(b.cfg.Timeout).
		Sleeper(rod.NotFoundSleeper).
		ElementByJS(rod.Eval(findByTextJS, tags, text))
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find by text %q: %w", text, err)
	}
	return b.handle(el), nil
}

func (b *BrowserAdapter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (b *BrowserAdapter) CurrentURL() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.page == nil || b.closed {
		return ""
	}
	info, err := b.page.Timeout(b.cfg.Timeout).Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	if b.browser != nil {
		b.browser.Close()
		b.logger.Info("Browser closed")
	}
	b.page = nil
}

func (b *BrowserAdapter) handle(el *rod.Element) *elementHandle {
	return &elementHandle{adapter: b, el: el}
}
