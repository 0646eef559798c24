package rodwrapper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

type LaunchConfig struct {
	Headless   bool
	NoSandbox  bool
	DevTools   bool
	SlowMotion time.Duration
	// Stealth opens pages with the go-rod/stealth evasions applied.
	Stealth bool
	Width   int
	Height  int
}

// Browser owns the Chrome process together with the CDP connection so both
// are torn down on Close.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      LaunchConfig
}

func Launch(ctx context.Context, cfg LaunchConfig) (*Browser, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Leakless(true).
		Delete("use-mock-keychain")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if cfg.SlowMotion > 0 {
		browser = browser.SlowMotion(cfg.SlowMotion)
	}
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	return &Browser{browser: browser, launcher: l, cfg: cfg}, nil
}

// Page opens a blank tab sized to the configured viewport.
func (b *Browser) Page() (*rod.Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if b.cfg.Stealth {
		page, err = stealth.Page(b.browser)
	} else {
		page, err = b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if b.cfg.Width > 0 && b.cfg.Height > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             b.cfg.Width,
			Height:            b.cfg.Height,
			DeviceScaleFactor: 1,
		}); err != nil {
			return nil, fmt.Errorf("set viewport: %w", err)
		}
	}
	return page, nil
}

func (b *Browser) Close() {
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}
