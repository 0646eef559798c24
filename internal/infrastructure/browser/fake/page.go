// Package fake is an in-memory BrowserPort used by strategy and orchestrator
// tests. It models a flat document: elements in document order with
// attributes, text and visibility.
package fake

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"
)

var _ output.BrowserPort = (*Page)(nil)

type Page struct {
	mu sync.Mutex

	Elements []*Element
	URL      string
	HTML     string

	ReadyErr      error
	NavigateErr   error
	WaitForErr    error
	ScreenshotErr error
	FindErr       error

	calls map[string]int
	waits []time.Duration
}

func NewPage(elements ...*Element) *Page {
	p := &Page{calls: make(map[string]int)}
	p.Add(elements...)
	return p
}

// Add appends elements to the end of the document.
func (p *Page) Add(elements ...*Element) {
	for _, el := range elements {
		el.page = p
		if el.Attrs == nil {
			el.Attrs = map[string]string{}
		}
		p.Elements = append(p.Elements, el)
	}
}

// Calls returns how many times the named BrowserPort method ran.
func (p *Page) Calls(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[method]
}

func (p *Page) Waits() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Duration(nil), p.waits...)
}

func (p *Page) record(method string) {
	p.mu.Lock()
	p.calls[method]++
	p.mu.Unlock()
}

func (p *Page) Ready(ctx context.Context) error {
	p.record("Ready")
	return p.ReadyErr
}

func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p.record("Navigate")
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.URL = url
	return nil
}

func (p *Page) WaitForCondition(ctx context.Context, selectors []string, timeout time.Duration) error {
	p.record("WaitForCondition")
	if p.WaitForErr != nil {
		return p.WaitForErr
	}
	for _, sel := range selectors {
		if len(p.query(sel)) > 0 {
			return nil
		}
	}
	return context.DeadlineExceeded
}

func (p *Page) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	p.record("Screenshot")
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return &entity.Screenshot{Data: []byte{0xff, 0xd8}, Format: "jpeg", Width: 1, Height: 1}, nil
}

func (p *Page) Markup(ctx context.Context) (string, error) {
	p.record("Markup")
	return p.HTML, nil
}

func (p *Page) Evaluate(ctx context.Context, script string, args ...any) (string, error) {
	p.record("Evaluate")
	return "", errors.New("fake page does not run scripts")
}

func (p *Page) FindOne(ctx context.Context, selector string) (output.ElementHandle, error) {
	p.record("FindOne")
	if p.FindErr != nil {
		return nil, p.FindErr
	}
	found := p.query(selector)
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (p *Page) FindAll(ctx context.Context, selector string) ([]output.ElementHandle, error) {
	p.record("FindAll")
	if p.FindErr != nil {
		return nil, p.FindErr
	}
	found := p.query(selector)
	out := make([]output.ElementHandle, 0, len(found))
	for _, el := range found {
		out = append(out, el)
	}
	return out, nil
}

func (p *Page) FindByText(ctx context.Context, tags []string, text string) (output.ElementHandle, error) {
	p.record("FindByText")
	if p.FindErr != nil {
		return nil, p.FindErr
	}
	needle := normalize(text)
	for _, el := range p.snapshot() {
		if el.Removed || !containsTag(tags, el.Tag) {
			continue
		}
		haystack := el.InnerText
		if el.Tag == "input" {
			t := strings.ToLower(el.attr("type"))
			if t != "submit" {
				continue
			}
			haystack = el.attr("value")
		}
		if strings.Contains(normalize(haystack), needle) {
			return el, nil
		}
	}
	return nil, nil
}

func (p *Page) Wait(ctx context.Context, d time.Duration) error {
	p.mu.Lock()
	p.calls["Wait"]++
	p.waits = append(p.waits, d)
	p.mu.Unlock()
	return ctx.Err()
}

func (p *Page) CurrentURL() string {
	return p.URL
}

func (p *Page) Close() {
	p.record("Close")
}

func (p *Page) snapshot() []*Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Element(nil), p.Elements...)
}

func (p *Page) query(selector string) []*Element {
	sels := parseSelector(selector)
	var out []*Element
	for _, el := range p.snapshot() {
		if el.Removed {
			continue
		}
		for _, s := range sels {
			if s.matches(el) {
				out = append(out, el)
				break
			}
		}
	}
	return out
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
