package fake

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"
)

var _ output.ElementHandle = (*Element)(nil)

type Element struct {
	Tag       string
	Attrs     map[string]string
	InnerText string
	LabelText string
	Hidden    bool
	Removed   bool

	// OnClick runs after a successful click, e.g. to reveal a login form.
	OnClick func(p *Page)

	ClickErr    error
	FocusErr    error
	SetValueErr error
	TypeErr     error

	mu      sync.Mutex
	value   string
	events  []string
	clicks  int
	focuses int
	page    *Page
}

// Input builds an <input> with the given attributes as key, value pairs.
func Input(kv ...string) *Element {
	return newElement("input", "", kv...)
}

func Textarea(kv ...string) *Element {
	return newElement("textarea", "", kv...)
}

func Button(text string, kv ...string) *Element {
	return newElement("button", text, kv...)
}

func Link(text string, kv ...string) *Element {
	return newElement("a", text, kv...)
}

func newElement(tag, text string, kv ...string) *Element {
	attrs := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs[strings.ToLower(kv[i])] = kv[i+1]
	}
	el := &Element{Tag: tag, InnerText: text, Attrs: attrs}
	if v, ok := attrs["value"]; ok {
		el.value = v
	}
	return el
}

func (e *Element) attr(name string) string {
	return e.Attrs[name]
}

func (e *Element) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// Events returns the dispatched DOM events in order.
func (e *Element) Events() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

func (e *Element) Focuses() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focuses
}

func (e *Element) Describe(ctx context.Context) (entity.FieldDescriptor, error) {
	_, disabled := e.Attrs["disabled"]
	return entity.FieldDescriptor{
		ID:          e.attr("id"),
		Tag:         e.Tag,
		Type:        e.attr("type"),
		Name:        e.attr("name"),
		Placeholder: e.attr("placeholder"),
		AriaLabel:   e.attr("aria-label"),
		LabelText:   e.LabelText,
		Visible:     !e.Hidden && !e.Removed,
		Disabled:    disabled,
	}, nil
}

func (e *Element) Focus(ctx context.Context) error {
	if e.FocusErr != nil {
		return e.FocusErr
	}
	e.mu.Lock()
	e.focuses++
	e.mu.Unlock()
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.mu.Lock()
	e.clicks++
	hook := e.OnClick
	e.mu.Unlock()

	if hook != nil && e.page != nil {
		hook(e.page)
	}
	return nil
}

func (e *Element) Type(ctx context.Context, text string) error {
	if e.TypeErr != nil {
		return e.TypeErr
	}
	e.mu.Lock()
	e.value += text
	e.mu.Unlock()
	return nil
}

func (e *Element) SetValue(ctx context.Context, value string) error {
	if e.SetValueErr != nil {
		return e.SetValueErr
	}
	e.mu.Lock()
	e.value = value
	e.mu.Unlock()
	return nil
}

func (e *Element) Dispatch(ctx context.Context, event string) error {
	e.mu.Lock()
	e.events = append(e.events, event)
	e.mu.Unlock()
	return nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	return e.attr(strings.ToLower(name)), nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.InnerText, nil
}

func (e *Element) NodeID(ctx context.Context) (string, error) {
	return fmt.Sprintf("%p", e), nil
}
