package output

import (
	"context"
	"time"

	"form-agent/internal/domain/entity"
)

type BrowserPort interface {
	Ready(ctx context.Context) error
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitForCondition(ctx context.Context, selectors []string, timeout time.Duration) error

	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	Markup(ctx context.Context) (string, error)
	Evaluate(ctx context.Context, script string, args ...any) (string, error)

	// FindOne returns a nil handle and a nil error when nothing matches.
	FindOne(ctx context.Context, selector string) (ElementHandle, error)
	FindAll(ctx context.Context, selector string) ([]ElementHandle, error)
	// FindByText returns the first element in document order whose tag is in
	// tags and whose normalized text (or value, for inputs) contains text.
	FindByText(ctx context.Context, tags []string, text string) (ElementHandle, error)

	Wait(ctx context.Context, d time.Duration) error
	CurrentURL() string
	Close()
}

// ElementHandle is a live reference to one DOM element.
type ElementHandle interface {
	Describe(ctx context.Context) (entity.FieldDescriptor, error)
	Focus(ctx context.Context) error
	Click(ctx context.Context) error
	Type(ctx context.Context, text string) error
	SetValue(ctx context.Context, value string) error
	Dispatch(ctx context.Context, event string) error
	Attribute(ctx context.Context, name string) (string, error)
	Text(ctx context.Context) (string, error)
	// NodeID is stable for the lifetime of the DOM node, so two handles
	// to the same element report the same ID.
	NodeID(ctx context.Context) (string, error)
}
