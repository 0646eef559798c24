package rod

import (
	"context"
	"fmt"

	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.ElementHandle = (*elementHandle)(nil)

type elementHandle struct {
	adapter *BrowserAdapter
	el      *rod.Element
}

// bind locks the adapter and returns the element scoped to ctx and the
// element timeout. The caller must call the returned unlock.
func (h *elementHandle) bind(ctx context.Context) (*rod.Element, func(), error) {
	h.adapter.mu.Lock()
	if h.adapter.closed {
		h.adapter.mu.Unlock()
		return nil, nil, entity.ErrBrowserUnavailable
	}
	return h.el.Context(ctx).Timeout(h.adapter.cfg.Timeout), h.adapter.mu.Unlock, nil
}

func (h *elementHandle) Describe(ctx context.Context) (entity.FieldDescriptor, error) {
	el, unlock, err := h.bind(ctx)
	if err != nil {
		return entity.FieldDescriptor{}, err
	}
	defer unlock()

	res, err := el.Eval(describeJS)
	if err != nil {
		return entity.FieldDescriptor{}, fmt.Errorf("describe: %w", err)
	}

	var fd entity.FieldDescriptor
	if err := res.Value.Unmarshal(&fd); err != nil {
		return entity.FieldDescriptor{}, fmt.Errorf("describe: %w", err)
	}
	return fd, nil
}

func (h *elementHandle) Focus(ctx context.Context) error {
	el, unlock, err := h.bind(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return el.Focus()
}

func (h *elementHandle) Click(ctx context.Context) error {
	el, unlock, err := h.bind(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := el.ScrollIntoView(); err != nil {
		h.adapter.logger.Debug("Scroll into view failed", "error", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Type sends keystrokes, appending to the current content.
func (h *elementHandle) Type(ctx context.Context, text string) error {
	el, unlock, err := h.bind(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (h *elementHandle) SetValue(ctx context.Context, value string) error {
	el, unlock, err := h.bind(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := el.Eval(setValueJS, value); err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	return nil
}

func (h *elementHandle) Dispatch(ctx context.Context, event string) error {
	el, unlock, err := h.bind(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := el.Eval(dispatchJS, event); err != nil {
		return fmt.Errorf("dispatch %s: %w", event, err)
	}
	return nil
}

func (h *elementHandle) Attribute(ctx context.Context, name string) (string, error) {
	el, unlock, err := h.bind(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	v, err := el.Attribute(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func (h *elementHandle) Text(ctx context.Context) (string, error) {
	el, unlock, err := h.bind(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	return el.Text()
}

func (h *elementHandle) NodeID(ctx context.Context) (string, error) {
	el, unlock, err := h.bind(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	node, err := el.Describe(0, false)
	if err != nil {
		return "", fmt.Errorf("describe node: %w", err)
	}
	return fmt.Sprint(node.BackendNodeID), nil
}
