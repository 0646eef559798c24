package injector

import (
	"context"
	"fmt"
	"time"

	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"
)

const (
	EventInput  = "input"
	EventChange = "change"
)

// WaitFunc pauses for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

type Injector struct {
	opts   entity.FillOptions
	wait   WaitFunc
	logger output.LoggerPort
}

func New(opts entity.FillOptions, wait WaitFunc, logger output.LoggerPort) *Injector {
	if wait == nil {
		wait = Sleep
	}
	return &Injector{opts: opts, wait: wait, logger: logger}
}

// Sleep is the default WaitFunc.
func Sleep(ctx context.Context, d time.Duration) error {
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

// Fill focuses the control and sets its content so that page listeners
// observe the change.
func (i *Injector) Fill(ctx context.Context, el output.ElementHandle, value string) error {
	if el == nil {
		return entity.ErrElementNotFound
	}
	if err := el.Focus(ctx); err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	if err := el.SetValue(ctx, ""); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	if i.opts.Slow {
		return i.typeSlowly(ctx, el, value)
	}

	if err := el.SetValue(ctx, value); err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	if err := el.Dispatch(ctx, EventInput); err != nil {
		return fmt.Errorf("dispatch input: %w", err)
	}
	if err := el.Dispatch(ctx, EventChange); err != nil {
		return fmt.Errorf("dispatch change: %w", err)
	}
	return nil
}

func (i *Injector) typeSlowly(ctx context.Context, el output.ElementHandle, value string) error {
	delay := i.opts.EffectiveTypeDelay()
	typed := make([]rune, 0, len(value))

	for _, r := range value {
		typed = append(typed, r)
		if err := el.SetValue(ctx, string(typed)); err != nil {
			return fmt.Errorf("set value: %w", err)
		}
		if err := el.Dispatch(ctx, EventInput); err != nil {
			return fmt.Errorf("dispatch input: %w", err)
		}
		if err := i.wait(ctx, delay); err != nil {
			return err
		}
	}

	if err := el.Dispatch(ctx, EventChange); err != nil {
		return fmt.Errorf("dispatch change: %w", err)
	}
	return nil
}

type Target struct {
	Element output.ElementHandle
	Value   string
	Label   string
}

// FillAll fills every target, skipping the ones that fail, and returns how
// many were filled.
func (i *Injector) FillAll(ctx context.Context, targets []Target) int {
	filled := 0
	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}
		if err := i.Fill(ctx, t.Element, t.Value); err != nil {
			if i.logger != nil {
				i.logger.Warn("Failed to fill field", "field", t.Label, "error", err)
			}
			continue
		}
		filled++
		if i.logger != nil {
			i.logger.Debug("Field filled", "field", t.Label)
		}
		if i.opts.Slow {
			_ = i.wait(ctx, i.opts.EffectiveTypeDelay())
		}
	}
	return filled
}
