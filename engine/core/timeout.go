package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WithTimeout runs fn under a bounded context. A deadline hit surfaces as an
// ErrCodeTimeout error naming the step.
func WithTimeout(ctx context.Context, step string, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	err := fn(tctx)
	if err == nil {
		return nil
	}
	return AsTimeout(step, err)
}

// WithTimeoutResult is WithTimeout for steps that produce a value.
func WithTimeoutResult[T any](
	ctx context.Context,
	step string,
	d time.Duration,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var out T
	err := WithTimeout(ctx, step, d, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

// AsTimeout rewrites deadline errors into ErrCodeTimeout and leaves others untouched.
func AsTimeout(step string, err error) error {
	if err == nil || CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(fmt.Errorf("%s timed out: %w", step, err), ErrCodeTimeout, map[string]any{"step": step})
	}
	return err
}

// Timeouts bounds each class of I/O step.
type Timeouts struct {
	Operation time.Duration
	Lock      time.Duration
	Blob      time.Duration
	Auth      time.Duration
}
