// Package facade gives synchronous store calls the shape of remote
// endpoints: every call resolves to an Envelope after a simulated delay.
package facade

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Envelope is the uniform success shape of every endpoint.
type Envelope[T any] struct {
	Data T
}

// FaultFunc decides whether the named operation should fail.
// Returning nil lets the operation proceed.
type FaultFunc func(op string) error

// Facade holds the settings shared by every wrapped call.
type Facade struct {
	delay  time.Duration
	fault  FaultFunc
	logger *zap.Logger
}

// Option configures a Facade.
type Option func(*Facade)

// WithDelay sets the latency applied before a result is delivered.
func WithDelay(d time.Duration) Option {
	return func(f *Facade) {
		if d > 0 {
			f.delay = d
		}
	}
}

// WithFault installs a fault hook consulted before every operation.
func WithFault(fn FaultFunc) Option {
	return func(f *Facade) { f.fault = fn }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(f *Facade) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Facade with zero delay and no faults.
func New(opts ...Option) *Facade {
	f := &Facade{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Delay returns the configured latency.
func (f *Facade) Delay() time.Duration {
	return f.delay
}

// Do runs fn immediately and delivers its result after the configured delay.
//
// The store work inside fn happens before the delay, so a write that has
// resolved is always visible to a later read. Cancelling ctx during the
// delay does not undo fn; the result is still returned alongside the
// context error so the caller can decide to discard it.
func Do[T any](ctx context.Context, f *Facade, op string, fn func() (T, error)) (Envelope[T], error) {
	if err := ctx.Err(); err != nil {
		return Envelope[T]{}, fmt.Errorf("%s: %w", op, err)
	}
	if f.fault != nil {
		if err := f.fault(op); err != nil {
			f.logger.Warn("injected fault", zap.String("op", op), zap.Error(err))
			return Envelope[T]{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	data, err := fn()
	if err != nil {
		f.logger.Debug("operation failed", zap.String("op", op), zap.Error(err))
		return Envelope[T]{}, fmt.Errorf("%s: %w", op, err)
	}
	env := Envelope[T]{Data: data}

	if err := f.wait(ctx); err != nil {
		return env, fmt.Errorf("%s: %w", op, err)
	}
	f.logger.Debug("resolved", zap.String("op", op), zap.Duration("delay", f.delay))
	return env, nil
}

func (f *Facade) wait(ctx context.Context) error {
	if f.delay <= 0 {
		return nil
	}
	t := time.NewTimer(f.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
