// Package notify delivers order lifecycle events to customers and downstream
// systems. All dispatchers are constructed from immutable config; swapping
// delivery settings means wiring a new instance, never mutating a live one.
package notify

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/beemanhoney/shop/internal/domain/order"
)

// Log records events to the structured log and delivers nothing. Used when
// neither SMTP nor Kafka is configured.
type Log struct{}

func (Log) Dispatch(ctx context.Context, ev order.LifecycleEvent) error {
	zctx.From(ctx).Info("Order lifecycle event",
		zap.String("order_id", ev.OrderID),
		zap.String("status", string(ev.Status)),
	)
	return nil
}

// Multi fans an event out to every dispatcher. All of them are attempted;
// the first failure is returned after the loop completes.
type Multi []order.EventDispatcher

func (m Multi) Dispatch(ctx context.Context, ev order.LifecycleEvent) error {
	var firstErr error
	for _, d := range m {
		if err := d.Dispatch(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Async wraps a dispatcher so that delivery happens on its own goroutine with
// its own deadline, detached from the caller's cancellation. Dispatch always
// returns nil; failures are logged in the background. This keeps slow SMTP or
// broker round-trips out of the request path.
type Async struct {
	next    order.EventDispatcher
	timeout time.Duration
}

func NewAsync(next order.EventDispatcher, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Async{next: next, timeout: timeout}
}

func (a *Async) Dispatch(ctx context.Context, ev order.LifecycleEvent) error {
	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, a.timeout)
		defer cancel()
		if err := a.next.Dispatch(ctx, ev); err != nil {
			zctx.From(ctx).Warn("Async event dispatch failed",
				zap.String("order_id", ev.OrderID),
				zap.String("status", string(ev.Status)),
				zap.Error(err),
			)
		}
	}()
	return nil
}
