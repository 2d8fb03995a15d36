package registry

import (
	"context"

	"github.com/google/uuid"
)

// Subscription is the cancellation handle of one active feed for a symbol.
// Cancel is one-shot and does not wait; Done is closed once the feed
// connector and tick processor of the subscription have both exited.
type Subscription struct {
	ID     string
	Symbol string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSubscription derives a cancellable context for symbol from parent.
func NewSubscription(parent context.Context, symbol string) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	return &Subscription{
		ID:     uuid.NewString(),
		Symbol: symbol,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Context is cancelled when the subscription is stopped.
func (s *Subscription) Context() context.Context { return s.ctx }

// Cancel signals the subscription to stop.
func (s *Subscription) Cancel() { s.cancel() }

// Done is closed after the subscription's goroutines have exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Finish marks the subscription's goroutines as exited. Call it once.
func (s *Subscription) Finish() { close(s.done) }
