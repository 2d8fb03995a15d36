package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	"PriceWatch/internal/registry"
	"PriceWatch/pkg/logger"
)

// Saver persists the registry.
type Saver interface {
	Save(ctx context.Context) error
}

// SubscriptionManager owns the per-symbol feed goroutines.
type SubscriptionManager struct {
	reg     *registry.Registry
	stream  drepo.MarketStream
	proc    *TickProcessor
	saver   Saver
	metrics drepo.Metrics
	log     *logger.Logger

	bufferSize int

	// subscriptions derive from base so they outlive the request that
	// started them
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex // orders wg.Add against Shutdown
	closed bool
}

// ManagerOption configures SubscriptionManager.
type ManagerOption func(*SubscriptionManager)

// WithBufferSize sets the tick channel capacity between feed and processor.
func WithBufferSize(n int) ManagerOption {
	return func(m *SubscriptionManager) {
		if n > 0 {
			m.bufferSize = n
		}
	}
}

// NewSubscriptionManager creates a new SubscriptionManager instance.
func NewSubscriptionManager(
	reg *registry.Registry,
	stream drepo.MarketStream,
	proc *TickProcessor,
	saver Saver,
	metrics drepo.Metrics,
	log *logger.Logger,
	opts ...ManagerOption,
) *SubscriptionManager {
	base, cancel := context.WithCancel(context.Background())
	m := &SubscriptionManager{
		reg:        reg,
		stream:     stream,
		proc:       proc,
		saver:      saver,
		metrics:    metrics,
		log:        log.With(logger.Component("subscriptions")),
		bufferSize: 100,
		base:       base,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to symbol. It fails with ErrAlreadySubscribed when a live
// subscription exists.
func (m *SubscriptionManager) Start(_ context.Context, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("subscription manager is shut down")
	}

	sub := registry.NewSubscription(m.base, symbol)
	var active int
	err := m.reg.Update(func(tx *registry.Tx) error {
		if _, ok := tx.Subscription(symbol); ok {
			return fmt.Errorf("%s: %w", symbol, models.ErrAlreadySubscribed)
		}
		tx.Attach(sub)
		tx.Ensure(symbol, 0)
		active = tx.SubscriptionCount()
		return nil
	})
	if err != nil {
		sub.Cancel()
		return err
	}

	m.metrics.SetActiveSubscriptions(active)
	m.log.Info("subscription started",
		logger.String("symbol", symbol),
		logger.String("subscription_id", sub.ID),
	)

	m.wg.Add(1)
	go m.supervise(sub)
	return nil
}

// supervise runs the feed and the processor for sub and cleans up once both
// have returned.
func (m *SubscriptionManager) supervise(sub *registry.Subscription) {
	defer m.wg.Done()

	ctx := sub.Context()
	ticks := make(chan *models.Tick, m.bufferSize)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer close(ticks)
		// connect failures are reported by the stream itself
		err := m.stream.Stream(ctx, sub.Symbol, ticks)
		if err != nil && !errors.Is(err, models.ErrFeedConnect) {
			m.log.Warn("feed ended", logger.String("symbol", sub.Symbol), logger.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		m.proc.Run(ctx, sub, ticks)
	}()
	wg.Wait()

	var active int
	_ = m.reg.Update(func(tx *registry.Tx) error {
		tx.Release(sub)
		active = tx.SubscriptionCount()
		return nil
	})
	sub.Cancel()
	sub.Finish()
	m.metrics.SetActiveSubscriptions(active)
	m.log.Debug("subscription finished",
		logger.String("symbol", sub.Symbol),
		logger.String("subscription_id", sub.ID),
	)
}

// Stop cancels the subscription of symbol without waiting for its
// goroutines. Unknown symbols are ignored.
func (m *SubscriptionManager) Stop(symbol string) {
	var (
		stopped bool
		active  int
	)
	_ = m.reg.Update(func(tx *registry.Tx) error {
		_, stopped = tx.Detach(symbol)
		active = tx.SubscriptionCount()
		return nil
	})
	if stopped {
		m.metrics.SetActiveSubscriptions(active)
		m.log.Info("subscription stopped", logger.String("symbol", symbol))
	}
}

// Remove stops symbol and deletes its ticker in one critical section, then
// saves. The in-memory removal stands even when the save fails.
func (m *SubscriptionManager) Remove(ctx context.Context, symbol string) error {
	var active int
	_ = m.reg.Update(func(tx *registry.Tx) error {
		tx.Detach(symbol)
		tx.Delete(symbol)
		active = tx.SubscriptionCount()
		return nil
	})
	m.metrics.SetActiveSubscriptions(active)
	m.log.Info("ticker removed", logger.String("symbol", symbol))

	if err := m.saver.Save(ctx); err != nil {
		m.log.Warn("save after remove failed", logger.String("symbol", symbol), logger.Error(err))
		return err
	}
	return nil
}

// Active lists subscribed symbols, sorted.
func (m *SubscriptionManager) Active() []string {
	return m.reg.Subscriptions()
}

// Shutdown cancels every subscription and waits for the goroutines to exit
// or ctx to expire.
func (m *SubscriptionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	_ = m.reg.Update(func(tx *registry.Tx) error {
		for _, sym := range tx.SubscribedSymbols() {
			tx.Detach(sym)
		}
		return nil
	})
	m.cancel()
	m.metrics.SetActiveSubscriptions(0)

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.log.Info("all subscriptions stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown subscriptions: %w", ctx.Err())
	}
}
