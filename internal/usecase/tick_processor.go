package usecase

import (
	"context"
	"math"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	"PriceWatch/internal/registry"
	"PriceWatch/pkg/logger"
)

// TickProcessor applies price ticks to the registry and emits events.
type TickProcessor struct {
	reg      *registry.Registry
	notifier drepo.Notifier
	metrics  drepo.Metrics
	log      *logger.Logger
}

// NewTickProcessor creates a new TickProcessor instance.
func NewTickProcessor(reg *registry.Registry, notifier drepo.Notifier, metrics drepo.Metrics, log *logger.Logger) *TickProcessor {
	return &TickProcessor{
		reg:      reg,
		notifier: notifier,
		metrics:  metrics,
		log:      log.With(logger.Component("tick_processor")),
	}
}

// Crossed reports whether moving from last to price crosses threshold.
// Reaching the threshold counts; staying on it does not.
func Crossed(last, price, threshold float64) bool {
	return (last < threshold && price >= threshold) || (last > threshold && price <= threshold)
}

// Run applies ticks from in until ctx is done or in is closed.
func (p *TickProcessor) Run(ctx context.Context, sub *registry.Subscription, in <-chan *models.Tick) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-in:
			if !ok {
				return
			}
			p.Apply(ctx, sub, t)
		}
	}
}

// Apply processes one tick in a single critical section. Ticks from a
// subscription that is no longer current are dropped, so nothing is emitted
// for a symbol once it has been stopped or removed. sub may be nil for ticks
// that do not come from a feed. It reports whether the tick was applied.
func (p *TickProcessor) Apply(ctx context.Context, sub *registry.Subscription, t *models.Tick) bool {
	if t == nil || math.IsNaN(t.Price) || math.IsInf(t.Price, 0) {
		return false
	}
	start := time.Now()
	symbol, price := t.Symbol, t.Price

	var fired []float64
	applied := false
	_ = p.reg.Update(func(tx *registry.Tx) error {
		if sub != nil && !tx.Current(sub) {
			return nil
		}
		applied = true

		p.publish(ctx, models.PriceUpdate(symbol, price))

		ts := tx.Ensure(symbol, price)
		last := ts.LastPrice
		kept := ts.Alerts[:0]
		for _, a := range ts.Alerts {
			if Crossed(last, price, a.Price) {
				fired = append(fired, a.Price)
				continue
			}
			kept = append(kept, a)
		}
		if len(fired) > 0 {
			p.publish(ctx, models.AlertTriggered(symbol, fired))
			ts.Alerts = kept
		}
		ts.LastPrice = price
		return nil
	})

	if !applied {
		p.log.Debug("dropped tick from stale subscription", logger.String("symbol", symbol))
		return false
	}

	p.metrics.RecordTick(symbol)
	p.metrics.RecordLastPrice(symbol, price)
	if len(fired) > 0 {
		p.metrics.RecordAlertsTriggered(symbol, len(fired))
		p.log.Info("alerts triggered",
			logger.String("symbol", symbol),
			logger.Float64("price", price),
			logger.Any("thresholds", fired),
		)
	}
	p.metrics.RecordLatency("process_tick", time.Since(start).Seconds())
	return true
}

func (p *TickProcessor) publish(ctx context.Context, ev models.Event) {
	if err := p.notifier.Publish(ctx, ev); err != nil {
		p.metrics.RecordError("notify")
		p.log.Warn("publish event failed", logger.String("event", ev.Name), logger.Error(err))
	}
}
