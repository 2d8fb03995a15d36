package repository

import (
	"context"

	"PriceWatch/internal/domain/models"
)

// MarketStream streams ticks for a single symbol into out until ctx is
// cancelled or the upstream connection ends. It never closes out.
type MarketStream interface {
	Stream(ctx context.Context, symbol string, out chan<- *models.Tick) error
}

// QuoteSource fetches a one-off spot price.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
}

// Notifier publishes outbound events. Implementations must not block the
// caller for long: Publish is invoked inside the registry critical section.
type Notifier interface {
	Publish(ctx context.Context, ev models.Event) error
	Close() error
}

// SettingsStore loads and saves the settings document.
type SettingsStore interface {
	Load(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, s *models.Settings) error
	Close() error
}

type Metrics interface {
	RecordTick(symbol string)
	RecordAlertsTriggered(symbol string, n int)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	SetActiveSubscriptions(n int)
}
