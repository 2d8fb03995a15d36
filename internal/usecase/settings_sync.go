package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	"PriceWatch/internal/registry"
	"PriceWatch/pkg/logger"
)

// Starter starts the feed for a symbol.
type Starter interface {
	Start(ctx context.Context, symbol string) error
}

// SettingsSync moves the settings document between the store and the
// registry. Saves are serialized.
type SettingsSync struct {
	store   drepo.SettingsStore
	reg     *registry.Registry
	metrics drepo.Metrics
	log     *logger.Logger

	saveMu sync.Mutex
}

// NewSettingsSync creates a new SettingsSync instance.
func NewSettingsSync(store drepo.SettingsStore, reg *registry.Registry, metrics drepo.Metrics, log *logger.Logger) *SettingsSync {
	return &SettingsSync{
		store:   store,
		reg:     reg,
		metrics: metrics,
		log:     log.With(logger.Component("settings")),
	}
}

// Load reads the stored document. Any failure yields the defaults; the
// returned document is always normalized.
func (s *SettingsSync) Load(ctx context.Context) *models.Settings {
	st, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, models.ErrSettingsNotFound):
		s.log.Info("no saved settings, using defaults")
		return models.DefaultSettings()
	case err != nil:
		s.metrics.RecordError("settings_load")
		s.log.Warn("load settings failed, using defaults", logger.Error(err))
		return models.DefaultSettings()
	}

	if st.Normalize() {
		s.log.Warn("ticker_order did not match tickers, rebuilt",
			logger.Strings("order", st.TickerOrder),
		)
	}
	return st
}

// Restore loads the document into the registry and starts a feed for every
// saved ticker. It never fails; problems are logged per ticker.
func (s *SettingsSync) Restore(ctx context.Context, starter Starter) *models.Settings {
	st := s.Load(ctx)

	_ = s.reg.Update(func(tx *registry.Tx) error {
		tx.Restore(st.SelectedSound, st.TickerOrder)
		return nil
	})

	for _, t := range st.Tickers {
		if err := starter.Start(ctx, t.Symbol); err != nil && !errors.Is(err, models.ErrAlreadySubscribed) {
			s.log.Error("restore: start feed failed", logger.String("symbol", t.Symbol), logger.Error(err))
		}

		prices := make([]float64, 0, len(t.Alerts))
		for _, a := range t.Alerts {
			prices = append(prices, a.Price)
		}
		s.reg.SetAlerts(t.Symbol, prices)

		if err := s.reg.SetLastPrice(t.Symbol, t.LastPrice); err != nil {
			s.log.Warn("restore: set last price failed", logger.String("symbol", t.Symbol), logger.Error(err))
		}
	}

	s.log.Info("settings restored",
		logger.Int("tickers", len(st.Tickers)),
		logger.String("sound", st.SelectedSound),
	)
	return st
}

// Save writes a snapshot of the registry.
func (s *SettingsSync) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	start := time.Now()
	snap := s.reg.Snapshot()
	if err := s.store.Save(ctx, snap); err != nil {
		s.metrics.RecordError("settings_save")
		if !errors.Is(err, models.ErrSettingsIO) {
			err = fmt.Errorf("%w: %v", models.ErrSettingsIO, err)
		}
		return fmt.Errorf("save settings: %w", err)
	}
	s.metrics.RecordLatency("save_settings", time.Since(start).Seconds())
	s.log.Debug("settings saved", logger.Int("tickers", len(snap.Tickers)))
	return nil
}
