package usecase

import (
	"context"
	"errors"
	"fmt"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	"PriceWatch/internal/registry"
	"PriceWatch/pkg/logger"
)

// TickerService is the entry point for every user-facing ticker operation.
// Mutations that change the saved document are followed by a save; a failed
// save is returned as ErrSettingsIO while the in-memory change stands.
type TickerService struct {
	reg      *registry.Registry
	subs     *SubscriptionManager
	settings *SettingsSync
	quotes   drepo.QuoteSource
	log      *logger.Logger
}

// NewTickerService creates a new TickerService instance.
func NewTickerService(
	reg *registry.Registry,
	subs *SubscriptionManager,
	settings *SettingsSync,
	quotes drepo.QuoteSource,
	log *logger.Logger,
) *TickerService {
	return &TickerService{
		reg:      reg,
		subs:     subs,
		settings: settings,
		quotes:   quotes,
		log:      log.With(logger.Component("ticker_service")),
	}
}

// Restore loads saved settings and resumes every saved ticker.
func (s *TickerService) Restore(ctx context.Context) *models.Settings {
	return s.settings.Restore(ctx, s.subs)
}

// Shutdown stops every feed.
func (s *TickerService) Shutdown(ctx context.Context) error {
	return s.subs.Shutdown(ctx)
}

func (s *TickerService) Start(ctx context.Context, symbol string) error {
	sym, err := models.ParseSymbol(symbol)
	if err != nil {
		return err
	}
	if err := s.subs.Start(ctx, sym); err != nil {
		if errors.Is(err, models.ErrAlreadySubscribed) {
			s.log.Debug("start ignored, already subscribed", logger.String("symbol", sym))
		}
		return err
	}
	return s.persist(ctx, "start", sym)
}

// Stop cancels the feed but keeps the ticker and its alerts.
func (s *TickerService) Stop(_ context.Context, symbol string) error {
	sym, err := models.ParseSymbol(symbol)
	if err != nil {
		return err
	}
	s.subs.Stop(sym)
	return nil
}

func (s *TickerService) Remove(ctx context.Context, symbol string) error {
	sym, err := models.ParseSymbol(symbol)
	if err != nil {
		return err
	}
	return s.subs.Remove(ctx, sym)
}

func (s *TickerService) AddAlert(ctx context.Context, symbol string, price float64) error {
	sym, err := models.ParseSymbol(symbol)
	if err != nil {
		return err
	}
	if err := s.reg.AddAlert(sym, price); err != nil {
		return err
	}
	s.log.Info("alert added", logger.String("symbol", sym), logger.Float64("price", price))
	return s.persist(ctx, "add_alert", sym)
}

func (s *TickerService) RemoveAlert(ctx context.Context, symbol string, price float64) error {
	sym, err := models.ParseSymbol(symbol)
	if err != nil {
		return err
	}
	if err := s.reg.RemoveAlert(sym, price); err != nil {
		return err
	}
	s.log.Info("alert removed", logger.String("symbol", sym), logger.Float64("price", price))
	return s.persist(ctx, "remove_alert", sym)
}

// SetAlerts replaces the alert set; repeated prices collapse to one.
func (s *TickerService) SetAlerts(ctx context.Context, symbol string, prices []float64) error {
	sym, err := models.ParseSymbol(symbol)
	if err != nil {
		return err
	}
	s.reg.SetAlerts(sym, prices)
	return s.persist(ctx, "set_alerts", sym)
}

// Alerts returns the alerts of symbol; empty for unknown symbols.
func (s *TickerService) Alerts(symbol string) []models.Alert {
	return s.reg.Alerts(models.NormalizeSymbol(symbol))
}

// SetLastPrice overrides the reference price used for crossing detection.
// It is not persisted on its own.
func (s *TickerService) SetLastPrice(_ context.Context, symbol string, price float64) error {
	sym, err := models.ParseSymbol(symbol)
	if err != nil {
		return err
	}
	return s.reg.SetLastPrice(sym, price)
}

func (s *TickerService) SetSelectedSound(ctx context.Context, name string) error {
	s.reg.SetSelectedSound(name)
	return s.persist(ctx, "set_sound", "")
}

func (s *TickerService) SelectedSound() string {
	return s.reg.SelectedSound()
}

// UpdateTickerOrder replaces the display order. Symbols are normalized and
// blanks dropped.
func (s *TickerService) UpdateTickerOrder(ctx context.Context, order []string) error {
	norm := make([]string, 0, len(order))
	for _, o := range order {
		if sym := models.NormalizeSymbol(o); sym != "" {
			norm = append(norm, sym)
		}
	}
	s.reg.SetOrder(norm)
	return s.persist(ctx, "set_order", "")
}

func (s *TickerService) LoadSettings(ctx context.Context) *models.Settings {
	return s.settings.Load(ctx)
}

func (s *TickerService) SaveSettings(ctx context.Context) error {
	return s.settings.Save(ctx)
}

// Tickers returns every ticker in display order with its subscription flag.
func (s *TickerService) Tickers() []models.TickerView {
	snap := s.reg.Snapshot()
	active := make(map[string]struct{})
	for _, sym := range s.subs.Active() {
		active[sym] = struct{}{}
	}

	out := make([]models.TickerView, 0, len(snap.Tickers))
	for _, t := range snap.Tickers {
		_, subscribed := active[t.Symbol]
		out = append(out, models.TickerView{
			Symbol:     t.Symbol,
			Alerts:     t.Alerts,
			LastPrice:  t.LastPrice,
			Subscribed: subscribed,
		})
	}
	return out
}

// Quote fetches a spot price from the REST API.
func (s *TickerService) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	sym, err := models.ParseSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if s.quotes == nil {
		return nil, fmt.Errorf("quote %s: no quote source configured", sym)
	}
	return s.quotes.Quote(ctx, sym)
}

func (s *TickerService) persist(ctx context.Context, op, symbol string) error {
	if err := s.settings.Save(ctx); err != nil {
		s.log.Warn("save settings failed",
			logger.String("op", op),
			logger.String("symbol", symbol),
			logger.Error(err),
		)
		return err
	}
	return nil
}
