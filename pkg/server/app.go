package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"PriceWatch/internal/domain/repository"
	"PriceWatch/internal/usecase"
	"PriceWatch/pkg/config"
	xhttp "PriceWatch/pkg/http"
	applogger "PriceWatch/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	svc        *usecase.TickerService
	httpServer *xhttp.Server
	notifier   repository.Notifier
	store      repository.SettingsStore
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	svc *usecase.TickerService,
	httpServer *xhttp.Server,
	notifier repository.Notifier,
	store repository.SettingsStore,
) *App {
	return &App{
		cfg:        cfg,
		log:        log.With(applogger.Component("app")),
		svc:        svc,
		httpServer: httpServer,
		notifier:   notifier,
		store:      store,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext restores saved tickers, serves HTTP and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	st := a.svc.Restore(ctx)
	a.log.Info("tickers restored", applogger.Strings("order", st.TickerOrder))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		_ = a.shutdown()
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error

	// Stop feeds first so no events go out to closing sinks
	if err := a.svc.Shutdown(ctx); err != nil {
		a.log.Warn("subscription shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	if a.notifier != nil {
		if err := a.notifier.Close(); err != nil {
			a.log.Warn("notifier close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("settings store close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
