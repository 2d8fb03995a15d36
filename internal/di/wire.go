//go:build wireinject
// +build wireinject

package di

import (
	"PriceWatch/pkg/config"
	"PriceWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideSettingsStore,
		ProvideKafkaProducer,
		ProvideHub,
		ProvideNotifier,
		ProvideMarketStream,
		ProvideQuoteSource,

		// Use cases
		ProvideRegistry,
		ProvideTickProcessor,
		ProvideSettingsSync,
		ProvideSubscriptionManager,
		ProvideTickerService,

		// HTTP
		ProvideTickersHandler,
		ProvideEventsHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
