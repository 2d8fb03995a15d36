package di

import (
	"context"
	"fmt"
	"time"

	"PriceWatch/internal/domain/repository"
	"PriceWatch/internal/handler/api"
	"PriceWatch/internal/registry"
	internalrepo "PriceWatch/internal/repository"
	"PriceWatch/internal/service/binance"
	"PriceWatch/internal/service/notify"
	"PriceWatch/internal/service/ratelimit"
	"PriceWatch/internal/usecase"
	"PriceWatch/pkg/config"
	xhttp "PriceWatch/pkg/http"
	pkgkafka "PriceWatch/pkg/kafka"
	"PriceWatch/pkg/logger"
	"PriceWatch/pkg/metrics"
	"PriceWatch/pkg/redisclient"
	"PriceWatch/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder, or a no-op one when
// metrics are disabled.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideRegistry creates the shared ticker registry.
func ProvideRegistry() *registry.Registry {
	return registry.New()
}

// ProvideSettingsStore picks the file or Redis backend.
func ProvideSettingsStore(cfg *config.Config) (repository.SettingsStore, error) {
	switch cfg.Settings.Backend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := redisclient.New(ctx,
			redisclient.WithAddr(cfg.Redis.Host, cfg.Redis.Port),
			redisclient.WithPassword(cfg.Redis.Password),
			redisclient.WithDB(cfg.Redis.DB),
			redisclient.WithPoolSize(cfg.Redis.PoolSize),
		)
		if err != nil {
			return nil, fmt.Errorf("settings redis: %w", err)
		}
		return internalrepo.NewRedisSettingsStore(client, cfg.Settings.RedisKey), nil
	default:
		return internalrepo.NewFileSettingsStore(cfg.Settings.Path), nil
	}
}

// ProvideKafkaProducer creates the event producer. It returns nil when Kafka
// is disabled.
func ProvideKafkaProducer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.Notify.Kafka.Enabled {
		return nil, nil
	}
	kl := l.With(logger.Component("kafka"))
	opts := []pkgkafka.ProducerOption{
		pkgkafka.WithBrokers(cfg.Notify.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Notify.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Notify.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Notify.Kafka.RequiredAcks),
		pkgkafka.WithAsync(true),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithErrorHandler(func(err error) {
			kl.Warn("event write failed", logger.Error(err))
		}),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, pkgkafka.WithRegisterer(prometheus.DefaultRegisterer))
	}
	producer, err := pkgkafka.NewProducer(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideHub creates the websocket event hub.
func ProvideHub(cfg *config.Config, l *logger.Logger) *notify.Hub {
	return notify.NewHub(notify.WithBuffer(cfg.Notify.HubBuffer), notify.WithLogger(l))
}

// ProvideNotifier fans events out to the hub and, when enabled, Kafka.
func ProvideNotifier(hub *notify.Hub, producer *pkgkafka.Producer) repository.Notifier {
	sinks := []repository.Notifier{hub}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaEventPublisher(producer))
	}
	return notify.NewFanout(sinks...)
}

// ProvideMarketStream creates the Binance websocket feed.
func ProvideMarketStream(cfg *config.Config, l *logger.Logger, m repository.Metrics) repository.MarketStream {
	return binance.NewStream(
		binance.WithBaseURL(cfg.Feed.WebSocketURL),
		binance.WithDialTimeout(cfg.Feed.DialTimeout),
		binance.WithPingInterval(cfg.Feed.PingInterval),
		binance.WithReconnect(cfg.Feed.Reconnect.Enabled, cfg.Feed.Reconnect.BaseDelay, cfg.Feed.Reconnect.MaxDelay),
		binance.WithLogger(l),
		binance.WithMetrics(m),
	)
}

// ProvideQuoteSource creates the Binance REST quote client behind a short
// cache and a per-symbol rate limit.
func ProvideQuoteSource(cfg *config.Config) repository.QuoteSource {
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Feed.DialTimeout))
	src := binance.NewQuoteClient(cfg.Feed.RestURL, client)
	limiter := ratelimit.New(cfg.Feed.Quote.Burst, cfg.Feed.Quote.RatePerSecond)
	return binance.NewQuoteGuard(src, cfg.Feed.Quote.CacheTTL, limiter)
}

// ProvideTickProcessor creates tick processor use case.
func ProvideTickProcessor(reg *registry.Registry, n repository.Notifier, m repository.Metrics, l *logger.Logger) *usecase.TickProcessor {
	return usecase.NewTickProcessor(reg, n, m, l)
}

// ProvideSettingsSync creates settings synchronizer use case.
func ProvideSettingsSync(store repository.SettingsStore, reg *registry.Registry, m repository.Metrics, l *logger.Logger) *usecase.SettingsSync {
	return usecase.NewSettingsSync(store, reg, m, l)
}

// ProvideSubscriptionManager creates subscription manager use case.
func ProvideSubscriptionManager(
	cfg *config.Config,
	reg *registry.Registry,
	stream repository.MarketStream,
	proc *usecase.TickProcessor,
	settings *usecase.SettingsSync,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.SubscriptionManager {
	return usecase.NewSubscriptionManager(reg, stream, proc, settings, m, l,
		usecase.WithBufferSize(cfg.Feed.BufferSize),
	)
}

// ProvideTickerService creates the ticker facade.
func ProvideTickerService(
	reg *registry.Registry,
	subs *usecase.SubscriptionManager,
	settings *usecase.SettingsSync,
	quotes repository.QuoteSource,
	l *logger.Logger,
) *usecase.TickerService {
	return usecase.NewTickerService(reg, subs, settings, quotes, l)
}

// ProvideTickersHandler creates the ticker HTTP handler.
func ProvideTickersHandler(l *logger.Logger, svc *usecase.TickerService) *api.TickersEchoHandler {
	return api.NewTickersEchoHandler(l, svc)
}

// ProvideEventsHandler creates the websocket events handler.
func ProvideEventsHandler(l *logger.Logger, hub *notify.Hub) *api.EventsEchoHandler {
	return api.NewEventsEchoHandler(l, hub)
}

// ProvideHTTPServer creates the echo server with every handler registered.
func ProvideHTTPServer(
	cfg *config.Config,
	l *logger.Logger,
	tickers *api.TickersEchoHandler,
	events *api.EventsEchoHandler,
) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer([]xhttp.Handler{tickers, events},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	svc *usecase.TickerService,
	httpServer *xhttp.Server,
	n repository.Notifier,
	store repository.SettingsStore,
) *server.App {
	return server.New(cfg, l, svc, httpServer, n, store)
}
