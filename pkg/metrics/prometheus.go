package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticksTotal      *prometheus.CounterVec
	alertsTriggered *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	activeSubs      prometheus.Gauge
	latency         *prometheus.HistogramVec
}

// New creates a recorder registered on reg. Pass prometheus.DefaultRegisterer
// to expose it on /metrics.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		ticksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricewatch_ticks_total",
				Help: "Total number of ticks processed",
			},
			[]string{"symbol"},
		),
		alertsTriggered: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricewatch_alerts_triggered_total",
				Help: "Total number of price alerts that fired",
			},
			[]string{"symbol"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricewatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pricewatch_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		activeSubs: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "pricewatch_active_subscriptions",
				Help: "Number of live feed subscriptions",
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricewatch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordTick(symbol string) {
	r.ticksTotal.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordAlertsTriggered(symbol string, n int) {
	r.alertsTriggered.WithLabelValues(symbol).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) SetActiveSubscriptions(n int) {
	r.activeSubs.Set(float64(n))
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordTick(string)                 {}
func (Nop) RecordAlertsTriggered(string, int) {}
func (Nop) RecordLastPrice(string, float64)   {}
func (Nop) RecordError(string)                {}
func (Nop) RecordLatency(string, float64)     {}
func (Nop) SetActiveSubscriptions(int)        {}
