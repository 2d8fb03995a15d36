package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordTick("BTCUSDT")
	r.RecordTick("BTCUSDT")
	r.RecordAlertsTriggered("BTCUSDT", 3)
	r.RecordLastPrice("BTCUSDT", 101.5)
	r.SetActiveSubscriptions(4)
	r.RecordError("malformed_frame")

	if got := testutil.ToFloat64(r.ticksTotal.WithLabelValues("BTCUSDT")); got != 2 {
		t.Fatalf("ticks = %v", got)
	}
	if got := testutil.ToFloat64(r.alertsTriggered.WithLabelValues("BTCUSDT")); got != 3 {
		t.Fatalf("alerts = %v", got)
	}
	if got := testutil.ToFloat64(r.lastPrice.WithLabelValues("BTCUSDT")); got != 101.5 {
		t.Fatalf("last price = %v", got)
	}
	if got := testutil.ToFloat64(r.activeSubs); got != 4 {
		t.Fatalf("active subs = %v", got)
	}
	if got := testutil.ToFloat64(r.errorsTotal.WithLabelValues("malformed_frame")); got != 1 {
		t.Fatalf("errors = %v", got)
	}
}

func TestRecordersOnSeparateRegistries(t *testing.T) {
	// registering twice on fresh registries must not panic
	_ = New(prometheus.NewRegistry())
	_ = New(prometheus.NewRegistry())
}
