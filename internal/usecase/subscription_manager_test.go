package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"PriceWatch/internal/domain/models"
	"PriceWatch/internal/registry"
	"PriceWatch/pkg/logger"
	"PriceWatch/pkg/metrics"
)

func TestStartStreamsTicks(t *testing.T) {
	st, _ := fileStore(t)
	h := newHarness(t, st)
	ctx := context.Background()

	if err := h.subs.Start(ctx, "BTCUSDT"); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.waitStarted(t, "BTCUSDT")

	if ts, ok := h.reg.Ticker("BTCUSDT"); !ok || ts.LastPrice != 0 {
		t.Fatalf("start should create the ticker with an unknown price, got %+v", ts)
	}

	h.stream.push("BTCUSDT", 101.5)
	eventually(t, "price update", func() bool { return len(h.events.Named("price-update-BTCUSDT")) == 1 })

	if got := h.subs.Active(); len(got) != 1 || got[0] != "BTCUSDT" {
		t.Fatalf("unexpected active list %v", got)
	}
}

func TestStartTwiceIsAlreadySubscribed(t *testing.T) {
	st, _ := fileStore(t)
	h := newHarness(t, st)
	ctx := context.Background()

	if err := h.subs.Start(ctx, "BTCUSDT"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.subs.Start(ctx, "BTCUSDT"); !errors.Is(err, models.ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
}

func TestStopKeepsTickerAndAllowsRestart(t *testing.T) {
	st, _ := fileStore(t)
	h := newHarness(t, st)
	ctx := context.Background()

	_ = h.subs.Start(ctx, "BTCUSDT")
	h.waitStarted(t, "BTCUSDT")
	_ = h.svc.AddAlert(ctx, "BTCUSDT", 100)

	var sub *registry.Subscription
	_ = h.reg.View(func(tx *registry.Tx) error {
		sub, _ = tx.Subscription("BTCUSDT")
		return nil
	})
	if sub == nil {
		t.Fatal("no subscription handle after start")
	}

	h.subs.Stop("BTCUSDT")
	h.subs.Stop("UNKNOWN")

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("feed goroutines did not exit after stop")
	}

	if len(h.subs.Active()) != 0 {
		t.Fatalf("expected no active subscriptions, got %v", h.subs.Active())
	}
	if alerts := h.reg.Alerts("BTCUSDT"); len(alerts) != 1 {
		t.Fatalf("stop must keep alerts, have %v", alerts)
	}

	before := len(h.events.Events())
	h.stream.push("BTCUSDT", 150)
	time.Sleep(50 * time.Millisecond)
	if after := len(h.events.Events()); after != before {
		t.Fatalf("events after stop: %d -> %d", before, after)
	}

	if err := h.subs.Start(ctx, "BTCUSDT"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	h.waitStarted(t, "BTCUSDT")
}

func TestRemoveStopsEventsAndPersists(t *testing.T) {
	st, _ := fileStore(t)
	h := newHarness(t, st)
	ctx := context.Background()

	_ = h.svc.Start(ctx, "BTCUSDT")
	h.waitStarted(t, "BTCUSDT")
	_ = h.svc.Start(ctx, "ETHUSDT")
	h.waitStarted(t, "ETHUSDT")
	_ = h.svc.AddAlert(ctx, "BTCUSDT", 100)

	if err := h.svc.Remove(ctx, "btcusdt"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	before := len(h.events.Named("price-update-BTCUSDT"))
	h.stream.push("BTCUSDT", 200)
	time.Sleep(50 * time.Millisecond)
	if after := len(h.events.Named("price-update-BTCUSDT")); after != before {
		t.Fatalf("events emitted after remove: %d -> %d", before, after)
	}
	if _, ok := h.reg.Ticker("BTCUSDT"); ok {
		t.Fatal("removed ticker resurrected")
	}

	saved, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(saved.Tickers) != 1 || saved.Tickers[0].Symbol != "ETHUSDT" {
		t.Fatalf("unexpected saved tickers %+v", saved.Tickers)
	}
	if len(saved.TickerOrder) != 1 || saved.TickerOrder[0] != "ETHUSDT" {
		t.Fatalf("unexpected saved order %v", saved.TickerOrder)
	}
}

func TestRemoveUnknownSymbol(t *testing.T) {
	st, _ := fileStore(t)
	h := newHarness(t, st)
	if err := h.svc.Remove(context.Background(), "NOPE"); err != nil {
		t.Fatalf("remove of unknown symbol should succeed, got %v", err)
	}
}

func TestShutdownJoinsAndRejectsStart(t *testing.T) {
	st, _ := fileStore(t)
	h := newHarness(t, st)
	ctx := context.Background()

	_ = h.subs.Start(ctx, "BTCUSDT")
	_ = h.subs.Start(ctx, "ETHUSDT")
	h.waitStarted(t, "BTCUSDT", "ETHUSDT")

	sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.subs.Shutdown(sctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if len(h.subs.Active()) != 0 {
		t.Fatalf("subscriptions left after shutdown: %v", h.subs.Active())
	}
	if err := h.subs.Start(ctx, "SOLUSDT"); err == nil {
		t.Fatal("start after shutdown should fail")
	}
}

// refusingStream fails every connect the way the feed does with reconnect off.
type refusingStream struct{ log *logger.Logger }

func (r refusingStream) Stream(_ context.Context, symbol string, _ chan<- *models.Tick) error {
	r.log.Error("feed connect failed", logger.String("symbol", symbol))
	return fmt.Errorf("%w: %s: connection refused", models.ErrFeedConnect, symbol)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConnectFailureIsLoggedOnce(t *testing.T) {
	out := &syncBuffer{}
	log, err := logger.New(&logger.Config{Level: "debug", Format: "json", Writer: out})
	if err != nil {
		t.Fatal(err)
	}
	st, _ := fileStore(t)
	reg := registry.New()
	m := metrics.Nop{}
	proc := NewTickProcessor(reg, nil, m, log)
	subs := NewSubscriptionManager(reg, refusingStream{log: log}, proc, NewSettingsSync(st, reg, m, log), m, log)
	t.Cleanup(func() { _ = subs.Shutdown(context.Background()) })

	if err := subs.Start(context.Background(), "BTCUSDT"); err != nil {
		t.Fatalf("start: %v", err)
	}
	eventually(t, "subscription to end", func() bool { return len(subs.Active()) == 0 })

	logs := out.String()
	if n := strings.Count(logs, "feed connect failed"); n != 1 {
		t.Fatalf("connect failure logged %d times:\n%s", n, logs)
	}
	if strings.Contains(logs, "feed ended") {
		t.Fatalf("connect failure reported twice:\n%s", logs)
	}
	if _, ok := reg.Ticker("BTCUSDT"); !ok {
		t.Fatal("ticker should survive a failed connect")
	}
}
