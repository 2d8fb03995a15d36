package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	"PriceWatch/internal/registry"
	store "PriceWatch/internal/repository"
	"PriceWatch/internal/service/notify"
	"PriceWatch/pkg/logger"
	"PriceWatch/pkg/metrics"
)

// fakeStream forwards whatever the test pushes into feed(symbol).
type fakeStream struct {
	mu      sync.Mutex
	feeds   map[string]chan *models.Tick
	started chan string
}

func newFakeStream() *fakeStream {
	return &fakeStream{feeds: map[string]chan *models.Tick{}, started: make(chan string, 16)}
}

func (f *fakeStream) feed(symbol string) chan *models.Tick {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.feeds[symbol]
	if !ok {
		ch = make(chan *models.Tick, 16)
		f.feeds[symbol] = ch
	}
	return ch
}

func (f *fakeStream) push(symbol string, price float64) {
	f.feed(symbol) <- &models.Tick{Symbol: symbol, Price: price, ReceivedAt: time.Now()}
}

func (f *fakeStream) Stream(ctx context.Context, symbol string, out chan<- *models.Tick) error {
	in := f.feed(symbol)
	f.started <- symbol
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-in:
			select {
			case out <- t:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context) (*models.Settings, error) {
	return nil, errors.New("disk on fire")
}
func (failingStore) Save(context.Context, *models.Settings) error { return errors.New("disk on fire") }
func (failingStore) Close() error                                 { return nil }

type fakeQuotes struct{ price float64 }

func (q fakeQuotes) Quote(_ context.Context, symbol string) (*models.Quote, error) {
	return &models.Quote{Symbol: symbol, Price: q.price}, nil
}

type harness struct {
	reg      *registry.Registry
	events   *notify.Memory
	stream   *fakeStream
	proc     *TickProcessor
	settings *SettingsSync
	subs     *SubscriptionManager
	svc      *TickerService
}

func newHarness(t *testing.T, st drepo.SettingsStore) *harness {
	t.Helper()
	log := logger.NewNop()
	m := metrics.Nop{}

	h := &harness{reg: registry.New(), events: notify.NewMemory(0), stream: newFakeStream()}
	h.proc = NewTickProcessor(h.reg, h.events, m, log)
	h.settings = NewSettingsSync(st, h.reg, m, log)
	h.subs = NewSubscriptionManager(h.reg, h.stream, h.proc, h.settings, m, log, WithBufferSize(8))
	h.svc = NewTickerService(h.reg, h.subs, h.settings, fakeQuotes{price: 42}, log)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.svc.Shutdown(ctx); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})
	return h
}

func fileStore(t *testing.T) (drepo.SettingsStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricewatch", "settings.json")
	return store.NewFileSettingsStore(path), path
}

// waitStarted waits until the feed of every symbol has started, in any order.
func (h *harness) waitStarted(t *testing.T, symbols ...string) {
	t.Helper()
	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}
	for range symbols {
		select {
		case got := <-h.stream.started:
			if !want[got] {
				t.Fatalf("unexpected feed start for %s", got)
			}
			delete(want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("feeds never started: %v", want)
		}
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
