package registry

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"PriceWatch/internal/domain/models"
)

func prices(alerts []models.Alert) []float64 {
	out := make([]float64, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Price)
	}
	sort.Float64s(out)
	return out
}

func TestAddAlertDistinct(t *testing.T) {
	r := New()
	for _, p := range []float64{300, 100, 200} {
		if err := r.AddAlert("BTCUSDT", p); err != nil {
			t.Fatalf("add %v: %v", p, err)
		}
	}
	got := prices(r.Alerts("BTCUSDT"))
	want := []float64{100, 200, 300}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestAddAlertDuplicate(t *testing.T) {
	r := New()
	if err := r.AddAlert("ETHUSDT", 10); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := r.AddAlert("ETHUSDT", 10)
	if !errors.Is(err, models.ErrDuplicateAlert) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if n := len(r.Alerts("ETHUSDT")); n != 1 {
		t.Fatalf("expected 1 alert, got %d", n)
	}
}

func TestAlertsUnknownSymbolEmpty(t *testing.T) {
	r := New()
	got := r.Alerts("NOPE")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestRemoveAlert(t *testing.T) {
	r := New()
	if err := r.RemoveAlert("BTCUSDT", 1); !errors.Is(err, models.ErrTickerNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_ = r.AddAlert("BTCUSDT", 1)
	_ = r.AddAlert("BTCUSDT", 2)
	if err := r.RemoveAlert("BTCUSDT", 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.RemoveAlert("BTCUSDT", 42); err != nil {
		t.Fatalf("remove missing threshold: %v", err)
	}
	got := prices(r.Alerts("BTCUSDT"))
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("unexpected alerts %v", got)
	}
}

func TestSetAlertsReplaces(t *testing.T) {
	r := New()
	_ = r.AddAlert("SOLUSDT", 5)
	r.SetAlerts("SOLUSDT", []float64{7, 8, 7})
	got := prices(r.Alerts("SOLUSDT"))
	if len(got) != 2 || got[0] != 7 || got[1] != 8 {
		t.Fatalf("unexpected alerts %v", got)
	}
}

func TestSetLastPrice(t *testing.T) {
	r := New()
	if err := r.SetLastPrice("BTCUSDT", 1); !errors.Is(err, models.ErrTickerNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	r.SetAlerts("BTCUSDT", nil)
	if err := r.SetLastPrice("BTCUSDT", 123.5); err != nil {
		t.Fatalf("set: %v", err)
	}
	ts, ok := r.Ticker("BTCUSDT")
	if !ok || ts.LastPrice != 123.5 {
		t.Fatalf("unexpected state %+v", ts)
	}
}

func TestOrderFollowsTickers(t *testing.T) {
	r := New()
	_ = r.AddAlert("B", 1)
	_ = r.AddAlert("A", 1)
	_ = r.AddAlert("B", 2)
	order := r.Order()
	if len(order) != 2 || order[0] != "B" || order[1] != "A" {
		t.Fatalf("unexpected order %v", order)
	}
	_ = r.Update(func(tx *Tx) error {
		tx.Delete("B")
		return nil
	})
	order = r.Order()
	if len(order) != 1 || order[0] != "A" {
		t.Fatalf("unexpected order after delete %v", order)
	}
}

func TestSnapshotOrder(t *testing.T) {
	r := New()
	_ = r.AddAlert("C", 1)
	_ = r.AddAlert("A", 1)
	_ = r.AddAlert("B", 1)
	r.SetOrder([]string{"B", "C"})
	r.SetSelectedSound("beep2_loud.mp3")

	s := r.Snapshot()
	var syms []string
	for _, tk := range s.Tickers {
		syms = append(syms, tk.Symbol)
	}
	if len(syms) != 3 || syms[0] != "B" || syms[1] != "C" || syms[2] != "A" {
		t.Fatalf("unexpected snapshot order %v", syms)
	}
	if s.SelectedSound != "beep2_loud.mp3" {
		t.Fatalf("unexpected sound %q", s.SelectedSound)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	r := New()
	_ = r.AddAlert("A", 1)
	s := r.Snapshot()
	s.Tickers[0].Alerts[0].Price = 99
	if got := r.Alerts("A"); got[0].Price != 1 {
		t.Fatalf("snapshot aliased registry state")
	}
}

func TestDetachCancels(t *testing.T) {
	r := New()
	sub := NewSubscription(context.Background(), "BTCUSDT")
	_ = r.Update(func(tx *Tx) error {
		tx.Attach(sub)
		if !tx.Current(sub) {
			t.Fatalf("expected current")
		}
		return nil
	})
	if !r.Subscribed("BTCUSDT") {
		t.Fatalf("expected subscribed")
	}
	_ = r.Update(func(tx *Tx) error {
		if _, ok := tx.Detach("BTCUSDT"); !ok {
			t.Fatalf("expected detach")
		}
		if tx.Current(sub) {
			t.Fatalf("expected stale after detach")
		}
		return nil
	})
	if sub.Context().Err() == nil {
		t.Fatalf("expected cancelled context")
	}
	if _, ok := r.Ticker("BTCUSDT"); ok {
		t.Fatalf("detach must not create ticker state")
	}
}

func TestReleaseKeepsNewerHandle(t *testing.T) {
	r := New()
	old := NewSubscription(context.Background(), "X")
	cur := NewSubscription(context.Background(), "X")
	_ = r.Update(func(tx *Tx) error {
		tx.Attach(cur)
		tx.Release(old)
		return nil
	})
	if !r.Subscribed("X") {
		t.Fatalf("release of stale handle removed current one")
	}
}

func TestConcurrentAlertEdits(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(p float64) {
			defer wg.Done()
			_ = r.AddAlert("BTCUSDT", p)
			_ = r.Alerts("BTCUSDT")
		}(float64(i))
	}
	wg.Wait()
	if n := len(r.Alerts("BTCUSDT")); n != 50 {
		t.Fatalf("expected 50 alerts, got %d", n)
	}
}
