// Package registry holds the process-wide ticker state shared by the feed
// side (tick processing) and the user side (alert edits, settings).
//
// One mutex guards everything: the ticker map, the subscription handles,
// the display order and the selected sound. Ticker lists are human sized and
// contention is low, so a single critical section per operation is enough.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"PriceWatch/internal/domain/models"
)

// Registry is the shared ticker store. Construct it once and pass it to
// every component that needs it.
type Registry struct {
	mu            sync.Mutex
	tickers       map[string]*models.TickerState
	subs          map[string]*Subscription
	order         []string
	selectedSound string
}

// New creates an empty registry with the default sound selected.
func New() *Registry {
	return &Registry{
		tickers:       make(map[string]*models.TickerState),
		subs:          make(map[string]*Subscription),
		order:         []string{},
		selectedSound: models.DefaultSound,
	}
}

// Update runs fn inside the critical section. Everything fn does through tx
// is atomic with respect to every other registry operation.
func (r *Registry) Update(fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&Tx{r: r})
}

// View is Update for read-only callers. Readers take the same lock.
func (r *Registry) View(fn func(tx *Tx) error) error {
	return r.Update(fn)
}

// AddAlert adds a threshold to symbol, creating the ticker if needed.
func (r *Registry) AddAlert(symbol string, price float64) error {
	return r.Update(func(tx *Tx) error {
		ts := tx.Ensure(symbol, 0)
		if ts.HasAlert(price) {
			return fmt.Errorf("%s %v: %w", symbol, price, models.ErrDuplicateAlert)
		}
		ts.Alerts = append(ts.Alerts, models.Alert{Price: price})
		return nil
	})
}

// RemoveAlert drops the threshold from symbol. A missing threshold is not an
// error; a missing ticker is.
func (r *Registry) RemoveAlert(symbol string, price float64) error {
	return r.Update(func(tx *Tx) error {
		ts, ok := tx.Ticker(symbol)
		if !ok {
			return fmt.Errorf("%s: %w", symbol, models.ErrTickerNotFound)
		}
		kept := ts.Alerts[:0]
		for _, a := range ts.Alerts {
			if a.Price != price {
				kept = append(kept, a)
			}
		}
		ts.Alerts = kept
		return nil
	})
}

// SetAlerts replaces the alert set of symbol wholesale, creating the ticker
// if needed. Repeated thresholds collapse to one.
func (r *Registry) SetAlerts(symbol string, prices []float64) {
	_ = r.Update(func(tx *Tx) error {
		tx.Ensure(symbol, 0).Alerts = models.UniqueAlerts(prices)
		return nil
	})
}

// Alerts returns a copy of the alerts of symbol; empty for unknown symbols.
func (r *Registry) Alerts(symbol string) []models.Alert {
	out := []models.Alert{}
	_ = r.View(func(tx *Tx) error {
		if ts, ok := tx.Ticker(symbol); ok {
			out = append(out, ts.Alerts...)
		}
		return nil
	})
	return out
}

// SetLastPrice overrides the last seen price of an existing ticker.
func (r *Registry) SetLastPrice(symbol string, price float64) error {
	return r.Update(func(tx *Tx) error {
		ts, ok := tx.Ticker(symbol)
		if !ok {
			return fmt.Errorf("%s: %w", symbol, models.ErrTickerNotFound)
		}
		ts.LastPrice = price
		return nil
	})
}

// Ticker returns a copy of the state of symbol.
func (r *Registry) Ticker(symbol string) (models.TickerState, bool) {
	var (
		out models.TickerState
		ok  bool
	)
	_ = r.View(func(tx *Tx) error {
		var ts *models.TickerState
		if ts, ok = tx.Ticker(symbol); ok {
			out = ts.Clone()
		}
		return nil
	})
	return out, ok
}

func (r *Registry) SetSelectedSound(name string) {
	_ = r.Update(func(tx *Tx) error {
		r.selectedSound = name
		return nil
	})
}

func (r *Registry) SelectedSound() string {
	var s string
	_ = r.View(func(tx *Tx) error {
		s = r.selectedSound
		return nil
	})
	return s
}

// SetOrder replaces the display order.
func (r *Registry) SetOrder(order []string) {
	_ = r.Update(func(tx *Tx) error {
		r.order = append([]string{}, order...)
		return nil
	})
}

func (r *Registry) Order() []string {
	var out []string
	_ = r.View(func(tx *Tx) error {
		out = append([]string{}, r.order...)
		return nil
	})
	return out
}

// Snapshot copies the registry into a settings document. Tickers follow the
// display order; tickers missing from it come after, sorted by symbol.
func (r *Registry) Snapshot() *models.Settings {
	s := &models.Settings{}
	_ = r.View(func(tx *Tx) error {
		s.SelectedSound = r.selectedSound
		s.TickerOrder = append([]string{}, r.order...)
		s.Tickers = make([]models.TickerState, 0, len(r.tickers))
		for _, sym := range tx.Symbols() {
			s.Tickers = append(s.Tickers, r.tickers[sym].Clone())
		}
		return nil
	})
	return s
}

// Subscribed reports whether symbol has a live subscription handle.
func (r *Registry) Subscribed(symbol string) bool {
	var ok bool
	_ = r.View(func(tx *Tx) error {
		_, ok = tx.Subscription(symbol)
		return nil
	})
	return ok
}

// Subscriptions returns the subscribed symbols, sorted.
func (r *Registry) Subscriptions() []string {
	var out []string
	_ = r.View(func(tx *Tx) error {
		out = tx.SubscribedSymbols()
		return nil
	})
	return out
}

// Tx is the view of the registry handed to functions running inside the
// critical section. It must not be retained after the function returns.
type Tx struct {
	r *Registry
}

// Ticker returns the live state of symbol. The pointer is only valid inside
// the current critical section.
func (tx *Tx) Ticker(symbol string) (*models.TickerState, bool) {
	ts, ok := tx.r.tickers[symbol]
	return ts, ok
}

// Ensure returns the state of symbol, creating it with lastPrice when absent.
// New tickers are appended to the display order.
func (tx *Tx) Ensure(symbol string, lastPrice float64) *models.TickerState {
	if ts, ok := tx.r.tickers[symbol]; ok {
		return ts
	}
	ts := &models.TickerState{Symbol: symbol, Alerts: []models.Alert{}, LastPrice: lastPrice}
	tx.r.tickers[symbol] = ts
	if !contains(tx.r.order, symbol) {
		tx.r.order = append(tx.r.order, symbol)
	}
	return ts
}

// Delete removes the ticker and drops it from the display order.
func (tx *Tx) Delete(symbol string) bool {
	_, ok := tx.r.tickers[symbol]
	delete(tx.r.tickers, symbol)
	tx.r.order = without(tx.r.order, symbol)
	return ok
}

// Symbols lists tickers in display order, then any others sorted.
func (tx *Tx) Symbols() []string {
	out := make([]string, 0, len(tx.r.tickers))
	seen := make(map[string]struct{}, len(tx.r.tickers))
	for _, sym := range tx.r.order {
		if _, ok := tx.r.tickers[sym]; !ok {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	var rest []string
	for sym := range tx.r.tickers {
		if _, ok := seen[sym]; !ok {
			rest = append(rest, sym)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Subscription returns the live handle for symbol.
func (tx *Tx) Subscription(symbol string) (*Subscription, bool) {
	s, ok := tx.r.subs[symbol]
	return s, ok
}

// Attach records sub as the live handle for its symbol.
func (tx *Tx) Attach(sub *Subscription) {
	tx.r.subs[sub.Symbol] = sub
}

// Detach removes the live handle of symbol and cancels it. Cancelling here,
// inside the critical section, means no tick from that subscription can be
// applied once Detach has returned.
func (tx *Tx) Detach(symbol string) (*Subscription, bool) {
	sub, ok := tx.r.subs[symbol]
	if !ok {
		return nil, false
	}
	delete(tx.r.subs, symbol)
	sub.cancel()
	return sub, true
}

// Release drops the handle of sub's symbol only if it is still sub.
func (tx *Tx) Release(sub *Subscription) {
	if cur, ok := tx.r.subs[sub.Symbol]; ok && cur == sub {
		delete(tx.r.subs, sub.Symbol)
	}
}

// Current reports whether sub is still the live, uncancelled handle.
func (tx *Tx) Current(sub *Subscription) bool {
	cur, ok := tx.r.subs[sub.Symbol]
	return ok && cur == sub && sub.ctx.Err() == nil
}

// SubscribedSymbols lists symbols with a live handle, sorted.
func (tx *Tx) SubscribedSymbols() []string {
	out := make([]string, 0, len(tx.r.subs))
	for sym := range tx.r.subs {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// SubscriptionCount is the number of live handles.
func (tx *Tx) SubscriptionCount() int { return len(tx.r.subs) }

// Restore replaces sound and order. Tickers are restored one by one by the
// caller so subscriptions can be started in between.
func (tx *Tx) Restore(sound string, order []string) {
	tx.r.selectedSound = sound
	tx.r.order = append([]string{}, order...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func without(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
