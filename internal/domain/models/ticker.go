package models

import (
	"strings"
	"time"
)

// DefaultSound is the alert sound used when no settings have been saved yet.
const DefaultSound = "beep.mp3"

// Alert is a one-shot watch on a price threshold.
type Alert struct {
	Price float64 `json:"price"`
}

// TickerState is the live state of one watched symbol.
type TickerState struct {
	Symbol    string  `json:"symbol"`
	Alerts    []Alert `json:"alerts"`
	LastPrice float64 `json:"last_price"` // 0 until the first tick or a restore
}

// Clone returns a deep copy safe to hand out of the registry.
func (t *TickerState) Clone() TickerState {
	alerts := make([]Alert, len(t.Alerts))
	copy(alerts, t.Alerts)
	return TickerState{Symbol: t.Symbol, Alerts: alerts, LastPrice: t.LastPrice}
}

// HasAlert reports whether an alert with exactly this price exists.
func (t *TickerState) HasAlert(price float64) bool {
	for _, a := range t.Alerts {
		if a.Price == price {
			return true
		}
	}
	return false
}

// Tick is a single price update decoded from the upstream feed.
type Tick struct {
	Symbol     string
	Price      float64
	ReceivedAt time.Time
}

// NormalizeSymbol trims and upper-cases a symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseSymbol normalizes s and rejects empty symbols.
func ParseSymbol(s string) (string, error) {
	sym := NormalizeSymbol(s)
	if sym == "" {
		return "", ErrInvalidSymbol
	}
	return sym, nil
}

// UniqueAlerts builds an alert set from prices, dropping repeated thresholds
// while keeping first-seen order.
func UniqueAlerts(prices []float64) []Alert {
	out := make([]Alert, 0, len(prices))
	seen := make(map[float64]struct{}, len(prices))
	for _, p := range prices {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, Alert{Price: p})
	}
	return out
}
