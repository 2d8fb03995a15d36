package models

import "time"

const (
	EventPriceUpdate    = "price-update"
	EventAlertTriggered = "alert-triggered"
)

// Event is an outbound notification. Name already carries the symbol suffix,
// e.g. "price-update-BTCUSDT".
type Event struct {
	Name      string      `json:"event"`
	Symbol    string      `json:"symbol"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"ts"`
}

// PriceUpdate builds the price-update-<symbol> event carrying the new price.
func PriceUpdate(symbol string, price float64) Event {
	return Event{
		Name:      EventPriceUpdate + "-" + symbol,
		Symbol:    symbol,
		Payload:   price,
		Timestamp: time.Now(),
	}
}

// AlertTriggered builds the alert-triggered-<symbol> event carrying the
// thresholds that fired on one tick.
func AlertTriggered(symbol string, thresholds []float64) Event {
	return Event{
		Name:      EventAlertTriggered + "-" + symbol,
		Symbol:    symbol,
		Payload:   thresholds,
		Timestamp: time.Now(),
	}
}
