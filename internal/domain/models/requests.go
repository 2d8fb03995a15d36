package models

// Requests for the ticker HTTP endpoints. Defined in domain for consistency and reuse.

type StartTickerRequest struct {
	Symbol string `json:"symbol" validate:"required,max=32"`
}

type SymbolRequest struct {
	Symbol string `param:"symbol" validate:"required,max=32"`
}

type AlertRequest struct {
	Symbol string  `param:"symbol" validate:"required,max=32"`
	Price  float64 `json:"price" param:"price" validate:"gt=0"`
}

type SetAlertsRequest struct {
	Symbol string    `param:"symbol" validate:"required,max=32"`
	Alerts []float64 `json:"alerts" validate:"dive,gt=0"`
}

type LastPriceRequest struct {
	Symbol string  `param:"symbol" validate:"required,max=32"`
	Price  float64 `json:"price" validate:"gte=0"`
}

type SoundRequest struct {
	Sound string `json:"sound" default:"beep.mp3" validate:"required,max=128"`
}

type OrderRequest struct {
	Order []string `json:"order" validate:"dive,required,max=32"`
}

type EventsRequest struct {
	Symbols string `query:"symbols"`
}

// TickerView is a ticker snapshot as returned by the API.
type TickerView struct {
	Symbol     string  `json:"symbol"`
	Alerts     []Alert `json:"alerts"`
	LastPrice  float64 `json:"last_price"`
	Subscribed bool    `json:"subscribed"`
}

// Quote is a spot price fetched from the upstream REST API.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}
