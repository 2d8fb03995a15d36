package models

import "testing"

func TestNormalizeRebuildsOrderOnLengthMismatch(t *testing.T) {
	s := &Settings{
		Tickers: []TickerState{
			{Symbol: "btcusdt", LastPrice: 1},
			{Symbol: "ETHUSDT"},
		},
		TickerOrder: []string{"ETHUSDT"},
	}
	if !s.Normalize() {
		t.Fatalf("expected rebuild")
	}
	if len(s.TickerOrder) != 2 || s.TickerOrder[0] != "BTCUSDT" || s.TickerOrder[1] != "ETHUSDT" {
		t.Fatalf("unexpected order %v", s.TickerOrder)
	}
	if s.SelectedSound != DefaultSound {
		t.Fatalf("expected default sound, got %q", s.SelectedSound)
	}
}

func TestNormalizeRebuildsOrderOnUnknownSymbol(t *testing.T) {
	s := &Settings{
		Tickers:     []TickerState{{Symbol: "A"}, {Symbol: "B"}},
		TickerOrder: []string{"A", "Z"},
	}
	if !s.Normalize() {
		t.Fatalf("expected rebuild")
	}
	if s.TickerOrder[0] != "A" || s.TickerOrder[1] != "B" {
		t.Fatalf("unexpected order %v", s.TickerOrder)
	}
}

func TestNormalizeKeepsValidPermutation(t *testing.T) {
	s := &Settings{
		Tickers:       []TickerState{{Symbol: "A"}, {Symbol: "B"}},
		TickerOrder:   []string{"B", "A"},
		SelectedSound: "beep4_voice.mp3",
	}
	if s.Normalize() {
		t.Fatalf("did not expect rebuild")
	}
	if s.TickerOrder[0] != "B" {
		t.Fatalf("order changed: %v", s.TickerOrder)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	s := &Settings{}
	s.Normalize()
	if s.Tickers == nil || s.TickerOrder == nil {
		t.Fatalf("expected non-nil slices")
	}
}

func TestEventNames(t *testing.T) {
	if ev := PriceUpdate("BTCUSDT", 1); ev.Name != "price-update-BTCUSDT" {
		t.Fatalf("unexpected name %q", ev.Name)
	}
	ev := AlertTriggered("ETHUSDT", []float64{1, 2})
	if ev.Name != "alert-triggered-ETHUSDT" {
		t.Fatalf("unexpected name %q", ev.Name)
	}
	if p, ok := ev.Payload.([]float64); !ok || len(p) != 2 {
		t.Fatalf("unexpected payload %#v", ev.Payload)
	}
}

func TestParseSymbol(t *testing.T) {
	if _, err := ParseSymbol("  "); err != ErrInvalidSymbol {
		t.Fatalf("expected invalid symbol, got %v", err)
	}
	if s, _ := ParseSymbol(" btcusdt "); s != "BTCUSDT" {
		t.Fatalf("unexpected symbol %q", s)
	}
}
