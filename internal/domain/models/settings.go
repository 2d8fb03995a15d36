package models

// Settings is the persisted document.
type Settings struct {
	Tickers       []TickerState `json:"tickers"`
	SelectedSound string        `json:"selected_sound"`
	TickerOrder   []string      `json:"ticker_order"`
}

// DefaultSettings is used when nothing was saved or the saved copy is unusable.
func DefaultSettings() *Settings {
	return &Settings{
		Tickers:       []TickerState{},
		SelectedSound: DefaultSound,
		TickerOrder:   []string{},
	}
}

// Normalize upper-cases symbols, fills nil slices and rebuilds TickerOrder
// from Tickers when it is not a permutation of the ticker symbols.
// It reports whether the order had to be rebuilt.
func (s *Settings) Normalize() bool {
	if s.Tickers == nil {
		s.Tickers = []TickerState{}
	}
	for i := range s.Tickers {
		s.Tickers[i].Symbol = NormalizeSymbol(s.Tickers[i].Symbol)
		if s.Tickers[i].Alerts == nil {
			s.Tickers[i].Alerts = []Alert{}
		}
	}
	if s.SelectedSound == "" {
		s.SelectedSound = DefaultSound
	}
	for i := range s.TickerOrder {
		s.TickerOrder[i] = NormalizeSymbol(s.TickerOrder[i])
	}

	if isPermutation(s.TickerOrder, s.Tickers) {
		if s.TickerOrder == nil {
			s.TickerOrder = []string{}
		}
		return false
	}
	order := make([]string, 0, len(s.Tickers))
	for _, t := range s.Tickers {
		order = append(order, t.Symbol)
	}
	s.TickerOrder = order
	return true
}

func isPermutation(order []string, tickers []TickerState) bool {
	if len(order) != len(tickers) {
		return false
	}
	want := make(map[string]int, len(tickers))
	for _, t := range tickers {
		want[t.Symbol]++
	}
	for _, sym := range order {
		if want[sym] == 0 {
			return false
		}
		want[sym]--
	}
	return true
}
