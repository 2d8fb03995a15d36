package binance

import (
	"context"
	"errors"
	"testing"
	"time"

	"PriceWatch/internal/domain/models"
	"PriceWatch/internal/service/ratelimit"
)

type countingQuotes struct {
	calls int
	price float64
}

func (c *countingQuotes) Quote(_ context.Context, symbol string) (*models.Quote, error) {
	c.calls++
	return &models.Quote{Symbol: symbol, Price: c.price}, nil
}

func TestQuoteGuardCaches(t *testing.T) {
	src := &countingQuotes{price: 10}
	g := NewQuoteGuard(src, time.Minute, nil)

	for i := 0; i < 3; i++ {
		q, err := g.Quote(context.Background(), "BTCUSDT")
		if err != nil {
			t.Fatalf("quote: %v", err)
		}
		if q.Price != 10 {
			t.Fatalf("price = %v", q.Price)
		}
	}
	if src.calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", src.calls)
	}

	if _, err := g.Quote(context.Background(), "ETHUSDT"); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Fatalf("upstream calls = %d, want 2", src.calls)
	}
}

func TestQuoteGuardRateLimits(t *testing.T) {
	src := &countingQuotes{price: 1}
	// no caching, burst of two, effectively no refill during the test
	g := NewQuoteGuard(src, 0, ratelimit.New(2, 0.001))

	for i := 0; i < 2; i++ {
		if _, err := g.Quote(context.Background(), "BTCUSDT"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	_, err := g.Quote(context.Background(), "BTCUSDT")
	if !errors.Is(err, models.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if _, err := g.Quote(context.Background(), "ETHUSDT"); err != nil {
		t.Fatalf("other symbol limited: %v", err)
	}
}
