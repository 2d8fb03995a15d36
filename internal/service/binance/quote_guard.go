package binance

import (
	"context"
	"fmt"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	"PriceWatch/internal/service/cache"
	"PriceWatch/internal/service/ratelimit"
)

// QuoteGuard caches quotes briefly and rate limits upstream calls per
// symbol so the REST API weight limit is not exhausted by clients.
type QuoteGuard struct {
	src     drepo.QuoteSource
	cache   *cache.TTLCache[models.Quote]
	limiter *ratelimit.Limiter
}

// NewQuoteGuard wraps src. ttl <= 0 disables caching and a nil limiter
// disables rate limiting.
func NewQuoteGuard(src drepo.QuoteSource, ttl time.Duration, limiter *ratelimit.Limiter) *QuoteGuard {
	g := &QuoteGuard{src: src, limiter: limiter}
	if ttl > 0 {
		g.cache = cache.NewTTLCache[models.Quote](ttl)
	}
	return g
}

func (g *QuoteGuard) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if g.cache != nil {
		if q, ok := g.cache.Get(symbol); ok {
			return &q, nil
		}
	}
	if g.limiter != nil && !g.limiter.Allow(symbol) {
		return nil, fmt.Errorf("quote %s: %w", symbol, models.ErrRateLimited)
	}

	q, err := g.src.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if g.cache != nil {
		g.cache.Set(symbol, *q)
	}
	return q, nil
}
