package binance

import (
	"context"
	"fmt"
	"strings"

	"PriceWatch/internal/domain/models"
	httpclient "PriceWatch/pkg/http"

	"github.com/shopspring/decimal"
)

// QuoteClient fetches spot prices from the Binance REST API.
type QuoteClient struct {
	baseURL string
	client  *httpclient.Client
}

// NewQuoteClient creates a QuoteSource backed by /api/v3/ticker/price.
func NewQuoteClient(baseURL string, client *httpclient.Client) *QuoteClient {
	if client == nil {
		client = httpclient.NewClient()
	}
	return &QuoteClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type priceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Quote returns the latest traded price for symbol.
func (q *QuoteClient) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var resp priceResponse
	err := q.client.GetJSON(ctx, q.baseURL+"/api/v3/ticker/price",
		map[string][]string{"symbol": {symbol}}, &resp)
	if err != nil {
		return nil, fmt.Errorf("binance quote %s: %w", symbol, err)
	}

	price, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return nil, fmt.Errorf("binance quote %s: parse price %q: %w", symbol, resp.Price, err)
	}
	return &models.Quote{Symbol: symbol, Price: price.InexactFloat64()}, nil
}
