package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	httpclient "PriceWatch/pkg/http"
)

func TestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/price" || r.URL.Query().Get("symbol") != "ETHUSDT" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","price":"2500.12000000"}`))
	}))
	defer srv.Close()

	q := NewQuoteClient(srv.URL+"/", httpclient.NewClient(httpclient.WithHTTPClient(srv.Client())))
	quote, err := q.Quote(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Symbol != "ETHUSDT" || quote.Price != 2500.12 {
		t.Fatalf("unexpected quote %+v", quote)
	}
}

func TestQuoteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	q := NewQuoteClient(srv.URL, nil)
	if _, err := q.Quote(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for 400 response")
	}
}
