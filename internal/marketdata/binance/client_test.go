package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"signal-scanner/internal/marketdata"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Candles(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/v3/klines": `[
			[1709251200000,"100.0","101.5","99.5","101.0","1234.5",1709254799999,"0",10,"0","0","0"],
			[1709254800000,"101.0","102.0","100.0","100.5","987.25",1709258399999,"0",12,"0","0","0"]
		]`,
	})
	c := New(Config{BaseURL: srv.URL, RPS: 100, Burst: 10})

	series, err := c.Candles(context.Background(), "BTCUSDT", "1h", 2)
	if err != nil {
		t.Fatalf("Candles: %v", err)
	}
	if series.Symbol != "BTCUSDT" || series.Interval != "1h" || series.Len() != 2 {
		t.Fatalf("unexpected series header: %+v", series)
	}
	first := series.Candles[0]
	if first.Open != 100 || first.High != 101.5 || first.Low != 99.5 || first.Close != 101 || first.Volume != 1234.5 {
		t.Errorf("first candle = %+v", first)
	}
	if !first.OpenTime.Equal(time.UnixMilli(1709251200000)) {
		t.Errorf("OpenTime = %v", first.OpenTime)
	}
	if series.Candles[1].Volume != 987.25 {
		t.Errorf("second volume = %v", series.Candles[1].Volume)
	}
}

func TestClient_Candles_ParseError(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/v3/klines": `[[1709251200000,"abc","101.5","99.5","101.0","1",1709254799999,"0",10,"0","0","0"]]`,
	})
	c := New(Config{BaseURL: srv.URL, RPS: 100})

	_, err := c.Candles(context.Background(), "BTCUSDT", "1h", 1)
	if !errors.Is(err, marketdata.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestClient_Candles_FetchError(t *testing.T) {
	srv := newTestServer(t, nil)
	c := New(Config{BaseURL: srv.URL, RPS: 100})

	_, err := c.Candles(context.Background(), "NOPEUSDT", "1h", 1)
	if !errors.Is(err, marketdata.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestClient_BookTop(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/v3/depth": `{"lastUpdateId":42,"bids":[["95.00","1.0"],["94.00","2.0"]],"asks":[["100.00","1.5"],["101.00","3.0"]]}`,
	})
	c := New(Config{BaseURL: srv.URL, RPS: 100})

	book, err := c.BookTop(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("BookTop: %v", err)
	}
	if book.Bid != 95 || book.Ask != 100 {
		t.Errorf("book = %+v", book)
	}
	if got := book.SpreadPct(); got != 5 {
		t.Errorf("SpreadPct = %v, want 5", got)
	}
}

func TestClient_BookTop_EmptySide(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/v3/depth": `{"lastUpdateId":42,"bids":[],"asks":[["100.00","1.5"]]}`,
	})
	c := New(Config{BaseURL: srv.URL, RPS: 100})

	book, err := c.BookTop(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("BookTop: %v", err)
	}
	if book.Valid() == nil {
		t.Error("book with no bids should be invalid")
	}
}

func TestClient_Symbols(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/v3/ticker/price": `[{"symbol":"BTCUSDT","price":"60000.0"},{"symbol":"ETHBTC","price":"0.05"}]`,
	})
	c := New(Config{BaseURL: srv.URL, RPS: 100})

	symbols, err := c.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Symbols: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "BTCUSDT" {
		t.Errorf("Symbols = %v", symbols)
	}
	if got := marketdata.FilterQuote(symbols, "USDT"); len(got) != 1 {
		t.Errorf("FilterQuote = %v", got)
	}
}

func TestClient_RateLimiterHonoursContext(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1", RPS: 0.001, Burst: 1})
	c.limiter.Allow() // drain the single token

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.BookTop(ctx, "BTCUSDT")
	if !errors.Is(err, marketdata.ErrFetch) {
		t.Fatalf("expected ErrFetch from limiter, got %v", err)
	}
}
