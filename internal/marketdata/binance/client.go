// Package binance serves candles, book tops and the symbol universe from the
// Binance spot REST API.
package binance

import (
	"context"
	"fmt"
	"strings"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"signal-scanner/internal/marketdata"
	"signal-scanner/internal/model"
)

// Config holds connection settings for the Binance source.
type Config struct {
	APIKey     string
	SecretKey  string
	BaseURL    string  // overrides the REST endpoint (tests, testnet)
	RPS        float64 // shared request budget across all workers
	Burst      int
	DepthLimit int // order book levels requested for BookTop
}

// Client implements model.MarketData on top of go-binance. All requests go
// through one token-bucket limiter, so it is safe to share across workers.
type Client struct {
	api        *gobinance.Client
	limiter    *rate.Limiter
	depthLimit int
}

var _ model.MarketData = (*Client)(nil)

// New creates a Binance client. Public market endpoints need no credentials.
func New(cfg Config) *Client {
	api := gobinance.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.BaseURL != "" {
		api.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	depth := cfg.DepthLimit
	if depth <= 0 {
		depth = 5
	}
	return &Client{
		api:        api,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		depthLimit: depth,
	}
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", marketdata.ErrFetch, err)
	}
	return nil
}

// Symbols lists every symbol with a ticker price.
func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	prices, err := c.api.NewListPricesService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list prices: %v", marketdata.ErrFetch, err)
	}
	symbols := make([]string, 0, len(prices))
	for _, p := range prices {
		symbols = append(symbols, p.Symbol)
	}
	return symbols, nil
}

// Candles fetches up to limit klines, oldest first.
func (c *Client) Candles(ctx context.Context, symbol, interval string, limit int) (model.CandleSeries, error) {
	series := model.CandleSeries{Symbol: symbol, Interval: interval}
	if err := c.wait(ctx); err != nil {
		return series, err
	}
	klines, err := c.api.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return series, fmt.Errorf("%w: klines %s %s: %v", marketdata.ErrFetch, symbol, interval, err)
	}

	series.Candles = make([]model.Candle, 0, len(klines))
	for i, k := range klines {
		candle, err := parseKline(k)
		if err != nil {
			return series, fmt.Errorf("%w: kline %s[%d]: %v", marketdata.ErrParse, symbol, i, err)
		}
		series.Candles = append(series.Candles, candle)
	}
	if err := series.Validate(); err != nil {
		return series, fmt.Errorf("%w: %v", marketdata.ErrParse, err)
	}
	return series, nil
}

// BookTop fetches the order book and returns its best levels.
func (c *Client) BookTop(ctx context.Context, symbol string) (model.BookTop, error) {
	book := model.BookTop{Symbol: symbol}
	if err := c.wait(ctx); err != nil {
		return book, err
	}
	depth, err := c.api.NewDepthService().Symbol(symbol).Limit(c.depthLimit).Do(ctx)
	if err != nil {
		return book, fmt.Errorf("%w: depth %s: %v", marketdata.ErrFetch, symbol, err)
	}
	book.TS = time.Now().UTC()

	if len(depth.Bids) > 0 {
		if book.Bid, err = parseFloat(depth.Bids[0].Price); err != nil {
			return book, fmt.Errorf("%w: bid %s: %v", marketdata.ErrParse, symbol, err)
		}
	}
	if len(depth.Asks) > 0 {
		if book.Ask, err = parseFloat(depth.Asks[0].Price); err != nil {
			return book, fmt.Errorf("%w: ask %s: %v", marketdata.ErrParse, symbol, err)
		}
	}
	return book, nil
}

func parseKline(k *gobinance.Kline) (model.Candle, error) {
	var (
		c   model.Candle
		err error
	)
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"open", k.Open, &c.Open},
		{"high", k.High, &c.High},
		{"low", k.Low, &c.Low},
		{"close", k.Close, &c.Close},
		{"volume", k.Volume, &c.Volume},
	}
	for _, f := range fields {
		if *f.dst, err = parseFloat(f.raw); err != nil {
			return c, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	c.OpenTime = time.UnixMilli(k.OpenTime).UTC()
	return c, nil
}

// parseFloat decodes an exchange decimal string ("0.00012300").
func parseFloat(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
