package model

import "context"

// ── Market Data Port ──
// Decouples the scanner from the concrete data source (Binance REST, the
// recorded SQLite store). Implementations must be safe for concurrent use.

// MarketData serves the instrument universe, candle history and book tops.
type MarketData interface {
	// Symbols lists every tradable symbol the venue reports.
	Symbols(ctx context.Context) ([]string, error)

	// Candles returns up to limit closed-or-forming candles, oldest first.
	Candles(ctx context.Context, symbol, interval string, limit int) (CandleSeries, error)

	// BookTop returns the current best bid and ask.
	BookTop(ctx context.Context, symbol string) (BookTop, error)
}

// CandleRecorder stores candle series and book tops for later replay.
type CandleRecorder interface {
	WriteSeries(ctx context.Context, series CandleSeries) error
	WriteBookTop(ctx context.Context, book BookTop) error
	Close() error
}
