// Package sqlite is the recorded-data store: Writer captures candles and
// book tops from a live source and Reader serves them back as a
// model.MarketData so the scanner can run offline.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"signal-scanner/internal/marketdata"
	"signal-scanner/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Reader provides read-only access to a recorded database.
type Reader struct {
	db *sql.DB
}

var _ model.MarketData = (*Reader)(nil)

// NewReader opens a SQLite connection for reading.
func NewReader(dbPath string) (*Reader, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite open reader: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite-reader] opened %s", dbPath)
	return &Reader{db: db}, nil
}

// Symbols lists every symbol with recorded candles, sorted.
func (r *Reader) Symbols(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM candles ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite query symbols: %v", marketdata.ErrFetch, err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("%w: sqlite scan symbol: %v", marketdata.ErrParse, err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// Candles returns the most recent limit candles for symbol and interval,
// oldest first.
func (r *Reader) Candles(ctx context.Context, symbol, interval string, limit int) (model.CandleSeries, error) {
	series := model.CandleSeries{Symbol: symbol, Interval: interval}
	rows, err := r.db.QueryContext(ctx, `
		SELECT open_time, open, high, low, close, volume FROM (
			SELECT open_time, open, high, low, close, volume
			FROM candles
			WHERE symbol = ? AND interval = ?
			ORDER BY open_time DESC
			LIMIT ?
		) ORDER BY open_time ASC
	`, symbol, interval, limit)
	if err != nil {
		return series, fmt.Errorf("%w: sqlite query candles: %v", marketdata.ErrFetch, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c model.Candle
		var openMs int64
		if err := rows.Scan(&openMs, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return series, fmt.Errorf("%w: sqlite scan candle: %v", marketdata.ErrParse, err)
		}
		c.OpenTime = time.UnixMilli(openMs).UTC()
		series.Candles = append(series.Candles, c)
	}
	if err := rows.Err(); err != nil {
		return series, fmt.Errorf("%w: %v", marketdata.ErrFetch, err)
	}
	if err := series.Validate(); err != nil {
		return series, fmt.Errorf("%w: %v", marketdata.ErrParse, err)
	}
	return series, nil
}

// BookTop returns the latest recorded book top for symbol.
func (r *Reader) BookTop(ctx context.Context, symbol string) (model.BookTop, error) {
	book := model.BookTop{Symbol: symbol}
	var tsMs int64
	err := r.db.QueryRowContext(ctx, `
		SELECT ts, bid, ask FROM book_tops
		WHERE symbol = ?
		ORDER BY ts DESC
		LIMIT 1
	`, symbol).Scan(&tsMs, &book.Bid, &book.Ask)
	if errors.Is(err, sql.ErrNoRows) {
		return book, fmt.Errorf("%w: no recorded book for %s", marketdata.ErrFetch, symbol)
	}
	if err != nil {
		return book, fmt.Errorf("%w: sqlite read book: %v", marketdata.ErrFetch, err)
	}
	book.TS = time.UnixMilli(tsMs).UTC()
	return book, nil
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.db.Close()
}
