package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"signal-scanner/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// WriterConfig configures the SQLite writer.
type WriterConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/replay.db"
}

// Writer records candle series and book tops so a scan can be replayed
// without network access.
type Writer struct {
	db *sql.DB
}

var _ model.CandleRecorder = (*Writer)(nil)

// DB returns the underlying sql.DB for health checks.
func (w *Writer) DB() *sql.DB { return w.db }

// New creates a new SQLite Writer, initializes the database with WAL mode and schema.
func New(cfg WriterConfig) (*Writer, error) {
	db, err := open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Set connection pool for single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Writer{db: db}, nil
}

func open(path string) (*sql.DB, error) {
	return sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS candles (
			symbol    TEXT    NOT NULL,
			interval  TEXT    NOT NULL,
			open_time INTEGER NOT NULL,
			open      REAL    NOT NULL,
			high      REAL    NOT NULL,
			low       REAL    NOT NULL,
			close     REAL    NOT NULL,
			volume    REAL    NOT NULL,
			PRIMARY KEY (symbol, interval, open_time)
		);

		CREATE TABLE IF NOT EXISTS book_tops (
			symbol TEXT    NOT NULL,
			ts     INTEGER NOT NULL,
			bid    REAL    NOT NULL,
			ask    REAL    NOT NULL,
			PRIMARY KEY (symbol, ts)
		);
	`)
	return err
}

// WriteSeries upserts every candle of series in a single transaction.
func (w *Writer) WriteSeries(ctx context.Context, series model.CandleSeries) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, interval, open_time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, c := range series.Candles {
		_, err := stmt.ExecContext(ctx, series.Symbol, series.Interval, c.OpenTime.UnixMilli(),
			c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert candle %s: %w", series.Symbol, err)
		}
	}

	return tx.Commit()
}

// WriteBookTop stores one best bid/ask observation.
func (w *Writer) WriteBookTop(ctx context.Context, book model.BookTop) error {
	_, err := w.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO book_tops (symbol, ts, bid, ask) VALUES (?, ?, ?, ?)`,
		book.Symbol, book.TS.UnixMilli(), book.Bid, book.Ask,
	)
	if err != nil {
		return fmt.Errorf("sqlite insert book %s: %w", book.Symbol, err)
	}
	return nil
}

// Close closes the database.
func (w *Writer) Close() error {
	return w.db.Close()
}
