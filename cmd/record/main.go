// cmd/record snapshots live Binance market data into the SQLite replay
// store so the scanner can later run with MARKET_DATA_SOURCE=sqlite.
//
// Usage:
//
//	go run ./cmd/record --db=data/candles.db --interval=1h --limit=100
//	go run ./cmd/record --symbols=BTCUSDT,ETHUSDT
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"signal-scanner/config"
	"signal-scanner/internal/logger"
	"signal-scanner/internal/marketdata"
	"signal-scanner/internal/marketdata/binance"
	"signal-scanner/internal/model"
	sqlitestore "signal-scanner/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[record] %v", err)
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.InitWithOptions("record", logger.Options{Level: level, File: cfg.LogFile})

	dbPath := flag.String("db", cfg.SQLitePath, "Path to SQLite database")
	interval := flag.String("interval", cfg.CandleInterval, "Kline interval to record")
	limit := flag.Int("limit", cfg.CandleLimit, "Candles per symbol")
	symbolList := flag.String("symbols", "", "Comma-separated symbols (default: whole quote universe)")
	workers := flag.Int("workers", cfg.ScanWorkers, "Concurrent fetchers")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	client := binance.New(binance.Config{
		APIKey:    cfg.BinanceAPIKey,
		SecretKey: cfg.BinanceAPISecret,
		BaseURL:   cfg.BinanceBaseURL,
		RPS:       cfg.RequestsPerSecond,
	})

	if dir := filepath.Dir(*dbPath); dir != "" {
		os.MkdirAll(dir, 0o755)
	}
	writer, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: *dbPath})
	if err != nil {
		log.Fatalf("[record] sqlite open failed: %v", err)
	}
	defer writer.Close()

	symbols := marketdata.FilterQuote(strings.Split(*symbolList, ","), cfg.QuoteSuffix)
	if *symbolList == "" {
		all, err := client.Symbols(ctx)
		if err != nil {
			log.Fatalf("[record] list symbols: %v", err)
		}
		symbols = marketdata.FilterQuote(all, cfg.QuoteSuffix)
	}
	log.Printf("[record] recording %d symbols (%s x%d) into %s", len(symbols), *interval, *limit, *dbPath)

	start := time.Now()
	ok, failed := record(ctx, client, writer, symbols, *interval, *limit, *workers)
	log.Printf("[record] done in %s: %d recorded, %d failed", time.Since(start).Round(time.Millisecond), ok, failed)
}

// record copies book top and candles for each symbol into rec.
func record(ctx context.Context, md model.MarketData, rec model.CandleRecorder, symbols []string, interval string, limit, workers int) (ok, failed int) {
	if workers <= 0 {
		workers = 1
	}
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan string)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				err := recordOne(ctx, md, rec, sym, interval, limit)
				mu.Lock()
				if err != nil {
					failed++
					log.Printf("[record] %s: %v", sym, err)
				} else {
					ok++
				}
				mu.Unlock()
			}
		}()
	}
	for _, sym := range symbols {
		if ctx.Err() != nil {
			break
		}
		jobs <- sym
	}
	close(jobs)
	wg.Wait()
	return ok, failed
}

func recordOne(ctx context.Context, md model.MarketData, rec model.CandleRecorder, symbol, interval string, limit int) error {
	book, err := md.BookTop(ctx, symbol)
	if err != nil {
		return err
	}
	if err := rec.WriteBookTop(ctx, book); err != nil {
		return err
	}
	series, err := md.Candles(ctx, symbol, interval, limit)
	if err != nil {
		return err
	}
	return rec.WriteSeries(ctx, series)
}
