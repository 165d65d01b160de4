// cmd/scanner runs the market scanner: every SCAN_INTERVAL it scans the
// quote universe, evaluates the long opportunity rule per instrument and
// delivers alerts to the configured sinks. It also serves /metrics,
// /healthz, the TradingView /webhook and the /ws/alerts stream.
//
// Usage:
//
//	go run ./cmd/scanner          # run until SIGINT/SIGTERM
//	go run ./cmd/scanner -once    # one cycle, then exit
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"signal-scanner/config"
	"signal-scanner/internal/gateway"
	"signal-scanner/internal/logger"
	"signal-scanner/internal/marketdata/binance"
	"signal-scanner/internal/metrics"
	"signal-scanner/internal/model"
	"signal-scanner/internal/notification"
	"signal-scanner/internal/scanner"
	redisstore "signal-scanner/internal/store/redis"
	sqlitestore "signal-scanner/internal/store/sqlite"
	"signal-scanner/internal/webhook"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	once := flag.Bool("once", false, "Run a single scan cycle and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[scanner] %v", err)
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.InitWithOptions("scanner", logger.Options{Level: level, File: cfg.LogFile, MaxAgeDays: 7})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[scanner] shutdown signal received")
		cancel()
	}()

	// ---- Market data ----
	md, closeMD := buildMarketData(cfg)
	defer closeMD()

	// ---- Metrics ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := metrics.NewMetrics(reg)
	health := metrics.NewHealthStatus()

	// ---- Notification sinks ----
	sinks := notification.NewMulti(notification.Sink{Name: "log", Notifier: notification.NewLogNotifier()})
	sinks.OnFailure = func(sink string, err error) {
		prom.NotifyFailures.WithLabelValues(sink).Inc()
	}
	if cfg.TelegramEnabled() {
		sinks.Add("telegram", guarded("telegram", notification.NewTelegramNotifier(cfg.TelegramToken, cfg.ChatID)))
	}
	if cfg.AlertWebhookURL != "" {
		sinks.Add("webhook", guarded("webhook", notification.NewWebhookNotifier(cfg.AlertWebhookURL)))
	}
	if cfg.RedisEnabled() {
		pub, err := redisstore.New(redisstore.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err != nil {
			log.Printf("[scanner] WARNING: redis unavailable, alerts will not be published: %v", err)
		} else {
			defer pub.Close()
			sinks.Add("redis", guarded("redis", notification.NewPublishNotifier(pub, cfg.AlertChannel)))
			health.StartLivenessChecker(ctx, pub, 15*time.Second)
		}
	}
	hub := gateway.NewHub(cfg.WSReplaySize)
	defer hub.Close()
	sinks.Add("ws", hub)
	log.Printf("[scanner] notification sinks: %v", sinks.Names())

	// ---- HTTP: metrics, health, webhook, ws ----
	srv := metrics.NewServer(cfg.HTTPAddr, reg, health)
	srv.Handle("/webhook", webhook.NewHandler(sinks))
	srv.Handle("/ws/alerts", hub)
	srv.Start()
	defer func() {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutCancel()
		srv.Stop(shutCtx)
	}()

	sc := scanner.New(scanner.Config{
		Interval:         cfg.ScanInterval,
		CandleInterval:   cfg.CandleInterval,
		CandleLimit:      cfg.CandleLimit,
		Workers:          cfg.ScanWorkers,
		FetchTimeout:     cfg.FetchTimeout,
		CycleTimeout:     cfg.CycleTimeout,
		NotifyTimeout:    cfg.NotifyTimeout,
		QuoteSuffix:      cfg.QuoteSuffix,
		MinSpreadPct:     cfg.MinSpreadPct,
		NotifyEmptyCycle: cfg.NotifyEmptyCycle,
		Indicators:       cfg.Indicators,
		Rule:             cfg.Rule,
	}, md, sinks, scanner.WithMetrics(prom), scanner.WithHealth(health))

	slog.Info("scanner ready",
		slog.String("source", cfg.MarketDataSource),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.Duration("interval", cfg.ScanInterval))

	if *once {
		if _, err := sc.RunCycle(ctx); err != nil {
			log.Fatalf("[scanner] cycle failed: %v", err)
		}
		return
	}
	if err := sc.Run(ctx); err != nil {
		log.Fatalf("[scanner] fatal: %v", err)
	}
	log.Println("[scanner] shutdown complete.")
}

// guarded wraps a remote sink in a circuit breaker so a dead endpoint is
// skipped until it recovers.
func guarded(name string, n notification.Notifier) notification.Notifier {
	return notification.NewGuarded(name, n, notification.NewCircuitBreaker(5, 2*time.Minute))
}

func buildMarketData(cfg *config.Config) (model.MarketData, func()) {
	switch cfg.MarketDataSource {
	case config.SourceSQLite:
		reader, err := sqlitestore.NewReader(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("[scanner] sqlite open failed: %v", err)
		}
		log.Printf("[scanner] replaying recorded market data from %s", cfg.SQLitePath)
		return reader, func() { reader.Close() }
	default:
		client := binance.New(binance.Config{
			APIKey:    cfg.BinanceAPIKey,
			SecretKey: cfg.BinanceAPISecret,
			BaseURL:   cfg.BinanceBaseURL,
			RPS:       cfg.RequestsPerSecond,
		})
		return client, func() {}
	}
}
