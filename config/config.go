// Package config loads scanner configuration from the environment, an
// optional .env file and an optional YAML rules file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"signal-scanner/internal/indicator"
	"signal-scanner/internal/logger"
	"signal-scanner/internal/model"
	"signal-scanner/internal/strategy"
)

// Market data sources.
const (
	SourceBinance = "binance"
	SourceSQLite  = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	MarketDataSource string `envconfig:"MARKET_DATA_SOURCE" default:"binance"`

	// Binance credentials. Public market endpoints work without them.
	BinanceAPIKey    string `envconfig:"BINANCE_API_KEY"`
	BinanceAPISecret string `envconfig:"BINANCE_API_SECRET"`
	BinanceBaseURL   string `envconfig:"BINANCE_BASE_URL"`

	// Notification sinks. Each is enabled only when configured.
	TelegramToken    string `envconfig:"TELEGRAM_TOKEN"`
	ChatID           string `envconfig:"CHAT_ID"`
	AlertWebhookURL  string `envconfig:"ALERT_WEBHOOK_URL"`
	NotifyEmptyCycle bool   `envconfig:"NOTIFY_EMPTY_CYCLE" default:"true"`

	// Infrastructure
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	AlertChannel  string `envconfig:"ALERT_CHANNEL" default:"scanner:alerts"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"data/candles.db"`
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":9090"`
	WSReplaySize  int    `envconfig:"WS_REPLAY_SIZE" default:"256"`

	// Scan cycle
	ScanInterval      time.Duration `envconfig:"SCAN_INTERVAL" default:"1h"`
	CandleInterval    string        `envconfig:"CANDLE_INTERVAL" default:"1h"`
	CandleLimit       int           `envconfig:"CANDLE_LIMIT" default:"100"`
	ScanWorkers       int           `envconfig:"SCAN_WORKERS" default:"8"`
	FetchTimeout      time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	CycleTimeout      time.Duration `envconfig:"CYCLE_TIMEOUT" default:"10m"`
	NotifyTimeout     time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"15s"`
	RequestsPerSecond float64       `envconfig:"REQUESTS_PER_SECOND" default:"10"`
	QuoteSuffix       string        `envconfig:"QUOTE_SUFFIX" default:"USDT"`
	MinSpreadPct      float64       `envconfig:"MIN_SPREAD_PCT" default:"4.0"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile   string `envconfig:"LOG_FILE"`
	RulesFile string `envconfig:"RULES_FILE"`

	Indicators indicator.Params `ignored:"true"`
	Rule       strategy.Rule    `ignored:"true"`
}

// rulesFile is the YAML layout of RULES_FILE. Keys that are absent keep the
// value already loaded from defaults and the environment.
type rulesFile struct {
	Supertrend indicator.SupertrendParams `yaml:"supertrend"`
	Rule       strategy.Rule              `yaml:"rule"`
	Scan       struct {
		MinSpreadPct float64 `yaml:"min_spread_pct"`
		QuoteSuffix  string  `yaml:"quote_suffix"`
	} `yaml:"scan"`
}

// Load reads .env (if present), the environment and RULES_FILE, then
// validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Indicators: indicator.DefaultParams(),
		Rule:       strategy.DefaultRule(),
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if cfg.RulesFile != "" {
		if err := cfg.LoadRules(cfg.RulesFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadRules overlays strategy parameters from a YAML file.
func (c *Config) LoadRules(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rules file: %w", err)
	}

	var rf rulesFile
	rf.Supertrend = c.Indicators.Supertrend
	rf.Rule = c.Rule
	rf.Scan.MinSpreadPct = c.MinSpreadPct
	rf.Scan.QuoteSuffix = c.QuoteSuffix
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parse rules file %s: %w", path, err)
	}

	c.Indicators.Supertrend = rf.Supertrend
	c.Rule = rf.Rule
	c.MinSpreadPct = rf.Scan.MinSpreadPct
	c.QuoteSuffix = rf.Scan.QuoteSuffix
	return nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.MarketDataSource {
	case SourceBinance, SourceSQLite:
	default:
		add("MARKET_DATA_SOURCE must be %q or %q, got %q", SourceBinance, SourceSQLite, c.MarketDataSource)
	}
	if c.MarketDataSource == SourceSQLite && c.SQLitePath == "" {
		add("SQLITE_PATH is required when MARKET_DATA_SOURCE=%s", SourceSQLite)
	}
	if (c.BinanceAPIKey == "") != (c.BinanceAPISecret == "") {
		add("BINANCE_API_KEY and BINANCE_API_SECRET must be set together")
	}
	if (c.TelegramToken == "") != (c.ChatID == "") {
		add("TELEGRAM_TOKEN and CHAT_ID must be set together")
	}
	if c.ScanInterval <= 0 {
		add("SCAN_INTERVAL must be positive")
	}
	if c.FetchTimeout <= 0 {
		add("FETCH_TIMEOUT must be positive")
	}
	if c.CycleTimeout <= 0 {
		add("CYCLE_TIMEOUT must be positive")
	}
	if c.NotifyTimeout <= 0 {
		add("NOTIFY_TIMEOUT must be positive")
	}
	if c.CandleInterval == "" {
		add("CANDLE_INTERVAL must not be empty")
	}
	if c.CandleLimit < model.MinHistory {
		add("CANDLE_LIMIT=%d is below the %d candles the indicators need", c.CandleLimit, model.MinHistory)
	}
	if c.ScanWorkers <= 0 {
		add("SCAN_WORKERS must be positive")
	}
	if c.RequestsPerSecond <= 0 {
		add("REQUESTS_PER_SECOND must be positive")
	}
	if strings.TrimSpace(c.QuoteSuffix) == "" {
		add("QUOTE_SUFFIX must not be empty")
	}
	if c.MinSpreadPct < 0 {
		add("MIN_SPREAD_PCT must not be negative")
	}
	if c.WSReplaySize <= 0 {
		add("WS_REPLAY_SIZE must be positive")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		add("LOG_LEVEL: %v", err)
	}
	if err := c.Indicators.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Rule.RSIOversold <= 0 || c.Rule.RSIOversold >= 100 {
		add("rule.rsi_oversold=%v must be between 0 and 100", c.Rule.RSIOversold)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// TelegramEnabled reports whether the Telegram sink is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.ChatID != ""
}

// RedisEnabled reports whether alerts are published to Redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}
