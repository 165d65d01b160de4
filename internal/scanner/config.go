package scanner

import (
	"time"

	"signal-scanner/internal/indicator"
	"signal-scanner/internal/strategy"
)

// Config controls one scanner instance.
type Config struct {
	Interval       time.Duration // time between cycle starts
	CandleInterval string        // kline interval requested per instrument
	CandleLimit    int
	Workers        int
	FetchTimeout   time.Duration // per market data request
	CycleTimeout   time.Duration // symbol listing and instrument scan
	NotifyTimeout  time.Duration // per notification, outside CycleTimeout

	QuoteSuffix      string
	MinSpreadPct     float64
	NotifyEmptyCycle bool

	Indicators indicator.Params
	Rule       strategy.Rule
}

// DefaultConfig mirrors the config package defaults.
func DefaultConfig() Config {
	return Config{
		Interval:         time.Hour,
		CandleInterval:   "1h",
		CandleLimit:      100,
		Workers:          8,
		FetchTimeout:     10 * time.Second,
		CycleTimeout:     10 * time.Minute,
		NotifyTimeout:    15 * time.Second,
		QuoteSuffix:      "USDT",
		MinSpreadPct:     4.0,
		NotifyEmptyCycle: true,
		Indicators:       indicator.DefaultParams(),
		Rule:             strategy.DefaultRule(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.CandleInterval == "" {
		c.CandleInterval = d.CandleInterval
	}
	if c.CandleLimit <= 0 {
		c.CandleLimit = d.CandleLimit
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.CycleTimeout <= 0 {
		c.CycleTimeout = d.CycleTimeout
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = d.NotifyTimeout
	}
	if c.Indicators.Validate() != nil {
		c.Indicators = d.Indicators
	}
	if c.Rule.RSIOversold <= 0 {
		c.Rule = d.Rule
	}
	return c
}
