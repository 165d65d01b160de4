package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MinHistory is the minimum number of candles a series must hold before its
// indicators are used for decisions.
const MinHistory = 20

// ErrMalformedSeries is returned by CandleSeries.Validate for data that cannot
// be fed to the indicator engine.
var ErrMalformedSeries = errors.New("malformed candle series")

// Candle represents one OHLCV bar for a single instrument and resolution.
// Prices are float64 as delivered by crypto venues (no fixed tick unit).
type Candle struct {
	OpenTime time.Time `json:"open_time"` // bucket start time (UTC)
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"` // base-asset volume
}

// HL2 returns the bar midpoint (high+low)/2.
func (c Candle) HL2() float64 {
	return (c.High + c.Low) / 2
}

// TrueRange returns max(h-l, |h-prevClose|, |l-prevClose|).
func (c Candle) TrueRange(prevClose float64) float64 {
	tr := c.High - c.Low
	if d := math.Abs(c.High - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(c.Low - prevClose); d > tr {
		tr = d
	}
	return tr
}

// CandleSeries is a chronological (oldest first) run of candles for one
// symbol and one interval.
type CandleSeries struct {
	Symbol   string   `json:"symbol"`
	Interval string   `json:"interval"` // e.g. "1h"
	Candles  []Candle `json:"candles"`
}

// Len returns the number of candles in the series.
func (s CandleSeries) Len() int { return len(s.Candles) }

// Last returns the most recent candle. ok is false for an empty series.
func (s CandleSeries) Last() (c Candle, ok bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// Validate checks ordering and basic OHLCV sanity. Errors wrap ErrMalformedSeries.
func (s CandleSeries) Validate() error {
	for i, c := range s.Candles {
		for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: %s candle %d has invalid value %v", ErrMalformedSeries, s.Symbol, i, v)
			}
		}
		if c.High < c.Low {
			return fmt.Errorf("%w: %s candle %d high %.8f < low %.8f", ErrMalformedSeries, s.Symbol, i, c.High, c.Low)
		}
		if i > 0 && !c.OpenTime.After(s.Candles[i-1].OpenTime) {
			return fmt.Errorf("%w: %s candle %d out of order", ErrMalformedSeries, s.Symbol, i)
		}
	}
	return nil
}
