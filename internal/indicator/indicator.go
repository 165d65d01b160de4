// Package indicator provides technical indicator calculations over candle data.
//
// Streaming indicators implement the Indicator interface, receiving candles
// one at a time and producing float64 values. Compute runs them across a whole
// CandleSeries and adds the Supertrend overlay on top of ATR.
package indicator

import (
	"math"

	"signal-scanner/internal/model"
)

// Indicator is the interface for all streaming technical indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "SMA", "RSI").
	Name() string

	// Update feeds the next candle and recalculates.
	Update(candle model.Candle)

	// Value returns the current calculated value. Returns 0 if not enough data.
	Value() float64

	// Ready returns true when enough data has been accumulated.
	Ready() bool

	// Reset clears accumulated state for reuse.
	Reset()
}

// Missing reports whether v marks an undefined indicator value.
func Missing(v float64) bool { return math.IsNaN(v) }

// nan is the "no value" marker stored in result series.
var nan = math.NaN()

// valueOrMissing returns ind.Value() or NaN while the indicator warms up.
func valueOrMissing(ind Indicator) float64 {
	if !ind.Ready() {
		return nan
	}
	return ind.Value()
}
