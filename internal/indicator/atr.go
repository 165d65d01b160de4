package indicator

import "signal-scanner/internal/model"

// ATR calculates Average True Range: Wilder smoothing (SMMA) of true range.
// True range of the first candle is high-low; later candles also account for
// gaps against the previous close.
type ATR struct {
	period    int
	count     int
	prevClose float64
	smma      *SMMA
}

// NewATR creates a new ATR indicator with the given period (typically 10 or 14).
func NewATR(period int) *ATR {
	return &ATR{period: period, smma: NewSMMA(period)}
}

func (a *ATR) Name() string { return "ATR" }

func (a *ATR) Update(candle model.Candle) {
	a.count++
	tr := candle.High - candle.Low
	if a.count > 1 {
		tr = candle.TrueRange(a.prevClose)
	}
	a.prevClose = candle.Close
	a.smma.Add(tr)
}

func (a *ATR) Value() float64 { return a.smma.Value() }
func (a *ATR) Ready() bool    { return a.smma.Ready() }

// Reset clears the ATR state for reuse.
func (a *ATR) Reset() {
	a.count = 0
	a.prevClose = 0
	a.smma.Reset()
}
