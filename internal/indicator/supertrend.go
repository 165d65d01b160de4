package indicator

import "signal-scanner/internal/model"

// SupertrendParams configures the Supertrend overlay.
type SupertrendParams struct {
	ATRPeriod  int     `yaml:"atr_period"`
	Multiplier float64 `yaml:"multiplier"`
}

// DefaultSupertrendParams returns the classic (10, 3) setting.
func DefaultSupertrendParams() SupertrendParams {
	return SupertrendParams{ATRPeriod: 10, Multiplier: 3}
}

// SupertrendState is the trend flag and final bands at one candle index.
type SupertrendState struct {
	Up    bool    `json:"up"`
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
}

// basicBands returns hl2 ± multiplier*atr. A missing ATR (warm-up) counts as
// zero, collapsing both bands onto hl2.
func basicBands(c model.Candle, atr, multiplier float64) (upper, lower float64) {
	if Missing(atr) {
		atr = 0
	}
	hl2 := c.HL2()
	return hl2 + multiplier*atr, hl2 - multiplier*atr
}

// SeedSupertrend returns the state at index 0: trend up, raw bands.
func SeedSupertrend(c model.Candle, atr, multiplier float64) SupertrendState {
	upper, lower := basicBands(c, atr, multiplier)
	return SupertrendState{Up: true, Upper: upper, Lower: lower}
}

// StepSupertrend advances the chain by one candle. prevClose is the close of
// the candle that produced prev.
//
// The final upper band only moves down, unless the previous close broke above
// it; the final lower band only moves up, unless the previous close broke
// below it. The trend flips down when close touches the lower band and flips
// up when close touches the upper band.
func StepSupertrend(prev SupertrendState, prevClose float64, c model.Candle, atr, multiplier float64) SupertrendState {
	basicUpper, basicLower := basicBands(c, atr, multiplier)

	next := SupertrendState{Upper: prev.Upper, Lower: prev.Lower}
	if basicUpper < prev.Upper || prevClose > prev.Upper {
		next.Upper = basicUpper
	}
	if basicLower > prev.Lower || prevClose < prev.Lower {
		next.Lower = basicLower
	}

	if prev.Up {
		next.Up = c.Close > next.Lower
	} else {
		next.Up = c.Close >= next.Upper
	}
	return next
}

// Supertrend folds StepSupertrend left to right and returns one state per
// candle. atr must be index-aligned with candles.
func Supertrend(candles []model.Candle, atr []float64, multiplier float64) []SupertrendState {
	if len(candles) == 0 {
		return nil
	}
	states := make([]SupertrendState, len(candles))
	states[0] = SeedSupertrend(candles[0], atr[0], multiplier)
	for i := 1; i < len(candles); i++ {
		states[i] = StepSupertrend(states[i-1], candles[i-1].Close, candles[i], atr[i], multiplier)
	}
	return states
}
