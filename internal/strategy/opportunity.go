package strategy

import (
	"time"

	"github.com/google/uuid"

	"signal-scanner/internal/indicator"
	"signal-scanner/internal/model"
)

// Rule holds the tunable thresholds of the opportunity rule.
type Rule struct {
	RSIOversold float64 `yaml:"rsi_oversold"`
}

// DefaultRule returns RSI oversold at 30.
func DefaultRule() Rule {
	return Rule{RSIOversold: 30}
}

// Input is everything Evaluate needs for one instrument.
type Input struct {
	Symbol    string
	Interval  string
	Latest    indicator.IndicatorSnapshot
	Previous  indicator.IndicatorSnapshot
	Volume    float64 // volume of the latest candle
	Ask       float64
	SpreadPct float64
	Now       time.Time
}

// Evaluate returns an alert when the latest candle is in a Supertrend
// uptrend, the ask is above the SMA, RSI is oversold and volume beats its
// average. It returns nil otherwise. Only the long side is evaluated.
//
// Callers are expected to have passed the result through Validate.
func (r Rule) Evaluate(in Input) *model.AlertRecord {
	l := in.Latest
	if !l.HasSupertrend || !l.SupertrendUp {
		return nil
	}
	if !(in.Ask > l.SMA) {
		return nil
	}
	if !(l.RSI < r.RSIOversold) {
		return nil
	}
	if !(in.Volume > l.VolumeMA) {
		return nil
	}

	return &model.AlertRecord{
		ID:              uuid.NewString(),
		Symbol:          in.Symbol,
		Interval:        in.Interval,
		Time:            in.Now,
		SpreadPct:       in.SpreadPct,
		Ask:             in.Ask,
		Volume:          in.Volume,
		Direction:       model.DirectionOf(l.SupertrendUp),
		Reversal:        in.Previous.HasSupertrend && in.Previous.SupertrendUp != l.SupertrendUp,
		SMA:             l.SMA,
		RSI:             l.RSI,
		VolumeMA:        l.VolumeMA,
		Pivot:           l.Pivot,
		SupertrendUpper: l.SupertrendUpper,
		SupertrendLower: l.SupertrendLower,
	}
}

// Evaluate applies DefaultRule.
func Evaluate(in Input) *model.AlertRecord {
	return DefaultRule().Evaluate(in)
}
