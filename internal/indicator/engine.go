package indicator

import (
	"fmt"

	"signal-scanner/internal/model"
)

// Params specifies the periods of the indicator set computed per series.
type Params struct {
	SMAPeriod    int              `yaml:"sma_period"`
	RSIPeriod    int              `yaml:"rsi_period"`
	VolumePeriod int              `yaml:"volume_period"`
	Supertrend   SupertrendParams `yaml:"supertrend"`
}

// DefaultParams returns SMA(20), RSI(14), VolumeMA(20) and Supertrend(10, 3).
func DefaultParams() Params {
	return Params{
		SMAPeriod:    20,
		RSIPeriod:    14,
		VolumePeriod: 20,
		Supertrend:   DefaultSupertrendParams(),
	}
}

// Validate checks a Params for errors.
func (p Params) Validate() error {
	periods := []struct {
		name string
		v    int
	}{
		{"sma_period", p.SMAPeriod},
		{"rsi_period", p.RSIPeriod},
		{"volume_period", p.VolumePeriod},
		{"supertrend.atr_period", p.Supertrend.ATRPeriod},
	}
	for _, pr := range periods {
		if pr.v <= 0 {
			return fmt.Errorf("invalid %s=%d: must be positive", pr.name, pr.v)
		}
	}
	if p.Supertrend.Multiplier <= 0 {
		return fmt.Errorf("invalid supertrend.multiplier=%v: must be positive", p.Supertrend.Multiplier)
	}
	return nil
}

// Result holds index-aligned indicator series for one CandleSeries.
// Values not yet defined at an index are NaN (see Missing).
type Result struct {
	Series     model.CandleSeries
	SMA        []float64
	RSI        []float64
	ATR        []float64
	Pivot      []float64
	VolumeMA   []float64
	Supertrend []SupertrendState
}

// Len returns the number of indexed values (one per candle).
func (r *Result) Len() int { return r.Series.Len() }

// Pivot returns the candle's (high+low+close)/3.
func Pivot(c model.Candle) float64 {
	return (c.High + c.Low + c.Close) / 3
}

// Compute runs the full indicator set over series in one pass and then folds
// the Supertrend chain over the resulting ATR. It keeps no state between
// calls, so the same series always yields identical output.
func Compute(series model.CandleSeries, p Params) *Result {
	n := series.Len()
	r := &Result{
		Series:   series,
		SMA:      make([]float64, n),
		RSI:      make([]float64, n),
		ATR:      make([]float64, n),
		Pivot:    make([]float64, n),
		VolumeMA: make([]float64, n),
	}

	// Update all indicators and collect values (one pass)
	outputs := []struct {
		ind Indicator
		out []float64
	}{
		{NewSMA(p.SMAPeriod), r.SMA},
		{NewRSI(p.RSIPeriod), r.RSI},
		{NewATR(p.Supertrend.ATRPeriod), r.ATR},
		{NewVolumeSMA(p.VolumePeriod), r.VolumeMA},
	}
	for i, c := range series.Candles {
		for _, o := range outputs {
			o.ind.Update(c)
			o.out[i] = valueOrMissing(o.ind)
		}
		r.Pivot[i] = Pivot(c)
	}

	r.Supertrend = Supertrend(series.Candles, r.ATR, p.Supertrend.Multiplier)
	return r
}
