package indicator

import (
	"math"
	"testing"
	"time"

	"signal-scanner/internal/model"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// makeSeries builds an hourly series with high=close+up and low=close-down.
func makeSeries(closes, volumes []float64, up, down float64) model.CandleSeries {
	s := model.CandleSeries{Symbol: "TESTUSDT", Interval: "1h"}
	for i, c := range closes {
		v := 100.0
		if volumes != nil {
			v = volumes[i]
		}
		s.Candles = append(s.Candles, model.Candle{
			OpenTime: t0.Add(time.Duration(i) * time.Hour),
			Open:     c,
			High:     c + up,
			Low:      c - down,
			Close:    c,
			Volume:   v,
		})
	}
	return s
}

// oversoldBounce is a sell-off to 90, a flat base and a bounce on rising
// volume. The latest candle satisfies the long opportunity rule.
func oversoldBounce() model.CandleSeries {
	closes := []float64{100, 98, 96, 94, 92, 90}
	for i := 0; i < 18; i++ {
		closes = append(closes, 90)
	}
	closes = append(closes, 91.6)

	volumes := make([]float64, len(closes))
	for i := range volumes {
		volumes[i] = 1000
	}
	volumes[len(volumes)-1] = 1500
	return makeSeries(closes, volumes, 0.04, 0.06)
}

func TestCompute_WarmupIsMissing(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	r := Compute(makeSeries(closes, nil, 0.5, 0.5), DefaultParams())

	if r.Len() != 25 || len(r.Supertrend) != 25 {
		t.Fatalf("expected 25 values, got Len=%d supertrend=%d", r.Len(), len(r.Supertrend))
	}
	for i := 0; i < 25; i++ {
		if Missing(r.SMA[i]) != (i < 19) {
			t.Errorf("SMA[%d] missing=%v", i, Missing(r.SMA[i]))
		}
		if Missing(r.VolumeMA[i]) != (i < 19) {
			t.Errorf("VolumeMA[%d] missing=%v", i, Missing(r.VolumeMA[i]))
		}
		if Missing(r.RSI[i]) != (i < 14) {
			t.Errorf("RSI[%d] missing=%v", i, Missing(r.RSI[i]))
		}
		if Missing(r.ATR[i]) != (i < 9) {
			t.Errorf("ATR[%d] missing=%v", i, Missing(r.ATR[i]))
		}
		if Missing(r.Pivot[i]) {
			t.Errorf("Pivot[%d] should always be defined", i)
		}
	}
}

func TestCompute_ConstantSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	r := Compute(makeSeries(closes, nil, 1, 1), DefaultParams())
	last := r.Len() - 1

	assertClose(t, "SMA", r.SMA[last], 100, 1e-9)
	assertClose(t, "VolumeMA", r.VolumeMA[last], 100, 1e-9)
	assertClose(t, "RSI", r.RSI[last], 100, 1e-9)
	assertClose(t, "ATR", r.ATR[last], 2, 1e-9)
	assertClose(t, "Pivot", r.Pivot[last], 100, 1e-9)
}

func TestCompute_OversoldBounce(t *testing.T) {
	r := Compute(oversoldBounce(), DefaultParams())
	last := r.Len() - 1

	assertClose(t, "SMA", r.SMA[last], 90.08, 1e-6)
	assertClose(t, "RSI", r.RSI[last], 25.1336, 0.001)
	assertClose(t, "ATR", r.ATR[last], 0.45577, 0.0001)
	assertClose(t, "VolumeMA", r.VolumeMA[last], 1025, 1e-6)
	assertClose(t, "Pivot", r.Pivot[last], (91.64+91.54+91.6)/3, 1e-9)

	st := r.Supertrend[last]
	if !st.Up || !r.Supertrend[last-1].Up {
		t.Fatalf("expected uptrend on the last two candles, got %+v / %+v", r.Supertrend[last-1], st)
	}
	assertClose(t, "Supertrend upper", st.Upper, 90.96258, 0.0001)
	assertClose(t, "Supertrend lower", st.Lower, 90.22268, 0.0001)
}

func TestCompute_EmptySeries(t *testing.T) {
	r := Compute(model.CandleSeries{Symbol: "EMPTY"}, DefaultParams())
	if r.Len() != 0 || r.Supertrend != nil {
		t.Fatalf("expected empty result, got Len=%d", r.Len())
	}
}

func TestCompute_Deterministic(t *testing.T) {
	s := oversoldBounce()
	a := Compute(s, DefaultParams())
	b := Compute(s, DefaultParams())

	same := func(x, y []float64) bool {
		for i := range x {
			if math.Float64bits(x[i]) != math.Float64bits(y[i]) {
				return false
			}
		}
		return len(x) == len(y)
	}
	if !same(a.SMA, b.SMA) || !same(a.RSI, b.RSI) || !same(a.ATR, b.ATR) ||
		!same(a.Pivot, b.Pivot) || !same(a.VolumeMA, b.VolumeMA) {
		t.Fatal("two runs over the same series differ")
	}
	for i := range a.Supertrend {
		if a.Supertrend[i] != b.Supertrend[i] {
			t.Fatalf("supertrend[%d] differs: %+v vs %+v", i, a.Supertrend[i], b.Supertrend[i])
		}
	}
}

func TestParams_Validate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}

	p := DefaultParams()
	p.RSIPeriod = 0
	if err := p.Validate(); err == nil {
		t.Error("expected error for rsi_period=0")
	}

	p = DefaultParams()
	p.Supertrend.Multiplier = -1
	if err := p.Validate(); err == nil {
		t.Error("expected error for negative multiplier")
	}
}
