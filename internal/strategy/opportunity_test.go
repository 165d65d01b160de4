package strategy

import (
	"testing"

	"signal-scanner/internal/indicator"
	"signal-scanner/internal/model"
)

func snapshot(up bool, sma, rsi, volMA float64) indicator.IndicatorSnapshot {
	return indicator.IndicatorSnapshot{
		Index:           24,
		Time:            t0,
		SMA:             sma,
		RSI:             rsi,
		Pivot:           100,
		VolumeMA:        volMA,
		HasSupertrend:   true,
		SupertrendUp:    up,
		SupertrendUpper: 105,
		SupertrendLower: 95,
	}
}

func baseInput() Input {
	return Input{
		Symbol:    "TESTUSDT",
		Interval:  "1h",
		Latest:    snapshot(true, 100, 25, 1000),
		Previous:  snapshot(true, 100, 25, 1000),
		Volume:    1500,
		Ask:       101,
		SpreadPct: 4.5,
		Now:       t0,
	}
}

func TestEvaluate_AllConditionsMet(t *testing.T) {
	alert := Evaluate(baseInput())
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if alert.Direction != model.DirectionLong {
		t.Errorf("Direction = %s, want Long", alert.Direction)
	}
	if alert.Reversal {
		t.Error("Reversal should be false without a trend change")
	}
	if alert.ID == "" {
		t.Error("alert should carry an ID")
	}
	if alert.Symbol != "TESTUSDT" || alert.SpreadPct != 4.5 || alert.Ask != 101 || alert.Volume != 1500 {
		t.Errorf("unexpected alert fields: %+v", alert)
	}
	if alert.SMA != 100 || alert.RSI != 25 || alert.VolumeMA != 1000 {
		t.Errorf("snapshot values not carried: %+v", alert)
	}
}

func TestEvaluate_EachConditionRequired(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"downtrend", func(in *Input) { in.Latest.SupertrendUp = false }},
		{"ask at SMA", func(in *Input) { in.Ask = 100 }},
		{"ask below SMA", func(in *Input) { in.Ask = 99 }},
		{"RSI at threshold", func(in *Input) { in.Latest.RSI = 30 }},
		{"RSI not oversold", func(in *Input) { in.Latest.RSI = 55 }},
		{"volume at average", func(in *Input) { in.Volume = 1000 }},
		{"volume below average", func(in *Input) { in.Volume = 500 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			if alert := Evaluate(in); alert != nil {
				t.Errorf("expected no alert, got %+v", alert)
			}
		})
	}
}

func TestEvaluate_ReversalFlag(t *testing.T) {
	in := baseInput()
	in.Previous.SupertrendUp = false
	alert := Evaluate(in)
	if alert == nil || !alert.Reversal {
		t.Fatalf("expected reversal alert, got %+v", alert)
	}
}

func TestRule_CustomThreshold(t *testing.T) {
	in := baseInput()
	in.Latest.RSI = 35
	if Evaluate(in) != nil {
		t.Fatal("default rule should not fire at RSI 35")
	}
	if (Rule{RSIOversold: 40}).Evaluate(in) == nil {
		t.Fatal("RSIOversold=40 should fire at RSI 35")
	}
}

// TestPipeline_OversoldBounce runs a series through the indicator engine,
// the gate and the rule: a sell-off to 90, a flat base and a bounce on
// rising volume yields exactly one long alert.
func TestPipeline_OversoldBounce(t *testing.T) {
	closes := []float64{100, 98, 96, 94, 92, 90}
	closes = append(closes, flat(18, 90)...)
	closes = append(closes, 91.6)
	volumes := append(flat(24, 1000), 1500)

	res := indicator.Compute(makeSeries(closes, volumes), indicator.DefaultParams())
	if err := Validate(res); err != nil {
		t.Fatalf("gate rejected: %v", err)
	}

	latest := res.Latest()
	alert := Evaluate(Input{
		Symbol:    "TESTUSDT",
		Interval:  "1h",
		Latest:    latest,
		Previous:  res.Previous(),
		Volume:    latest.Volume,
		Ask:       91.62,
		SpreadPct: 5,
		Now:       t0,
	})
	if alert == nil {
		t.Fatalf("expected alert, snapshot %+v", latest)
	}
	if alert.Direction != model.DirectionLong || alert.Reversal {
		t.Errorf("Direction=%s Reversal=%v, want Long/false", alert.Direction, alert.Reversal)
	}
	if alert.RSI < 25.1 || alert.RSI > 25.2 {
		t.Errorf("RSI = %.4f, want ~25.13", alert.RSI)
	}

	// Ask below the SMA (90.08) kills the same setup.
	noAlert := Evaluate(Input{Symbol: "TESTUSDT", Latest: latest, Previous: res.Previous(), Volume: latest.Volume, Ask: 90})
	if noAlert != nil {
		t.Errorf("expected no alert with ask under SMA, got %+v", noAlert)
	}
}
