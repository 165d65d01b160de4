package strategy

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"signal-scanner/internal/indicator"
	"signal-scanner/internal/model"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func makeSeries(closes, volumes []float64) model.CandleSeries {
	s := model.CandleSeries{Symbol: "TESTUSDT", Interval: "1h"}
	for i, c := range closes {
		s.Candles = append(s.Candles, model.Candle{
			OpenTime: t0.Add(time.Duration(i) * time.Hour),
			Open:     c,
			High:     c + 0.04,
			Low:      c - 0.06,
			Close:    c,
			Volume:   volumes[i],
		})
	}
	return s
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestValidate_InsufficientHistory(t *testing.T) {
	res := indicator.Compute(makeSeries(flat(19, 100), flat(19, 10)), indicator.DefaultParams())
	err := Validate(res)

	var rej *RejectError
	if !errors.As(err, &rej) {
		t.Fatalf("expected *RejectError, got %v", err)
	}
	if rej.Reason != ReasonInsufficientHistory {
		t.Errorf("Reason = %q, want %q", rej.Reason, ReasonInsufficientHistory)
	}
	if Accept(res) {
		t.Error("Accept should be false")
	}
}

func TestValidate_IncompleteIndicators(t *testing.T) {
	p := indicator.DefaultParams()
	p.SMAPeriod = 30
	res := indicator.Compute(makeSeries(flat(25, 100), flat(25, 10)), p)

	var rej *RejectError
	if err := Validate(res); !errors.As(err, &rej) || rej.Reason != ReasonIncompleteIndicators {
		t.Fatalf("expected incomplete_indicators rejection, got %v", err)
	}
	if rej.Detail != "missing sma" {
		t.Errorf("Detail = %q", rej.Detail)
	}
}

func TestValidate_AcceptsFullHistory(t *testing.T) {
	res := indicator.Compute(makeSeries(flat(20, 100), flat(20, 10)), indicator.DefaultParams())
	if err := Validate(res); err != nil {
		t.Fatalf("expected acceptance at exactly %d candles, got %v", model.MinHistory, err)
	}
}

func TestValidate_RejectsShortSeries_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("any series shorter than MinHistory is rejected", prop.ForAll(
		func(n int, price float64) bool {
			res := indicator.Compute(makeSeries(flat(n, price), flat(n, 1)), indicator.DefaultParams())
			var rej *RejectError
			return errors.As(Validate(res), &rej) && rej.Reason == ReasonInsufficientHistory
		},
		gen.IntRange(0, model.MinHistory-1),
		gen.Float64Range(0.0001, 100000),
	))

	properties.TestingRun(t)
}
