package indicator

import (
	"reflect"
	"testing"
	"time"
)

func TestSnapshot_LatestAndPrevious(t *testing.T) {
	r := Compute(oversoldBounce(), DefaultParams())

	latest := r.Latest()
	if latest.Index != 24 {
		t.Fatalf("Latest().Index = %d, want 24", latest.Index)
	}
	if latest.Close != 91.6 || latest.Volume != 1500 {
		t.Errorf("Latest() close/volume = %v/%v", latest.Close, latest.Volume)
	}
	if !latest.Time.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("Latest().Time = %v", latest.Time)
	}
	if got := latest.MissingFields(); len(got) != 0 {
		t.Errorf("Latest() missing %v", got)
	}

	prev := r.Previous()
	if prev.Index != 23 || prev.Close != 90 {
		t.Errorf("Previous() = index %d close %v", prev.Index, prev.Close)
	}
	if prev.SupertrendUp != latest.SupertrendUp {
		t.Errorf("no flip expected between 23 and 24")
	}
}

func TestSnapshot_MissingFieldsDuringWarmup(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	r := Compute(makeSeries(closes, nil, 0.5, 0.5), DefaultParams())

	// RSI(14) is defined at index 14; SMA(20) and VolumeMA(20) are not.
	got := r.Latest().MissingFields()
	want := []string{"sma", "volume_ma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingFields() = %v, want %v", got, want)
	}

	got = r.At(3).MissingFields()
	want = []string{"rsi", "sma", "volume_ma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("At(3).MissingFields() = %v, want %v", got, want)
	}
}

func TestSnapshot_OutOfRange(t *testing.T) {
	r := Compute(makeSeries([]float64{100}, nil, 1, 1), DefaultParams())

	snap := r.Previous()
	if snap.Index != -1 {
		t.Errorf("Previous().Index = %d, want -1", snap.Index)
	}
	want := []string{"rsi", "sma", "supertrend", "pivot", "volume_ma"}
	if got := snap.MissingFields(); !reflect.DeepEqual(got, want) {
		t.Errorf("MissingFields() = %v, want %v", got, want)
	}

	if !r.Latest().HasSupertrend {
		t.Error("a single candle still seeds the supertrend chain")
	}
}
