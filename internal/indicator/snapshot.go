package indicator

import "time"

// IndicatorSnapshot holds every indicator value at one candle index.
type IndicatorSnapshot struct {
	Index  int       `json:"index"`
	Time   time.Time `json:"time"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`

	SMA      float64 `json:"sma"`
	RSI      float64 `json:"rsi"`
	ATR      float64 `json:"atr"`
	Pivot    float64 `json:"pivot"`
	VolumeMA float64 `json:"volume_ma"`

	// HasSupertrend is false only for an index outside the chain.
	HasSupertrend   bool    `json:"has_supertrend"`
	SupertrendUp    bool    `json:"supertrend_up"`
	SupertrendUpper float64 `json:"supertrend_upper"`
	SupertrendLower float64 `json:"supertrend_lower"`
}

// MissingFields lists the decision inputs that are undefined in s.
// ATR and the bands are not decision inputs and are not reported.
func (s IndicatorSnapshot) MissingFields() []string {
	var missing []string
	if Missing(s.RSI) {
		missing = append(missing, "rsi")
	}
	if Missing(s.SMA) {
		missing = append(missing, "sma")
	}
	if !s.HasSupertrend {
		missing = append(missing, "supertrend")
	}
	if Missing(s.Pivot) {
		missing = append(missing, "pivot")
	}
	if Missing(s.VolumeMA) {
		missing = append(missing, "volume_ma")
	}
	return missing
}

// At returns the snapshot at index i. An out-of-range index yields a
// snapshot with every value missing.
func (r *Result) At(i int) IndicatorSnapshot {
	if i < 0 || i >= r.Len() {
		return IndicatorSnapshot{
			Index: i, Close: nan, Volume: nan,
			SMA: nan, RSI: nan, ATR: nan, Pivot: nan, VolumeMA: nan,
			SupertrendUpper: nan, SupertrendLower: nan,
		}
	}
	c := r.Series.Candles[i]
	snap := IndicatorSnapshot{
		Index:    i,
		Time:     c.OpenTime,
		Close:    c.Close,
		Volume:   c.Volume,
		SMA:      r.SMA[i],
		RSI:      r.RSI[i],
		ATR:      r.ATR[i],
		Pivot:    r.Pivot[i],
		VolumeMA: r.VolumeMA[i],
	}
	if i < len(r.Supertrend) {
		st := r.Supertrend[i]
		snap.HasSupertrend = true
		snap.SupertrendUp = st.Up
		snap.SupertrendUpper = st.Upper
		snap.SupertrendLower = st.Lower
	}
	return snap
}

// Latest returns the snapshot at the last index.
func (r *Result) Latest() IndicatorSnapshot { return r.At(r.Len() - 1) }

// Previous returns the snapshot one index before the last.
func (r *Result) Previous() IndicatorSnapshot { return r.At(r.Len() - 2) }
