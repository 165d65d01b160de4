package model

import "time"

// Direction is the trend side reported on an alert.
type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

// DirectionOf maps a Supertrend state to its direction label.
func DirectionOf(trendUp bool) Direction {
	if trendUp {
		return DirectionLong
	}
	return DirectionShort
}

// AlertRecord is one opportunity found by the scanner. It is produced once,
// handed to the notification sinks and then dropped.
type AlertRecord struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Interval  string    `json:"interval"`
	Time      time.Time `json:"time"`
	SpreadPct float64   `json:"spread_pct"`
	Ask       float64   `json:"ask"`
	Volume    float64   `json:"volume"`
	Direction Direction `json:"direction"`
	Reversal  bool      `json:"reversal"` // trend flipped on the latest candle

	// Indicator values at the latest candle.
	SMA             float64 `json:"sma"`
	RSI             float64 `json:"rsi"`
	VolumeMA        float64 `json:"volume_ma"`
	Pivot           float64 `json:"pivot"`
	SupertrendUpper float64 `json:"supertrend_upper"`
	SupertrendLower float64 `json:"supertrend_lower"`
}

// ChartURL returns the TradingView chart link for a Binance symbol.
func ChartURL(symbol string) string {
	return "https://www.tradingview.com/chart/?symbol=BINANCE:" + symbol
}
