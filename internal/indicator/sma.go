package indicator

import "signal-scanner/internal/model"

// Source picks the candle field an indicator consumes.
type Source func(model.Candle) float64

// CloseSource and VolumeSource are the two fields averaged by the scanner.
var (
	CloseSource  Source = func(c model.Candle) float64 { return c.Close }
	VolumeSource Source = func(c model.Candle) float64 { return c.Volume }
)

// SMA calculates Simple Moving Average over a rolling window.
// Uses a preallocated circular buffer for zero-allocation hot path.
type SMA struct {
	name    string
	source  Source
	period  int
	buf     []float64 // preallocated circular buffer
	idx     int       // current write position
	count   int       // total values received
	sum     float64
	current float64
}

// NewSMA creates a new SMA of the close price with the given period.
func NewSMA(period int) *SMA {
	return newSMA("SMA", period, CloseSource)
}

// NewVolumeSMA creates a new SMA of candle volume with the given period.
func NewVolumeSMA(period int) *SMA {
	return newSMA("VolumeMA", period, VolumeSource)
}

func newSMA(name string, period int, src Source) *SMA {
	return &SMA{
		name:   name,
		source: src,
		period: period,
		buf:    make([]float64, period),
	}
}

func (s *SMA) Name() string { return s.name }

func (s *SMA) Update(candle model.Candle) {
	s.Add(s.source(candle))
}

// Add feeds a raw value into the window.
func (s *SMA) Add(v float64) {
	if s.count >= s.period {
		// Subtract the oldest value being overwritten
		s.sum -= s.buf[s.idx]
	}

	s.buf[s.idx] = v
	s.sum += v
	s.idx = (s.idx + 1) % s.period
	s.count++

	if s.count >= s.period {
		s.current = s.sum / float64(s.period)
	}
}

func (s *SMA) Value() float64 { return s.current }
func (s *SMA) Ready() bool    { return s.count >= s.period }

// Reset clears the SMA state for reuse.
func (s *SMA) Reset() {
	s.idx = 0
	s.count = 0
	s.sum = 0
	s.current = 0
	for i := range s.buf {
		s.buf[i] = 0
	}
}
