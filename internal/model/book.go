package model

import (
	"fmt"
	"time"
)

// BookTop is the best bid/ask of an instrument's order book.
type BookTop struct {
	Symbol string    `json:"symbol"`
	Bid    float64   `json:"bid"`
	Ask    float64   `json:"ask"`
	TS     time.Time `json:"ts"`
}

// SpreadPct returns the bid/ask gap as a percentage of the ask.
func (b BookTop) SpreadPct() float64 {
	return (b.Ask - b.Bid) / b.Ask * 100
}

// Valid reports whether both sides are positive and the book is not crossed.
func (b BookTop) Valid() error {
	if b.Ask <= 0 || b.Bid <= 0 {
		return fmt.Errorf("book %s: empty side (bid=%v ask=%v)", b.Symbol, b.Bid, b.Ask)
	}
	if b.Bid > b.Ask {
		return fmt.Errorf("book %s: crossed (bid=%v > ask=%v)", b.Symbol, b.Bid, b.Ask)
	}
	return nil
}
