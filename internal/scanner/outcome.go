package scanner

import (
	"sort"
	"time"

	"signal-scanner/internal/model"
)

// SkipReason is the terminal state of one instrument in a cycle.
type SkipReason string

const (
	SkipBookFetch            SkipReason = "book_fetch"
	SkipBookInvalid          SkipReason = "book_invalid"
	SkipSpreadFiltered       SkipReason = "spread_filtered"
	SkipCandleFetch          SkipReason = "candle_fetch"
	SkipCandleParse          SkipReason = "candle_parse"
	SkipInsufficientHistory  SkipReason = "insufficient_history"
	SkipIncompleteIndicators SkipReason = "incomplete_indicators"
	SkipNoSignal             SkipReason = "no_signal"
	Alerted                  SkipReason = "alerted"
)

// Outcome records what happened to one instrument.
type Outcome struct {
	Symbol string
	Reason SkipReason
	Alert  *model.AlertRecord // set when Reason == Alerted
	Err    error              // fetch, parse or gate error, if any
}

// Report summarises a finished cycle.
type Report struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome // in symbol order
	Alerts   []*model.AlertRecord
}

// Counts tallies outcomes per reason.
func (r *Report) Counts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, o := range r.Outcomes {
		counts[o.Reason]++
	}
	return counts
}

// Duration is the wall time of the cycle.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

func sortedReasons(counts map[SkipReason]int) []SkipReason {
	reasons := make([]SkipReason, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}
