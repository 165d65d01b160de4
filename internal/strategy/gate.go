// Package strategy decides whether a computed indicator set is usable and
// whether it describes a long-side opportunity.
//
// Validate is the validity gate: it runs before any rule and rejects
// series that are too short or whose latest indicators are incomplete.
// Evaluate applies the opportunity rule to the latest snapshot.
package strategy

import (
	"fmt"
	"strings"

	"signal-scanner/internal/indicator"
	"signal-scanner/internal/model"
)

// Reject reasons reported by Validate.
const (
	ReasonInsufficientHistory  = "insufficient_history"
	ReasonIncompleteIndicators = "incomplete_indicators"
)

// RejectError explains why a result did not pass the validity gate.
// Rejection is a normal outcome for an instrument, not a failure.
type RejectError struct {
	Symbol string
	Reason string
	Detail string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s rejected: %s (%s)", e.Symbol, e.Reason, e.Detail)
}

// Validate checks that res holds at least model.MinHistory candles and that
// every decision input is defined at the latest index.
func Validate(res *indicator.Result) error {
	symbol := res.Series.Symbol
	if n := res.Len(); n < model.MinHistory {
		return &RejectError{
			Symbol: symbol,
			Reason: ReasonInsufficientHistory,
			Detail: fmt.Sprintf("%d candles, need %d", n, model.MinHistory),
		}
	}
	if missing := res.Latest().MissingFields(); len(missing) > 0 {
		return &RejectError{
			Symbol: symbol,
			Reason: ReasonIncompleteIndicators,
			Detail: "missing " + strings.Join(missing, ","),
		}
	}
	return nil
}

// Accept is the predicate form of Validate.
func Accept(res *indicator.Result) bool {
	return Validate(res) == nil
}
