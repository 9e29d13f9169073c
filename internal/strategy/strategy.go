// Package strategy
package strategy

import (
	"github.com/mixma5ter/binance-trading-bot/internal/apperr"
)

type Signal int8

const (
	Hold Signal = 0
	Buy  Signal = 1
	Sell Signal = -1
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Evaluator turns the last two RSI samples plus the current exposure
// into a trade signal.
type Evaluator struct {
	Lower float64
	Upper float64
}

func NewEvaluator(lower, upper float64) Evaluator {
	return Evaluator{Lower: lower, Upper: upper}
}

// Decide detects a threshold crossing between the previous and current
// RSI values. Buy fires on an upward cross of the lower threshold when
// not already long; Sell fires on a downward cross of the upper
// threshold when not already short. A flat position satisfies both
// exposure guards, so either side can trigger from flat. Buy is checked
// before Sell to keep the historical tie-break order.
func (e Evaluator) Decide(rsi []float64, amount float64) (Signal, error) {
	if len(rsi) < 2 {
		return Hold, apperr.Errorf(apperr.ErrIndicatorData,
			"need at least 2 indicator values to detect a crossing, got %d", len(rsi))
	}

	cur := rsi[len(rsi)-1]
	prev := rsi[len(rsi)-2]

	buy := cur > e.Lower && e.Lower >= prev
	sell := cur < e.Upper && e.Upper <= prev

	if buy && amount <= 0 {
		return Buy, nil
	}
	if sell && amount >= 0 {
		return Sell, nil
	}
	return Hold, nil
}
