// Package position
package position

import (
	"fmt"
	"strconv"

	"github.com/mixma5ter/binance-trading-bot/internal/apperr"
)

// Record is one raw position entry as the exchange reports it. Numeric
// fields stay strings; parsing and validation happen in Ingest.
type Record struct {
	Symbol      string `json:"symbol"`
	PositionAmt string `json:"positionAmt"`
	EntryPrice  string `json:"entryPrice"`
}

// Snapshot is the validated position for the configured symbol.
// Amount is signed: positive long, negative short, zero flat.
type Snapshot struct {
	Symbol     string
	Amount     float64
	EntryPrice float64
}

// Direction returns the display label. A zero amount is labeled SHORT,
// matching the historical notification format.
func (s Snapshot) Direction() string {
	if s.Amount > 0 {
		return "LONG"
	}
	return "SHORT"
}

// Ingest validates the raw exchange response and returns the snapshot
// for symbol. Records for other symbols are discarded. A record with a
// missing field fails with an APIResponseError naming the field; a
// response that is not a record sequence fails with a data error.
func Ingest(records []Record, symbol string) (Snapshot, error) {
	if records == nil {
		return Snapshot{}, apperr.Errorf(apperr.ErrData, "position response is not a list")
	}

	for _, r := range records {
		if r.Symbol == "" {
			return Snapshot{}, apperr.Errorf(apperr.ErrAPIResponse, "missing field symbol in %+v", r)
		}
		if r.Symbol != symbol {
			continue
		}
		if r.PositionAmt == "" {
			return Snapshot{}, apperr.Errorf(apperr.ErrAPIResponse, "missing field positionAmt for %s", r.Symbol)
		}
		if r.EntryPrice == "" {
			return Snapshot{}, apperr.Errorf(apperr.ErrAPIResponse, "missing field entryPrice for %s", r.Symbol)
		}

		amount, err := strconv.ParseFloat(r.PositionAmt, 64)
		if err != nil {
			return Snapshot{}, apperr.Errorf(apperr.ErrAPIResponse, "invalid positionAmt %q for %s", r.PositionAmt, r.Symbol)
		}
		entryPrice, err := strconv.ParseFloat(r.EntryPrice, 64)
		if err != nil {
			return Snapshot{}, apperr.Errorf(apperr.ErrAPIResponse, "invalid entryPrice %q for %s", r.EntryPrice, r.Symbol)
		}

		return Snapshot{Symbol: r.Symbol, Amount: amount, EntryPrice: entryPrice}, nil
	}

	return Snapshot{}, apperr.Errorf(apperr.ErrAPIResponse, "no position record for symbol %s", symbol)
}

// Render formats the snapshot for the notification channel.
func Render(s Snapshot) string {
	return fmt.Sprintf("%s, amount: %s, entry price: %s, direction: %s",
		s.Symbol, trimFloat(s.Amount), trimFloat(s.EntryPrice), s.Direction())
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Tracker owns the previously notified text. It exists purely for
// notification dedup and never feeds trading decisions.
type Tracker struct {
	lastNotified string
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Changed reports whether text differs from the last committed one.
func (t *Tracker) Changed(text string) bool {
	return text != t.lastNotified
}

// Commit stores text as the last notified value. Called only after the
// notification was actually delivered, so a failed send is retried on
// the next cycle.
func (t *Tracker) Commit(text string) {
	t.lastNotified = text
}
