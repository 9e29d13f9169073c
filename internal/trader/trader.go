// Package trader
package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mixma5ter/binance-trading-bot/internal/apperr"
	"github.com/mixma5ter/binance-trading-bot/internal/candle"
	"github.com/mixma5ter/binance-trading-bot/internal/config"
	"github.com/mixma5ter/binance-trading-bot/internal/exchange"
	"github.com/mixma5ter/binance-trading-bot/internal/indicator"
	"github.com/mixma5ter/binance-trading-bot/internal/notifier"
	"github.com/mixma5ter/binance-trading-bot/internal/order"
	"github.com/mixma5ter/binance-trading-bot/internal/position"
	"github.com/mixma5ter/binance-trading-bot/internal/strategy"
)

// Trader drives the monitoring loop: fetch position, notify changes,
// fetch candles, compute RSI, evaluate the signal, dispatch an order,
// sleep, repeat. It is the sole owner and mutator of all cycle state,
// runs in one goroutine, and isolates failures per stage so one
// stage's failure never corrupts the next.
type Trader struct {
	cfg        config.Config
	exchange   exchange.Exchange
	notifier   notifier.Notifier
	tracker    *position.Tracker
	evaluator  strategy.Evaluator
	dispatcher *order.Dispatcher
	log        *zap.SugaredLogger

	// Last successfully ingested position amount. Trading may continue
	// on a stale amount when a position stage fails, but never before
	// the first successful ingest.
	amount    float64
	hasAmount bool

	// Dedup slot for price/indicator stage error reports, separate
	// from the position text dedup owned by the tracker.
	lastErrorText string
}

func New(cfg config.Config, ex exchange.Exchange, n notifier.Notifier, log *zap.SugaredLogger) *Trader {
	return &Trader{
		cfg:        cfg,
		exchange:   ex,
		notifier:   n,
		tracker:    position.NewTracker(),
		evaluator:  strategy.NewEvaluator(cfg.RSILower, cfg.RSIUpper),
		dispatcher: order.NewDispatcher(cfg.Symbol, decimal.NewFromFloat(cfg.OrderStep), ex, n, log),
		log:        log,
	}
}

// Run executes cycles until ctx is cancelled. The poll interval is
// appended after each cycle completes; a long cycle is not subtracted
// from the sleep.
func (t *Trader) Run(ctx context.Context) error {
	t.log.Infow("starting trading loop",
		"exchange", t.exchange.Name(),
		"symbol", t.cfg.Symbol,
		"timeframe", t.cfg.Timeframe,
		"interval", t.cfg.PollInterval,
	)

	for {
		t.cycle(ctx)

		select {
		case <-ctx.Done():
			t.log.Infow("trading loop stopped")
			return ctx.Err()
		case <-time.After(t.cfg.PollInterval):
		}
	}
}

// cycle runs one full iteration. Every stage failure is handled here;
// nothing escapes to Run.
func (t *Trader) cycle(ctx context.Context) {
	text := t.observePosition(ctx)
	t.notifyPosition(text)

	if !t.hasAmount {
		// Startup case: no position amount was ever obtained, nothing
		// to trade against. Skip straight to sleep.
		t.log.Warnw("no known position amount yet, skipping cycle")
		return
	}

	rsi, ok := t.computeIndicator(ctx)
	if !ok {
		return
	}

	sig, err := t.evaluator.Decide(rsi, t.amount)
	if err != nil {
		t.log.Errorw("signal evaluation failed", "error", err)
		t.reportStageError(err)
		return
	}
	t.log.Infow("signal evaluated", "signal", sig.String(), "rsi", rsi[len(rsi)-1], "amount", t.amount)

	if sig == strategy.Hold {
		return
	}

	if err := t.dispatcher.Submit(ctx, sig, t.amount); err != nil {
		// An unattended process must outlive a rejected order: log,
		// tell the operator, keep looping.
		t.log.Errorw("order submission failed", "signal", sig.String(), "error", err)
		if nerr := t.notifier.SendWithRetry(fmt.Sprintf("Order submission failed: %v", err)); nerr != nil {
			t.log.Errorw("order failure notification failed", "error", nerr)
		}
	}
}

// observePosition fetches and ingests the position, returning the text
// for the notification stage. On failure the error message becomes the
// cycle's text, the previous amount stays in effect, and the loop
// continues.
func (t *Trader) observePosition(ctx context.Context) string {
	t.log.Infow("requesting position", "symbol", t.cfg.Symbol)

	records, err := t.exchange.FetchPositions(ctx, t.cfg.Symbol)
	if err != nil {
		t.log.Errorw("position fetch failed", "error", err)
		return fmt.Sprintf("Program crash: %v", err)
	}

	snapshot, err := position.Ingest(records, t.cfg.Symbol)
	if err != nil {
		t.log.Errorw("position response check failed", "error", err)
		return fmt.Sprintf("Program crash: %v", err)
	}

	t.amount = snapshot.Amount
	t.hasAmount = true
	return position.Render(snapshot)
}

// notifyPosition sends text to the operator unless it matches the last
// delivered one. The dedup slot is committed only after a successful
// send, so a failed delivery is retried next cycle.
func (t *Trader) notifyPosition(text string) {
	if !t.tracker.Changed(text) {
		t.log.Debugw("no position updates", "symbol", t.cfg.Symbol)
		return
	}
	if err := t.notifier.Send(text); err != nil {
		// Notification failure must never interrupt trading logic.
		t.log.Errorw("position notification failed", "error", err)
		return
	}
	t.tracker.Commit(text)
}

// computeIndicator fetches candles, drops the forming bar and computes
// the RSI series. A failure aborts the remainder of the cycle: no
// order can be evaluated without fresh data.
func (t *Trader) computeIndicator(ctx context.Context) ([]float64, bool) {
	t.log.Infow("requesting candles", "symbol", t.cfg.Symbol, "timeframe", t.cfg.Timeframe, "limit", t.cfg.CandleLimit)

	candles, err := t.exchange.FetchCandles(ctx, t.cfg.Symbol, t.cfg.Timeframe, t.cfg.CandleLimit)
	if err != nil {
		t.log.Errorw("candle fetch failed", "error", err)
		t.reportStageError(err)
		return nil, false
	}

	closed := candle.TrimForming(candles)
	if err := candle.ValidateSeries(closed); err != nil {
		err = apperr.Wrap(apperr.ErrData, err)
		t.log.Errorw("candle validation failed", "error", err)
		t.reportStageError(err)
		return nil, false
	}

	rsi, err := indicator.CalculateRSI(candle.Closes(closed), t.cfg.RSIPeriod)
	if err != nil {
		t.log.Errorw("indicator computation failed", "error", err)
		t.reportStageError(err)
		return nil, false
	}

	// A healthy pass clears the suppression slot so the next outage is
	// reported even when its message repeats a past one.
	t.lastErrorText = ""
	return rsi, true
}

// reportStageError forwards a per-cycle error to the operator once.
// Consecutive identical errors are suppressed so a flapping exchange
// does not flood the channel every poll interval.
func (t *Trader) reportStageError(err error) {
	text := fmt.Sprintf("Program crash: %v", err)
	if text == t.lastErrorText {
		return
	}
	if nerr := t.notifier.Send(text); nerr != nil {
		t.log.Errorw("error notification failed", "error", nerr)
		return
	}
	t.lastErrorText = text
}
