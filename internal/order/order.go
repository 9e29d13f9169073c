// Package order
package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mixma5ter/binance-trading-bot/internal/notifier"
	"github.com/mixma5ter/binance-trading-bot/internal/strategy"
)

// Submitter places market orders on an exchange.
type Submitter interface {
	SubmitMarketOrder(ctx context.Context, symbol, side string, quantity decimal.Decimal) error
}

// Request represents a sized market order.
type Request struct {
	Side     string
	Quantity decimal.Decimal
}

// Dispatcher sizes and submits flip orders. Quantity is the absolute
// current position plus the configured order step, so one order both
// closes the existing exposure and opens the step size in the opposite
// direction.
type Dispatcher struct {
	symbol   string
	step     decimal.Decimal
	exchange Submitter
	notifier notifier.Notifier
	log      *zap.SugaredLogger
}

func NewDispatcher(symbol string, step decimal.Decimal, ex Submitter, n notifier.Notifier, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		symbol:   symbol,
		step:     step,
		exchange: ex,
		notifier: n,
		log:      log,
	}
}

// Build computes the order request for the given signal and current
// position amount. The zero Request and false are returned for Hold.
func (d *Dispatcher) Build(sig strategy.Signal, amount float64) (Request, bool) {
	if sig == strategy.Hold {
		return Request{}, false
	}
	quantity := decimal.NewFromFloat(amount).Abs().Add(d.step)
	return Request{Side: sig.String(), Quantity: quantity}, true
}

// Submit places the order for the signal. Exchange failures propagate
// unmodified; there is no dispatcher-level retry. Every executed order
// is announced, regardless of the position notification dedup state.
func (d *Dispatcher) Submit(ctx context.Context, sig strategy.Signal, amount float64) error {
	req, ok := d.Build(sig, amount)
	if !ok {
		return nil
	}

	d.log.Infow("submitting market order", "symbol", d.symbol, "side", req.Side, "quantity", req.Quantity)
	if err := d.exchange.SubmitMarketOrder(ctx, d.symbol, req.Side, req.Quantity); err != nil {
		return err
	}

	msg := fmt.Sprintf("Submitting a market order: %s, size %s", req.Side, req.Quantity)
	if err := d.notifier.SendWithRetry(msg); err != nil {
		// The order went through; a lost announcement must not fail it.
		d.log.Errorw("order notification failed", "error", err)
	}
	return nil
}
