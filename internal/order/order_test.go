package order

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixma5ter/binance-trading-bot/internal/logging"
	"github.com/mixma5ter/binance-trading-bot/internal/strategy"
)

type fakeSubmitter struct {
	err      error
	symbol   string
	side     string
	quantity decimal.Decimal
	calls    int
}

func (f *fakeSubmitter) SubmitMarketOrder(_ context.Context, symbol, side string, quantity decimal.Decimal) error {
	f.calls++
	f.symbol = symbol
	f.side = side
	f.quantity = quantity
	return f.err
}

type fakeNotifier struct {
	err      error
	messages []string
}

func (f *fakeNotifier) Send(msg string) error          { f.messages = append(f.messages, msg); return f.err }
func (f *fakeNotifier) SendWithRetry(msg string) error { return f.Send(msg) }

func newDispatcher(step float64, ex *fakeSubmitter, n *fakeNotifier) *Dispatcher {
	return NewDispatcher("BTCUSDT", decimal.NewFromFloat(step), ex, n, logging.Nop())
}

func TestBuildSizing(t *testing.T) {
	tests := []struct {
		name    string
		signal  strategy.Signal
		amount  float64
		step    float64
		wantQty string
		wantOK  bool
	}{
		{
			name:    "flip a short into a long",
			signal:  strategy.Buy,
			amount:  -0.01,
			step:    0.001,
			wantQty: "0.011",
			wantOK:  true,
		},
		{
			name:    "flip a long into a short",
			signal:  strategy.Sell,
			amount:  0.25,
			step:    0.001,
			wantQty: "0.251",
			wantOK:  true,
		},
		{
			name:    "flat opens the step size",
			signal:  strategy.Buy,
			amount:  0,
			step:    0.001,
			wantQty: "0.001",
			wantOK:  true,
		},
		{
			name:   "hold builds nothing",
			signal: strategy.Hold,
			amount: 1,
			step:   0.001,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(tt.step, &fakeSubmitter{}, &fakeNotifier{})
			req, ok := d.Build(tt.signal, tt.amount)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.signal.String(), req.Side)
			assert.Equal(t, tt.wantQty, req.Quantity.String(), "quantity must be exact, no float dust")
		})
	}
}

func TestSubmitAnnouncesOrder(t *testing.T) {
	ex := &fakeSubmitter{}
	n := &fakeNotifier{}
	d := newDispatcher(0.001, ex, n)

	err := d.Submit(context.Background(), strategy.Buy, -0.01)
	require.NoError(t, err)

	assert.Equal(t, 1, ex.calls)
	assert.Equal(t, "BTCUSDT", ex.symbol)
	assert.Equal(t, "BUY", ex.side)
	assert.Equal(t, "0.011", ex.quantity.String())

	require.Len(t, n.messages, 1)
	assert.Equal(t, "Submitting a market order: BUY, size 0.011", n.messages[0])
}

func TestSubmitHoldIsNoop(t *testing.T) {
	ex := &fakeSubmitter{}
	n := &fakeNotifier{}
	d := newDispatcher(0.001, ex, n)

	require.NoError(t, d.Submit(context.Background(), strategy.Hold, 1))
	assert.Zero(t, ex.calls)
	assert.Empty(t, n.messages)
}

func TestSubmitPropagatesExchangeError(t *testing.T) {
	wantErr := errors.New("insufficient margin")
	ex := &fakeSubmitter{err: wantErr}
	n := &fakeNotifier{}
	d := newDispatcher(0.001, ex, n)

	err := d.Submit(context.Background(), strategy.Sell, 0.5)
	assert.ErrorIs(t, err, wantErr, "exchange errors propagate unmodified")
	assert.Empty(t, n.messages, "a rejected order is not announced")
}

func TestSubmitSurvivesNotifierFailure(t *testing.T) {
	ex := &fakeSubmitter{}
	n := &fakeNotifier{err: errors.New("telegram down")}
	d := newDispatcher(0.001, ex, n)

	err := d.Submit(context.Background(), strategy.Buy, 0)
	assert.NoError(t, err, "a lost announcement must not fail an executed order")
	assert.Equal(t, 1, ex.calls)
}
