package exchange

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	wallex "github.com/wallexchange/wallex-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mixma5ter/binance-trading-bot/internal/apperr"
	"github.com/mixma5ter/binance-trading-bot/internal/candle"
	"github.com/mixma5ter/binance-trading-bot/internal/position"
	"github.com/mixma5ter/binance-trading-bot/internal/tfutils"
)

// WallexExchange trades spot on Wallex. Spot accounts carry no signed
// position endpoint, so the net amount per symbol is accumulated
// locally from fills submitted through this client; a fresh process
// starts flat.
type WallexExchange struct {
	client  *wallex.Client
	apiKey  string
	limiter *rate.Limiter
	log     *zap.SugaredLogger

	mu  sync.Mutex
	net map[string]decimal.Decimal
}

func NewWallexExchange(apiKey string, log *zap.SugaredLogger) *WallexExchange {
	return &WallexExchange{
		client:  wallex.New(wallex.ClientOptions{APIKey: apiKey}),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		log:     log,
		net:     make(map[string]decimal.Decimal),
	}
}

func (w *WallexExchange) Name() string { return "wallex" }

func (w *WallexExchange) ValidateCredentials() error {
	if w.apiKey == "" {
		return apperr.Errorf(apperr.ErrConfiguration, "missing Wallex API key")
	}
	return nil
}

// FetchPositions reports the locally tracked net amount. Spot fills
// have no common entry price, so it is reported as zero.
func (w *WallexExchange) FetchPositions(_ context.Context, symbol string) ([]position.Record, error) {
	w.mu.Lock()
	amount := w.net[symbol]
	w.mu.Unlock()

	return []position.Record{{
		Symbol:      symbol,
		PositionAmt: amount.String(),
		EntryPrice:  "0",
	}}, nil
}

func (w *WallexExchange) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]candle.Candle, error) {
	duration, err := tfutils.ParseTimeframe(timeframe)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrData, err)
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.Add(-duration * time.Duration(limit))

	var wallexCandles []*wallex.Candle
	err = retry(ctx, w.log, 3, 2*time.Second, func() error {
		var err error
		wallexCandles, err = w.client.Candles(symbol, wallexResolution(timeframe), start, end)
		return err
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrData, err)
	}

	candles := make([]candle.Candle, 0, len(wallexCandles))
	for _, wc := range wallexCandles {
		open, _ := strconv.ParseFloat(string(wc.Open), 64)
		high, _ := strconv.ParseFloat(string(wc.High), 64)
		low, _ := strconv.ParseFloat(string(wc.Low), 64)
		close, _ := strconv.ParseFloat(string(wc.Close), 64)
		volume, _ := strconv.ParseFloat(string(wc.Volume), 64)

		candles = append(candles, candle.Candle{
			Timestamp: wc.Timestamp.UTC(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		})
	}
	return candles, nil
}

func (w *WallexExchange) SubmitMarketOrder(ctx context.Context, symbol, side string, quantity decimal.Decimal) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	params := &wallex.OrderParams{
		Symbol:   symbol,
		Type:     "MARKET",
		Side:     strings.ToUpper(side),
		Quantity: wallex.Number(quantity.String()),
	}
	if _, err := w.client.PlaceOrder(params); err != nil {
		return apperr.Wrap(apperr.ErrExchange, err)
	}

	w.recordFill(symbol, strings.ToUpper(side), quantity)
	return nil
}

func (w *WallexExchange) recordFill(symbol, side string, quantity decimal.Decimal) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if side == "SELL" {
		quantity = quantity.Neg()
	}
	w.net[symbol] = w.net[symbol].Add(quantity)
}

// wallexResolution maps timeframes to Wallex chart resolutions
// (minutes, or D/W for daily and weekly).
func wallexResolution(timeframe string) string {
	switch timeframe {
	case "1d":
		return "D"
	case "1w":
		return "W"
	case "1h":
		return "60"
	case "4h":
		return "240"
	default:
		return strings.TrimSuffix(timeframe, "m")
	}
}
