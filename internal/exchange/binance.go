package exchange

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mixma5ter/binance-trading-bot/internal/apperr"
	"github.com/mixma5ter/binance-trading-bot/internal/candle"
	"github.com/mixma5ter/binance-trading-bot/internal/position"
)

// BinanceExchange talks to Binance USD-M futures.
type BinanceExchange struct {
	client  *futures.Client
	apiKey  string
	secret  string
	limiter *rate.Limiter
	log     *zap.SugaredLogger
}

// NewBinanceExchange builds a USD-M futures client. Position
// monitoring needs a signed position, so only the futures market
// types are accepted.
func NewBinanceExchange(apiKey, secret, marketType string, log *zap.SugaredLogger) (*BinanceExchange, error) {
	switch marketType {
	case "future", "futures":
	default:
		return nil, apperr.Errorf(apperr.ErrConfiguration,
			"unsupported Binance market type %q, expected \"future\"", marketType)
	}
	return &BinanceExchange{
		client:  futures.NewClient(apiKey, secret),
		apiKey:  apiKey,
		secret:  secret,
		// Binance allows far more, but the loop only needs a few calls
		// per cycle; pacing keeps a misconfigured interval from
		// hammering the API.
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		log:     log,
	}, nil
}

func (b *BinanceExchange) Name() string { return "binance" }

func (b *BinanceExchange) ValidateCredentials() error {
	if b.apiKey == "" || b.secret == "" {
		return apperr.Errorf(apperr.ErrConfiguration, "missing Binance API credentials")
	}
	return nil
}

func (b *BinanceExchange) FetchPositions(ctx context.Context, symbol string) ([]position.Record, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	risks, err := b.client.NewGetPositionRiskService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrExchange, err)
	}

	records := make([]position.Record, 0, len(risks))
	for _, r := range risks {
		records = append(records, position.Record{
			Symbol:      r.Symbol,
			PositionAmt: r.PositionAmt,
			EntryPrice:  r.EntryPrice,
		})
	}
	return records, nil
}

func (b *BinanceExchange) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]candle.Candle, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var klines []*futures.Kline
	err := retry(ctx, b.log, 3, 2*time.Second, func() error {
		var err error
		klines, err = b.client.NewKlinesService().
			Symbol(symbol).
			Interval(timeframe).
			Limit(limit).
			Do(ctx)
		return err
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrData, err)
	}

	candles := make([]candle.Candle, 0, len(klines))
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		close, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		candles = append(candles, candle.Candle{
			Timestamp: time.UnixMilli(k.OpenTime).UTC(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		})
	}
	return candles, nil
}

func (b *BinanceExchange) SubmitMarketOrder(ctx context.Context, symbol, side string, quantity decimal.Decimal) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(futures.SideType(side)).
		Type(futures.OrderTypeMarket).
		Quantity(quantity.String()).
		Do(ctx)
	if err != nil {
		return apperr.Wrap(apperr.ErrExchange, err)
	}
	return nil
}
