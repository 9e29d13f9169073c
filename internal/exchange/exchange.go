// Package exchange
package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mixma5ter/binance-trading-bot/internal/candle"
	"github.com/mixma5ter/binance-trading-bot/internal/position"
)

// Exchange is the interface for all supported exchanges.
type Exchange interface {
	Name() string

	// ValidateCredentials checks that all credentials required by the
	// venue are present. It does not call the network; a bad key
	// surfaces on the first authenticated request.
	ValidateCredentials() error

	// FetchPositions returns the raw position records for symbol.
	FetchPositions(ctx context.Context, symbol string) ([]position.Record, error)

	// FetchCandles returns the most recent OHLCV bars, chronological,
	// including the currently forming one as the last element.
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]candle.Candle, error)

	// SubmitMarketOrder places a market order of the given side
	// ("BUY" or "SELL") and quantity.
	SubmitMarketOrder(ctx context.Context, symbol, side string, quantity decimal.Decimal) error
}
