package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixma5ter/binance-trading-bot/internal/apperr"
	"github.com/mixma5ter/binance-trading-bot/internal/logging"
)

func TestNewBinanceExchangeMarketType(t *testing.T) {
	tests := []struct {
		marketType string
		ok         bool
	}{
		{"future", true},
		{"futures", true},
		{"spot", false},
		{"delivery", false},
		{"margin", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("market type "+tt.marketType, func(t *testing.T) {
			ex, err := NewBinanceExchange("key", "secret", tt.marketType, logging.Nop())
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, "binance", ex.Name())
			} else {
				require.ErrorIs(t, err, apperr.ErrConfiguration)
				assert.Nil(t, ex)
			}
		})
	}
}
