// Package indicator
package indicator

import (
	"math"

	"github.com/mixma5ter/binance-trading-bot/internal/apperr"
)

// CalculateRSI computes the Wilder RSI over the given closing prices.
// The result holds one value per close starting at index period, i.e.
// len(result) == len(prices) - period; closes without a full smoothing
// window produce no output. Values are rounded to 2 decimal places.
func CalculateRSI(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, apperr.Errorf(apperr.ErrIndicatorData, "period must be positive, got %d", period)
	}
	if len(prices) < period+1 {
		return nil, apperr.Errorf(apperr.ErrIndicatorData,
			"need at least %d closes for period %d, got %d", period+1, period, len(prices))
	}
	for i, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, apperr.Errorf(apperr.ErrIndicatorData, "close at index %d is not a finite number", i)
		}
	}

	rsi := make([]float64, 0, len(prices)-period)

	var gain, loss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gain += change
		} else {
			loss += -change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	rsi = append(rsi, round2(rsiValue(avgGain, avgLoss)))

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gain = change
			loss = 0
		} else {
			gain = 0
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		rsi = append(rsi, round2(rsiValue(avgGain, avgLoss)))
	}

	return rsi, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
