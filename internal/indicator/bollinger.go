package indicator

import (
	"math"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// Band-position fractions: a close in the bottom 20% of the band range reads
// as a buy, in the top 20% as a sell.
const (
	bollingerBuyZone  = 0.2
	bollingerSellZone = 0.8
)

// BollingerBands computes the rolling SMA plus/minus k population standard
// deviations over each trailing window. Bandwidth is the percentage spread
// of the latest window relative to its middle band.
func BollingerBands(candles []candle.Candle, period int, k float64) *BollingerResult {
	clean := candle.Sanitize(candles)
	if period <= 0 || k <= 0 || len(clean) < period {
		return nil
	}

	closes := candle.Closes(clean)
	middle := smaSeries(closes, period)

	upper := make([]float64, len(middle))
	lower := make([]float64, len(middle))
	for i := range middle {
		window := closes[i : i+period]
		variance := 0.0
		for _, v := range window {
			diff := v - middle[i]
			variance += diff * diff
		}
		stddev := math.Sqrt(variance / float64(period))
		upper[i] = middle[i] + k*stddev
		lower[i] = middle[i] - k*stddev
	}

	if !allFinite(upper, middle, lower) {
		return nil
	}

	last := len(middle) - 1
	bandwidth := 0.0
	if middle[last] != 0 {
		bandwidth = (upper[last] - lower[last]) / middle[last] * 100
	}

	return &BollingerResult{
		Upper:     upper,
		Middle:    middle,
		Lower:     lower,
		Bandwidth: bandwidth,
		Signal:    bandSignal(clean[len(clean)-1].Close, upper[last], lower[last]),
	}
}

// bandSignal places the close inside the band range. Degenerate bands
// (zero width) read neutral.
func bandSignal(price, upper, lower float64) Signal {
	if upper <= lower {
		return SignalNeutral
	}
	position := (price - lower) / (upper - lower)
	switch {
	case position <= bollingerBuyZone:
		return SignalBuy
	case position >= bollingerSellZone:
		return SignalSell
	default:
		return SignalNeutral
	}
}
