package indicator

import (
	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// MACD computes the MACD line (fast EMA minus slow EMA, aligned on the slow
// EMA's shorter output window), the signal line (EMA of the MACD line) and
// the histogram. All three returned sequences share the signal line's
// alignment, so index i of each refers to the same input bar.
//
// Returns nil when fast >= slow or when fewer than slow+signalPeriod valid
// bars remain after sanitization.
func MACD(candles []candle.Candle, fast, slow, signalPeriod int) *MACDResult {
	if fast <= 0 || slow <= 0 || signalPeriod <= 0 || fast >= slow {
		return nil
	}
	clean := candle.Sanitize(candles)
	if len(clean) < slow+signalPeriod {
		return nil
	}

	closes := candle.Closes(clean)
	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	// Both series are trailing-aligned; the fast one starts earlier.
	offset := slow - fast
	macdLine := make([]float64, len(slowEMA))
	for i := range slowEMA {
		macdLine[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalLine := emaSeries(macdLine, signalPeriod)
	macdAligned := macdLine[signalPeriod-1:]

	histogram := make([]float64, len(signalLine))
	for i := range signalLine {
		histogram[i] = macdAligned[i] - signalLine[i]
	}

	if !allFinite(macdAligned, signalLine, histogram) {
		return nil
	}

	return &MACDResult{
		MACD:      macdAligned,
		Signal:    signalLine,
		Histogram: histogram,
		Crossover: histogramCrossover(histogram),
	}
}

// histogramCrossover compares the sign of the last two histogram values:
// negative to non-negative is bullish, positive to non-positive is bearish.
func histogramCrossover(histogram []float64) Crossover {
	if len(histogram) < 2 {
		return CrossoverNone
	}
	prev := histogram[len(histogram)-2]
	last := histogram[len(histogram)-1]
	switch {
	case prev < 0 && last >= 0:
		return CrossoverBullish
	case prev > 0 && last <= 0:
		return CrossoverBearish
	default:
		return CrossoverNone
	}
}
