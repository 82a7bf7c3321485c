package indicator

import (
	"math"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// ATR computes the average true range: true range is the greatest of
// high-low, |high-prevClose| and |low-prevClose|; the first ATR is a simple
// average of the first period true ranges and later values use Wilder
// smoothing. Requires period+1 valid bars. ATR carries no directional
// signal, so the result always reads neutral.
func ATR(candles []candle.Candle, period int) *Result {
	clean := candle.Sanitize(candles)
	if period <= 0 || len(clean) < period+1 {
		return nil
	}

	trueRanges := make([]float64, len(clean)-1)
	for i := 1; i < len(clean); i++ {
		high := clean[i].High
		low := clean[i].Low
		prevClose := clean[i-1].Close
		trueRanges[i-1] = math.Max(high-low,
			math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
	}

	seed := 0.0
	for _, tr := range trueRanges[:period] {
		seed += tr
	}
	seed /= float64(period)

	values := make([]float64, 0, len(trueRanges)-period+1)
	values = append(values, seed)
	atr := seed
	for _, tr := range trueRanges[period:] {
		atr = (atr*float64(period-1) + tr) / float64(period)
		values = append(values, atr)
	}

	if !allFinite(values) {
		return nil
	}

	return &Result{
		Values:  values,
		Current: values[len(values)-1],
		Signal:  SignalNeutral,
	}
}
