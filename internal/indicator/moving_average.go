package indicator

import (
	"math"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// Price-versus-average thresholds for the moving average signals. The EMA
// reacts faster, so it signals on a tighter band.
const (
	smaSignalThreshold = 0.01  // 1.0%
	emaSignalThreshold = 0.005 // 0.5%

	// maStrengthScale maps percentage deviation to a 0-100 strength:
	// 5% away from the average saturates at 100.
	maStrengthScale = 20
)

// SMA computes the simple moving average. Requires at least period valid
// bars; the output is aligned to the trailing sub-window of the input.
func SMA(candles []candle.Candle, period int) *Result {
	clean := candle.Sanitize(candles)
	if period <= 0 || len(clean) < period {
		return nil
	}

	values := smaSeries(candle.Closes(clean), period)
	if !allFinite(values) {
		return nil
	}

	current := values[len(values)-1]
	price := clean[len(clean)-1].Close
	signal, strength := maSignal(price, current, smaSignalThreshold)
	return &Result{Values: values, Current: current, Signal: signal, Strength: strength}
}

// EMA computes the exponential moving average, seeded with the SMA of the
// first period bars and then applying the standard recurrence with
// multiplier 2/(period+1).
func EMA(candles []candle.Candle, period int) *Result {
	clean := candle.Sanitize(candles)
	if period <= 0 || len(clean) < period {
		return nil
	}

	values := emaSeries(candle.Closes(clean), period)
	if !allFinite(values) {
		return nil
	}

	current := values[len(values)-1]
	price := clean[len(clean)-1].Close
	signal, strength := maSignal(price, current, emaSignalThreshold)
	return &Result{Values: values, Current: current, Signal: signal, Strength: strength}
}

func maSignal(price, average, threshold float64) (Signal, float64) {
	if average == 0 {
		return SignalNeutral, 0
	}
	deviation := (price - average) / average
	strength := clampStrength(math.Abs(deviation) * 100 * maStrengthScale)
	switch {
	case deviation > threshold:
		return SignalBuy, strength
	case deviation < -threshold:
		return SignalSell, strength
	default:
		return SignalNeutral, strength
	}
}

// smaSeries returns one mean per trailing window; output index i covers
// input bars [i, i+period).
func smaSeries(values []float64, period int) []float64 {
	out := make([]float64, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// emaSeries seeds with the SMA of the first period values, then applies
// ema = (x - prev)*k + prev. Output index i corresponds to input bar
// i+period-1, same alignment as smaSeries.
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, 0, len(values)-period+1)

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out = append(out, seed)

	k := 2.0 / float64(period+1)
	prev := seed
	for _, v := range values[period:] {
		prev = (v-prev)*k + prev
		out = append(out, prev)
	}
	return out
}
