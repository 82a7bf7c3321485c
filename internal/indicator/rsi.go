package indicator

import (
	"math"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// Classic RSI reading bands.
const (
	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// RSI computes the Wilder-smoothed relative strength index. The first value
// comes from the average gain/loss over the first period deltas; every later
// bar updates both averages with avg = (avg*(period-1) + new) / period.
// Requires period+1 valid bars; output bar i corresponds to input bar
// i+period.
func RSI(candles []candle.Candle, period int) *Result {
	clean := candle.Sanitize(candles)
	if period <= 0 || len(clean) < period+1 {
		return nil
	}

	closes := candle.Closes(clean)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	values := make([]float64, 0, len(closes)-period)
	values = append(values, rsiFrom(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		values = append(values, rsiFrom(avgGain, avgLoss))
	}

	if !allFinite(values) {
		return nil
	}

	current := values[len(values)-1]
	signal := SignalNeutral
	if current < RSIOversold {
		signal = SignalBuy
	} else if current > RSIOverbought {
		signal = SignalSell
	}
	return &Result{
		Values:   values,
		Current:  current,
		Signal:   signal,
		Strength: clampStrength(math.Abs(current-50) * 2),
	}
}

// rsiFrom turns the smoothed averages into an RSI value. Zero average loss
// means pure gains (RSI 100) unless gains are also zero, in which case the
// series is flat and the reading is neutral by definition.
func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
