// Package candle defines the OHLCV bar type shared by every analysis
// component, plus series sanitization and timeframe aggregation.
package candle

import "math"

// Candle is one time-bucketed price/volume observation. Series are ordered
// oldest first; every recurrence in the engine depends on that order.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Valid reports whether the bar carries usable data: finite, strictly
// positive prices and a finite, non-negative volume. Bars decoded from null
// JSON entries have zero prices and fail this check.
func (c Candle) Valid() bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	if math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) || c.Volume < 0 {
		return false
	}
	return true
}

// Sanitize returns a copy of the series with invalid bars dropped. Order is
// preserved. Every indicator calls this before computing so that NaN,
// Infinity or null entries never propagate into a result.
func Sanitize(candles []Candle) []Candle {
	out := make([]Candle, 0, len(candles))
	for _, c := range candles {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// Closes extracts the close series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts the volume series.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
