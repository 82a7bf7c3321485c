package scoring

import (
	"math"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// Candle-anatomy thresholds for the single-bar patterns. The detection is a
// deliberate last-bar-only approximation, not swing-point analysis.
const (
	hammerWickBodyRatio  = 2.0 // lower wick at least twice the body
	hammerUpperWickLimit = 0.3 // upper wick at most 30% of the body
	marubozuBodyFraction = 0.8 // body at least 80% of the full range
)

func bodySize(c candle.Candle) float64 {
	return math.Abs(c.Close - c.Open)
}

func upperWick(c candle.Candle) float64 {
	return c.High - math.Max(c.Open, c.Close)
}

func lowerWick(c candle.Candle) float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

// isHammer checks for a long lower wick, a small body and a small upper
// wick on a single bar.
func isHammer(c candle.Candle) bool {
	body := bodySize(c)
	if body == 0 {
		return false
	}
	return lowerWick(c) >= body*hammerWickBodyRatio &&
		upperWick(c) <= body*hammerUpperWickLimit
}

// isBullishMarubozu checks for an up bar whose body dominates the range.
func isBullishMarubozu(c candle.Candle) bool {
	barRange := c.High - c.Low
	if barRange == 0 || c.Close <= c.Open {
		return false
	}
	return bodySize(c) >= barRange*marubozuBodyFraction
}
