package scoring

import (
	"fmt"
	"strings"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/indicator"
)

// Trend factor points.
const (
	trendPriceAboveEMA20   = 10.0
	trendPriceAboveEMA50   = 8.0
	trendEMA20AboveEMA50   = 9.0
	trendFreshCrossover    = 8.0
	trendCrossoverLookback = 5
)

// Momentum factor points. RSI bands and the acceleration/divergence bonuses.
const (
	momentumOversoldBounce  = 10.0 // RSI in [30,45): room to run off the lows
	momentumHealthyRising   = 8.0  // RSI in [45,60)
	momentumOverboughtEarly = 5.0  // RSI in [60,70)
	momentumExtreme         = 2.0  // RSI >= 70 or < 30
	momentumAcceleration    = 7.0
	momentumDivergence      = 8.0
	divergenceLookback      = 10
)

// MACD factor points.
const (
	macdFreshCrossover    = 10.0
	macdStaleCrossover    = 6.0
	macdFreshWindow       = 3
	macdStaleWindow       = 8
	macdHistStrengthening = 5.0
	macdLineAboveZero     = 5.0
)

// Volume factor points: the spike reward is progressive, not binary.
const (
	volumeSpikeHuge    = 8.0 // ratio >= 2.5
	volumeSpikeStrong  = 6.0 // ratio >= 2.0
	volumeSpikeNotable = 4.0 // ratio >= 1.5
	volumeSpikeMild    = 2.0 // ratio >= 1.2
	volumeAccumulation = 7.0
	accumulationWindow = 5
)

// Support/resistance factor points.
const (
	srNearSupport       = 5.0
	srSupportProximity  = 0.03 // within 3% of the 20-bar low
	srFreshHighOnVolume = 5.0
	srLookback          = 20
)

// Pattern factor points (most recent bar only).
const (
	patternHammer   = 5.0
	patternMarubozu = 4.0
)

// Alignment factor points from the higher-granularity series.
const (
	alignmentFull    = 5.0
	alignmentPartial = 2.0
)

func scoreTrend(candles []candle.Candle) FactorScore {
	ema20 := indicator.EMA(candles, 20)
	ema50 := indicator.EMA(candles, 50)
	if ema20 == nil || ema50 == nil {
		return emptyFactor(TrendMax)
	}

	price := candles[len(candles)-1].Close
	score := 0.0
	var notes []string

	if price > ema20.Current {
		score += trendPriceAboveEMA20
		notes = append(notes, "price above EMA20")
	}
	if price > ema50.Current {
		score += trendPriceAboveEMA50
		notes = append(notes, "price above EMA50")
	}
	if ema20.Current > ema50.Current {
		score += trendEMA20AboveEMA50
		notes = append(notes, "EMA20 above EMA50")
	}
	if bars, ok := barsSinceBullishCross(ema20.Values, ema50.Values); ok && bars < trendCrossoverLookback {
		score += trendFreshCrossover
		notes = append(notes, fmt.Sprintf("bullish EMA crossover %d bars ago", bars))
	}

	return factorScore(score, TrendMax, joinNotes(notes, "no bullish trend structure"))
}

// barsSinceBullishCross walks the trailing-aligned EMA series backwards and
// reports how many bars ago the short average last crossed above the long
// one. Both series end on the same bar; the shorter one starts later.
func barsSinceBullishCross(short, long []float64) (int, bool) {
	n := len(short)
	if len(long) < n {
		n = len(long)
	}
	if n < 2 {
		return 0, false
	}
	s := short[len(short)-n:]
	l := long[len(long)-n:]
	for back := 0; back < n-1; back++ {
		i := n - 1 - back
		if s[i] > l[i] && s[i-1] <= l[i-1] {
			return back, true
		}
	}
	return 0, false
}

func scoreMomentum(candles []candle.Candle) FactorScore {
	rsi := indicator.RSI(candles, indicator.DefaultRSIPeriod)
	if rsi == nil {
		return emptyFactor(MomentumMax)
	}

	score := 0.0
	var notes []string

	current := rsi.Current
	switch {
	case current >= 30 && current < 45:
		score += momentumOversoldBounce
		notes = append(notes, "RSI rebounding from oversold")
	case current >= 45 && current < 60:
		score += momentumHealthyRising
		notes = append(notes, "RSI in healthy range")
	case current >= 60 && current < 70:
		score += momentumOverboughtEarly
		notes = append(notes, "RSI approaching overbought")
	default:
		score += momentumExtreme
		notes = append(notes, "RSI at an extreme")
	}

	if n := len(rsi.Values); n >= 3 &&
		rsi.Values[n-1] > rsi.Values[n-2] && rsi.Values[n-2] > rsi.Values[n-3] {
		score += momentumAcceleration
		notes = append(notes, "RSI accelerating")
	}

	// Simplified bullish divergence: price down over the lookback while RSI
	// is up. Fixed 10-bar window, deliberately not swing-point detection.
	if n := len(rsi.Values); n > divergenceLookback && len(candles) > divergenceLookback {
		priceChange := candles[len(candles)-1].Close - candles[len(candles)-1-divergenceLookback].Close
		rsiChange := rsi.Values[n-1] - rsi.Values[n-1-divergenceLookback]
		if priceChange < 0 && rsiChange > 0 {
			score += momentumDivergence
			notes = append(notes, "bullish RSI divergence")
		}
	}

	return factorScore(score, MomentumMax, joinNotes(notes, "no momentum"))
}

func scoreMACDFactor(candles []candle.Candle) FactorScore {
	macd := indicator.MACD(candles, indicator.DefaultMACDFast, indicator.DefaultMACDSlow, indicator.DefaultMACDSignal)
	if macd == nil {
		return emptyFactor(MACDMax)
	}

	score := 0.0
	var notes []string

	if bars, ok := barsSinceHistogramFlip(macd.Histogram); ok {
		if bars < macdFreshWindow {
			score += macdFreshCrossover
			notes = append(notes, fmt.Sprintf("bullish crossover %d bars ago", bars))
		} else if bars < macdStaleWindow {
			score += macdStaleCrossover
			notes = append(notes, fmt.Sprintf("bullish crossover %d bars ago (stale)", bars))
		}
	}

	h := macd.Histogram
	if len(h) >= 2 && h[len(h)-1] > 0 && h[len(h)-1] > h[len(h)-2] {
		score += macdHistStrengthening
		notes = append(notes, "histogram strengthening")
	}
	if macd.MACD[len(macd.MACD)-1] > 0 {
		score += macdLineAboveZero
		notes = append(notes, "MACD above zero")
	}

	return factorScore(score, MACDMax, joinNotes(notes, "no MACD confirmation"))
}

// barsSinceHistogramFlip finds the most recent negative-to-non-negative
// histogram sign change and returns how many bars ago it happened.
func barsSinceHistogramFlip(histogram []float64) (int, bool) {
	for back := 0; back < len(histogram)-1; back++ {
		i := len(histogram) - 1 - back
		if histogram[i-1] < 0 && histogram[i] >= 0 {
			return back, true
		}
	}
	return 0, false
}

func scoreVolume(candles []candle.Candle) FactorScore {
	vol := indicator.AnalyzeVolume(candles, indicator.DefaultVolumePeriod, indicator.DefaultSpikeThreshold)
	if vol == nil {
		return emptyFactor(VolumeMax)
	}

	score := 0.0
	var notes []string

	switch {
	case vol.Ratio >= 2.5:
		score += volumeSpikeHuge
		notes = append(notes, fmt.Sprintf("volume %.1fx average", vol.Ratio))
	case vol.Ratio >= 2.0:
		score += volumeSpikeStrong
		notes = append(notes, fmt.Sprintf("volume %.1fx average", vol.Ratio))
	case vol.Ratio >= indicator.DefaultSpikeThreshold:
		score += volumeSpikeNotable
		notes = append(notes, fmt.Sprintf("volume %.1fx average", vol.Ratio))
	case vol.Ratio >= 1.2:
		score += volumeSpikeMild
		notes = append(notes, "volume above average")
	}

	if len(candles) >= accumulationWindow {
		up, down := 0, 0
		for _, c := range candles[len(candles)-accumulationWindow:] {
			if c.Close > c.Open {
				up++
			} else if c.Close < c.Open {
				down++
			}
		}
		if up > down {
			score += volumeAccumulation
			notes = append(notes, fmt.Sprintf("%d of %d recent sessions up", up, accumulationWindow))
		}
	}

	return factorScore(score, VolumeMax, joinNotes(notes, "no volume interest"))
}

func scoreSupportResistance(candles []candle.Candle) FactorScore {
	if len(candles) < srLookback {
		return emptyFactor(SupportResistanceMax)
	}

	window := candles[len(candles)-srLookback:]
	low, high := window[0].Low, window[0].High
	prevHigh := 0.0 // highest high excluding the last bar
	for i, c := range window {
		if c.Low < low {
			low = c.Low
		}
		if c.High > high {
			high = c.High
		}
		if i < len(window)-1 && c.High > prevHigh {
			prevHigh = c.High
		}
	}

	price := candles[len(candles)-1].Close
	score := 0.0
	var notes []string

	if low > 0 && (price-low)/low <= srSupportProximity {
		score += srNearSupport
		notes = append(notes, "price near 20-bar support")
	}

	vol := indicator.AnalyzeVolume(candles, indicator.DefaultVolumePeriod, indicator.DefaultSpikeThreshold)
	if price >= prevHigh && vol != nil && vol.IsSpike {
		score += srFreshHighOnVolume
		notes = append(notes, "fresh 20-bar high on volume")
	}

	return factorScore(score, SupportResistanceMax, joinNotes(notes, "mid-range, no level in play"))
}

func scorePattern(candles []candle.Candle) FactorScore {
	if len(candles) == 0 {
		return emptyFactor(PatternMax)
	}
	last := candles[len(candles)-1]

	switch {
	case isHammer(last):
		return factorScore(patternHammer, PatternMax, "hammer on latest bar")
	case isBullishMarubozu(last):
		return factorScore(patternMarubozu, PatternMax, "bullish marubozu on latest bar")
	default:
		return factorScore(0, PatternMax, "no pattern on latest bar")
	}
}

func scoreAlignment(higher []candle.Candle) FactorScore {
	if len(higher) == 0 {
		return FactorScore{Max: AlignmentMax, Assessment: "no higher timeframe data"}
	}
	ema20 := indicator.EMA(higher, 20)
	ema50 := indicator.EMA(higher, 50)
	if ema20 == nil || ema50 == nil {
		return emptyFactor(AlignmentMax)
	}

	price := higher[len(higher)-1].Close
	above := 0
	if price > ema20.Current {
		above++
	}
	if price > ema50.Current {
		above++
	}
	switch above {
	case 2:
		return factorScore(alignmentFull, AlignmentMax, "higher timeframe bullish")
	case 1:
		return factorScore(alignmentPartial, AlignmentMax, "higher timeframe mixed")
	default:
		return factorScore(0, AlignmentMax, "higher timeframe bearish")
	}
}

func joinNotes(notes []string, fallback string) string {
	if len(notes) == 0 {
		return fallback
	}
	return strings.Join(notes, "; ")
}
