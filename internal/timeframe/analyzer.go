// Package timeframe runs the indicator library independently over several
// granularities of one instrument and fuses the per-granularity trends into
// a directional confluence verdict with entry, stop and target levels.
package timeframe

import (
	"fmt"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/indicator"
)

// Mode selects the granularity ladder for a trading style.
type Mode string

const (
	// ModeScalping looks at intraday granularities.
	ModeScalping Mode = "scalping"
	// ModePosition looks at hourly-and-up granularities.
	ModePosition Mode = "position"
)

// Trend is a granularity's directional classification.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// Confluence directions add MIXED for disagreement across the ladder.
const DirectionMixed = "MIXED"

// Recommendation actions.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionWait = "WAIT"
)

// Ladder timeframe names. The 4h entry is synthesized from hourly bars when
// the data provider does not offer it natively.
const (
	TF1m  = "1m"
	TF5m  = "5m"
	TF15m = "15m"
	TF1h  = "1h"
	TF4h  = "4h"
	TF1d  = "1d"
	TF1w  = "1w"
)

const (
	// fourHourFactor is how many hourly bars make one synthetic 4h bar.
	fourHourFactor = 4
	// levelLookback is the window for support/resistance extrema.
	levelLookback = 20
	// trendVotes is the vote count needed to call a granularity's trend.
	trendVotes = 3
	// confluenceAgreement is how many ladder entries must agree.
	confluenceAgreement = 3
	// longTimeframeBonus is added when the longest granularity confirms.
	longTimeframeBonus = 20.0
	// recommendationMinStrength gates BUY/SELL recommendations.
	recommendationMinStrength = 60.0
	// entryZonePercent widens the entry zone around the current price.
	entryZonePercent = 0.005
	// stopFallbackPercent is used when no qualifying level exists.
	stopFallbackPercent = 0.02
)

// riskMultiples drive the take-profit ladder off the stop distance.
var riskMultiples = []float64{1.5, 2, 3}

// Analysis is one granularity's reading: trend classification plus the raw
// indicator values it was derived from.
type Analysis struct {
	Timeframe   string  `json:"timeframe"`
	Trend       Trend   `json:"trend"`
	Strength    float64 `json:"strength"`
	Support     float64 `json:"support"`
	Resistance  float64 `json:"resistance"`
	Price       float64 `json:"price"`
	RSI         float64 `json:"rsi"`
	EMA20       float64 `json:"ema20"`
	EMA50       float64 `json:"ema50"`
	Histogram   float64 `json:"macdHistogram"`
	VolumeRatio float64 `json:"volumeRatio"`
	HasData     bool    `json:"hasData"`
}

// Confluence aggregates the ladder.
type Confluence struct {
	Direction string  `json:"direction"`
	Strength  float64 `json:"strength"`
	Agreement string  `json:"agreement"`
}

// Recommendation is the actionable verdict derived from the confluence.
type Recommendation struct {
	Action    string    `json:"action"`
	EntryLow  float64   `json:"entryLow,omitempty"`
	EntryHigh float64   `json:"entryHigh,omitempty"`
	StopLoss  float64   `json:"stopLoss,omitempty"`
	Targets   []float64 `json:"targets,omitempty"`
	Reason    string    `json:"reason"`
}

// Report is the full multi-timeframe verdict for one instrument.
type Report struct {
	Symbol         string         `json:"symbol"`
	Mode           Mode           `json:"mode"`
	CurrentPrice   float64        `json:"currentPrice"`
	Timeframes     []Analysis     `json:"timeframes"`
	Confluence     Confluence     `json:"confluence"`
	Recommendation Recommendation `json:"recommendation"`
}

// Ladder returns the granularity ladder for a mode, shortest first. The last
// entry is the long timeframe whose agreement earns the confluence bonus.
func Ladder(mode Mode) ([]string, error) {
	switch mode {
	case ModeScalping:
		return []string{TF1m, TF5m, TF15m, TF1h}, nil
	case ModePosition:
		return []string{TF1h, TF4h, TF1d, TF1w}, nil
	default:
		return nil, fmt.Errorf("unknown trading mode %q", mode)
	}
}

// Analyze classifies every granularity in the mode's ladder and aggregates
// them into a confluence verdict. seriesByTF maps timeframe names (Ladder
// values) to candle series; a missing 4h series is synthesized from the 1h
// series when present. Granularities with missing or insufficient data stay
// in the report as no-data entries and never vote.
func Analyze(symbol string, seriesByTF map[string][]candle.Candle, mode Mode) (*Report, error) {
	ladder, err := Ladder(mode)
	if err != nil {
		return nil, err
	}

	report := &Report{Symbol: symbol, Mode: mode}

	for _, tf := range ladder {
		series, ok := seriesByTF[tf]
		if (!ok || len(series) == 0) && tf == TF4h {
			if hourly, okH := seriesByTF[TF1h]; okH {
				series = candle.Aggregate(candle.Sanitize(hourly), fourHourFactor)
			}
		}
		report.Timeframes = append(report.Timeframes, analyzeTimeframe(tf, series))
	}

	// Current price comes from the shortest granularity that has data.
	for _, a := range report.Timeframes {
		if a.HasData {
			report.CurrentPrice = a.Price
			break
		}
	}

	report.Confluence = aggregate(report.Timeframes)
	report.Recommendation = recommend(report)
	return report, nil
}

// analyzeTimeframe classifies one granularity with the 4-vote scheme:
// price>EMA20, price>EMA50, RSI>50, MACD histogram positive or freshly
// crossed bullish. Three or more votes either way call the trend.
func analyzeTimeframe(name string, series []candle.Candle) Analysis {
	analysis := Analysis{Timeframe: name, Trend: TrendNeutral}

	clean := candle.Sanitize(series)
	ema20 := indicator.EMA(clean, 20)
	ema50 := indicator.EMA(clean, 50)
	rsi := indicator.RSI(clean, indicator.DefaultRSIPeriod)
	macd := indicator.MACD(clean, indicator.DefaultMACDFast, indicator.DefaultMACDSlow, indicator.DefaultMACDSignal)
	if ema20 == nil || ema50 == nil || rsi == nil || macd == nil {
		return analysis
	}

	price := clean[len(clean)-1].Close
	hist := macd.Histogram[len(macd.Histogram)-1]

	analysis.HasData = true
	analysis.Price = price
	analysis.RSI = rsi.Current
	analysis.EMA20 = ema20.Current
	analysis.EMA50 = ema50.Current
	analysis.Histogram = hist
	if vol := indicator.AnalyzeVolume(clean, indicator.DefaultVolumePeriod, indicator.DefaultSpikeThreshold); vol != nil {
		analysis.VolumeRatio = vol.Ratio
	}
	analysis.Support, analysis.Resistance = supportResistance(clean, levelLookback)

	bullish, bearish := 0, 0
	vote := func(up, down bool) {
		if up {
			bullish++
		} else if down {
			bearish++
		}
	}
	vote(price > ema20.Current, price < ema20.Current)
	vote(price > ema50.Current, price < ema50.Current)
	vote(rsi.Current > 50, rsi.Current < 50)
	vote(hist > 0 || macd.Crossover == indicator.CrossoverBullish, hist < 0)

	maxVotes := bullish
	if bearish > maxVotes {
		maxVotes = bearish
	}
	analysis.Strength = float64(maxVotes) / 4 * 100

	if bullish >= trendVotes {
		analysis.Trend = TrendBullish
	} else if bearish >= trendVotes {
		analysis.Trend = TrendBearish
	}
	return analysis
}

// supportResistance returns the lookback window's low and high.
func supportResistance(series []candle.Candle, lookback int) (float64, float64) {
	if len(series) == 0 {
		return 0, 0
	}
	if len(series) > lookback {
		series = series[len(series)-lookback:]
	}
	low, high := series[0].Low, series[0].High
	for _, c := range series {
		if c.Low < low {
			low = c.Low
		}
		if c.High > high {
			high = c.High
		}
	}
	return low, high
}
