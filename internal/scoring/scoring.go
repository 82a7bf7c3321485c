// Package scoring combines indicator readings, volume behavior, candle
// patterns and higher-timeframe alignment into one weighted tradeability
// score for a symbol.
//
// Every cutoff below is part of the engine's behavioral contract: the values
// are lifted into named constants so they can be tested and documented, but
// changing them changes the product.
package scoring

import (
	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// Factor caps. They sum to the 115-point raw total that normalization
// divides by.
const (
	TrendMax             = 35.0
	MomentumMax          = 25.0
	MACDMax              = 20.0
	VolumeMax            = 15.0
	SupportResistanceMax = 10.0
	PatternMax           = 5.0
	AlignmentMax         = 5.0

	totalMax = TrendMax + MomentumMax + MACDMax + VolumeMax +
		SupportResistanceMax + PatternMax + AlignmentMax
)

// Verdict and confidence buckets on the normalized 0-100 score.
const (
	strongBullishAbove = 75.0
	bullishAbove       = 60.0
	neutralAbove       = 40.0

	highConfidenceAbove   = 70.0
	mediumConfidenceAbove = 50.0
)

const (
	VerdictStrongBullish = "STRONG_BULLISH"
	VerdictBullish       = "BULLISH"
	VerdictNeutral       = "NEUTRAL"
	VerdictBearish       = "BEARISH"

	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// FactorScore is one sub-factor's contribution.
type FactorScore struct {
	Score      float64 `json:"score"`
	Max        float64 `json:"max"`
	Percentage float64 `json:"percentage"`
	Assessment string  `json:"assessment"`
}

// Factors groups the seven sub-factors by name.
type Factors struct {
	Trend              FactorScore `json:"trend"`
	Momentum           FactorScore `json:"momentum"`
	MACD               FactorScore `json:"macd"`
	Volume             FactorScore `json:"volume"`
	SupportResistance  FactorScore `json:"supportResistance"`
	Pattern            FactorScore `json:"pattern"`
	TimeframeAlignment FactorScore `json:"timeframeAlignment"`
}

// CompositeScore is the full scoring verdict for one symbol.
type CompositeScore struct {
	Symbol     string  `json:"symbol"`
	Factors    Factors `json:"factors"`
	Total      float64 `json:"total"`
	Normalized float64 `json:"normalized"`
	Verdict    string  `json:"verdict"`
	Confidence string  `json:"confidence"`
}

// Bundle is the input to ScoreSymbol: the primary series driving all
// factors, plus an optional higher-granularity series for the alignment
// factor. Missing or short series degrade the affected factors to zero
// rather than failing the whole score.
type Bundle struct {
	Symbol  string          `json:"symbol"`
	Primary []candle.Candle `json:"primary"`
	Higher  []candle.Candle `json:"higher,omitempty"`
}

const insufficientData = "insufficient data"

// ScoreSymbol computes the composite score. It always returns a score; when
// the series cannot support a sub-factor that factor contributes zero and
// the overall confidence drops with the normalized total.
func ScoreSymbol(b Bundle) *CompositeScore {
	primary := candle.Sanitize(b.Primary)

	factors := Factors{
		Trend:              scoreTrend(primary),
		Momentum:           scoreMomentum(primary),
		MACD:               scoreMACDFactor(primary),
		Volume:             scoreVolume(primary),
		SupportResistance:  scoreSupportResistance(primary),
		Pattern:            scorePattern(primary),
		TimeframeAlignment: scoreAlignment(candle.Sanitize(b.Higher)),
	}

	total := factors.Trend.Score + factors.Momentum.Score + factors.MACD.Score +
		factors.Volume.Score + factors.SupportResistance.Score +
		factors.Pattern.Score + factors.TimeframeAlignment.Score
	normalized := total / totalMax * 100

	return &CompositeScore{
		Symbol:     b.Symbol,
		Factors:    factors,
		Total:      total,
		Normalized: normalized,
		Verdict:    verdictFor(normalized),
		Confidence: confidenceFor(normalized),
	}
}

func verdictFor(normalized float64) string {
	switch {
	case normalized > strongBullishAbove:
		return VerdictStrongBullish
	case normalized > bullishAbove:
		return VerdictBullish
	case normalized > neutralAbove:
		return VerdictNeutral
	default:
		return VerdictBearish
	}
}

func confidenceFor(normalized float64) string {
	switch {
	case normalized > highConfidenceAbove:
		return ConfidenceHigh
	case normalized > mediumConfidenceAbove:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func factorScore(score, max float64, assessment string) FactorScore {
	if score > max {
		score = max
	}
	return FactorScore{
		Score:      score,
		Max:        max,
		Percentage: score / max * 100,
		Assessment: assessment,
	}
}

func emptyFactor(max float64) FactorScore {
	return FactorScore{Max: max, Assessment: insufficientData}
}
