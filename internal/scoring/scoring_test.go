package scoring

import (
	"math"
	"testing"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// uptrendCandles builds a steadily rising series with up-bodies and healthy
// volume, long enough for every factor to compute.
func uptrendCandles(n int) []candle.Candle {
	out := make([]candle.Candle, n)
	price := 1000.0
	for i := range out {
		open := price
		price += 5
		out[i] = candle.Candle{
			Timestamp: int64(i),
			Open:      open,
			High:      price + 2,
			Low:       open - 2,
			Close:     price,
			Volume:    100000,
		}
	}
	return out
}

func TestScoreSymbol_Bounds(t *testing.T) {
	score := ScoreSymbol(Bundle{Symbol: "BBCA", Primary: uptrendCandles(120)})
	if score == nil {
		t.Fatal("ScoreSymbol must always return a score")
	}
	if score.Normalized < 0 || score.Normalized > 100 {
		t.Errorf("normalized score out of range: %f", score.Normalized)
	}

	for name, f := range map[string]FactorScore{
		"trend":              score.Factors.Trend,
		"momentum":           score.Factors.Momentum,
		"macd":               score.Factors.MACD,
		"volume":             score.Factors.Volume,
		"support/resistance": score.Factors.SupportResistance,
		"pattern":            score.Factors.Pattern,
		"alignment":          score.Factors.TimeframeAlignment,
	} {
		if f.Score < 0 || f.Score > f.Max {
			t.Errorf("%s: score %f exceeds cap %f", name, f.Score, f.Max)
		}
		if f.Max > 0 && math.Abs(f.Percentage-f.Score/f.Max*100) > 1e-9 {
			t.Errorf("%s: percentage inconsistent with score", name)
		}
	}

	sum := score.Factors.Trend.Score + score.Factors.Momentum.Score +
		score.Factors.MACD.Score + score.Factors.Volume.Score +
		score.Factors.SupportResistance.Score + score.Factors.Pattern.Score +
		score.Factors.TimeframeAlignment.Score
	if math.Abs(sum-score.Total) > 1e-9 {
		t.Errorf("total %f does not match factor sum %f", score.Total, sum)
	}
}

func TestScoreSymbol_UptrendScoresTrend(t *testing.T) {
	score := ScoreSymbol(Bundle{Symbol: "TLKM", Primary: uptrendCandles(120)})
	// Price above both EMAs and EMA20 above EMA50 in a monotone uptrend.
	if score.Factors.Trend.Score < trendPriceAboveEMA20+trendPriceAboveEMA50+trendEMA20AboveEMA50 {
		t.Errorf("uptrend should earn the structural trend points, got %f (%s)",
			score.Factors.Trend.Score, score.Factors.Trend.Assessment)
	}
	// Every session closes up, so accumulation must be rewarded.
	if score.Factors.Volume.Score < volumeAccumulation {
		t.Errorf("all-up sessions should earn accumulation points, got %f", score.Factors.Volume.Score)
	}
}

func TestScoreSymbol_InsufficientDataDegrades(t *testing.T) {
	score := ScoreSymbol(Bundle{Symbol: "GOTO", Primary: uptrendCandles(10)})
	if score == nil {
		t.Fatal("short series must still produce a partial score")
	}
	if score.Factors.Trend.Score != 0 || score.Factors.Trend.Assessment != "insufficient data" {
		t.Errorf("trend should be empty on 10 bars, got %+v", score.Factors.Trend)
	}
	if score.Factors.MACD.Score != 0 {
		t.Errorf("MACD should be empty on 10 bars, got %+v", score.Factors.MACD)
	}
	if score.Confidence != ConfidenceLow {
		t.Errorf("partial score should be low confidence, got %s", score.Confidence)
	}
}

func TestVerdictBuckets(t *testing.T) {
	tests := []struct {
		normalized float64
		verdict    string
	}{
		{80, VerdictStrongBullish},
		{75, VerdictBullish},
		{61, VerdictBullish},
		{60, VerdictNeutral},
		{41, VerdictNeutral},
		{40, VerdictBearish},
		{0, VerdictBearish},
	}
	for _, tt := range tests {
		if got := verdictFor(tt.normalized); got != tt.verdict {
			t.Errorf("verdictFor(%f) = %s, want %s", tt.normalized, got, tt.verdict)
		}
	}
}

func TestConfidenceBuckets(t *testing.T) {
	if confidenceFor(71) != ConfidenceHigh {
		t.Error("expected HIGH above 70")
	}
	if confidenceFor(51) != ConfidenceMedium {
		t.Error("expected MEDIUM above 50")
	}
	if confidenceFor(50) != ConfidenceLow {
		t.Error("expected LOW at 50")
	}
}

func TestIsHammer(t *testing.T) {
	hammer := candle.Candle{Open: 100, High: 100.5, Low: 94, Close: 102, Volume: 1}
	// body 2, lower wick 6 >= 4, upper wick 0 — but high must sit near the
	// body top for a hammer.
	hammer.High = 102.2
	if !isHammer(hammer) {
		t.Error("expected hammer: long lower wick, small body, tiny upper wick")
	}

	inverted := candle.Candle{Open: 100, High: 108, Low: 99.8, Close: 102, Volume: 1}
	if isHammer(inverted) {
		t.Error("long upper wick must not read as a hammer")
	}
}

func TestIsBullishMarubozu(t *testing.T) {
	solid := candle.Candle{Open: 100, High: 110.5, Low: 99.8, Close: 110, Volume: 1}
	// body 10 of range 10.7 (93%)
	if !isBullishMarubozu(solid) {
		t.Error("expected marubozu with body >= 80% of range")
	}
	bearish := candle.Candle{Open: 110, High: 110.5, Low: 99.8, Close: 100, Volume: 1}
	if isBullishMarubozu(bearish) {
		t.Error("down bar must not read as bullish marubozu")
	}
	wicky := candle.Candle{Open: 100, High: 115, Low: 95, Close: 105, Volume: 1}
	if isBullishMarubozu(wicky) {
		t.Error("body 25% of range must not read as marubozu")
	}
}

func TestScoreSymbol_HigherTimeframeAlignment(t *testing.T) {
	withHigher := ScoreSymbol(Bundle{
		Symbol:  "BMRI",
		Primary: uptrendCandles(120),
		Higher:  uptrendCandles(80),
	})
	if withHigher.Factors.TimeframeAlignment.Score != alignmentFull {
		t.Errorf("bullish higher timeframe should score %f, got %f",
			alignmentFull, withHigher.Factors.TimeframeAlignment.Score)
	}

	without := ScoreSymbol(Bundle{Symbol: "BMRI", Primary: uptrendCandles(120)})
	if without.Factors.TimeframeAlignment.Score != 0 {
		t.Errorf("missing higher timeframe must contribute zero, got %f",
			without.Factors.TimeframeAlignment.Score)
	}
}
