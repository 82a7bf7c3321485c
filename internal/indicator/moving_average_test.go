package indicator

import (
	"math"
	"testing"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

func closesToCandles(closes []float64) []candle.Candle {
	out := make([]candle.Candle, len(closes))
	for i, c := range closes {
		out[i] = candle.Candle{
			Timestamp: int64(i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

func constantCandles(price float64, n int) []candle.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return closesToCandles(closes)
}

func TestSMA_KnownValues(t *testing.T) {
	candles := closesToCandles([]float64{1, 2, 3, 4, 5})
	result := SMA(candles, 3)
	if result == nil {
		t.Fatal("expected result, got nil")
	}

	want := []float64{2, 3, 4}
	if len(result.Values) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(result.Values))
	}
	for i, w := range want {
		if math.Abs(result.Values[i]-w) > 1e-9 {
			t.Errorf("value[%d]: expected %f, got %f", i, w, result.Values[i])
		}
	}
	if result.Current != 4 {
		t.Errorf("expected current 4, got %f", result.Current)
	}
}

func TestSMA_InsufficientData(t *testing.T) {
	if result := SMA(closesToCandles([]float64{1, 2}), 3); result != nil {
		t.Errorf("expected nil for short series, got %+v", result)
	}
	if result := SMA(nil, 3); result != nil {
		t.Errorf("expected nil for empty series, got %+v", result)
	}
}

func TestSMA_DropsInvalidBars(t *testing.T) {
	candles := closesToCandles([]float64{10, 10, 10, 10})
	candles = append(candles, candle.Candle{Timestamp: 4, Close: math.NaN()})
	candles = append(candles, candle.Candle{Timestamp: 5, Open: 10, High: 10, Low: 10, Close: -5, Volume: 1})

	result := SMA(candles, 4)
	if result == nil {
		t.Fatal("expected result after sanitization")
	}
	if result.Current != 10 {
		t.Errorf("expected current 10, got %f", result.Current)
	}
}

func TestEMA_ConstantSeriesConverges(t *testing.T) {
	result := EMA(constantCandles(250, 60), 20)
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	for i, v := range result.Values {
		if v != 250 {
			t.Fatalf("value[%d]: expected exactly 250, got %v", i, v)
		}
	}
	if result.Signal != SignalNeutral {
		t.Errorf("constant series should be neutral, got %s", result.Signal)
	}
}

func TestEMA_SeededWithSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	result := EMA(closesToCandles(closes), 5)
	if result == nil {
		t.Fatal("expected result, got nil")
	}

	// First value is the SMA of the first 5 closes.
	if result.Values[0] != 3 {
		t.Errorf("expected seed 3, got %f", result.Values[0])
	}
	// Second value follows the recurrence with multiplier 2/(5+1).
	k := 2.0 / 6.0
	want := (6-3.0)*k + 3.0
	if math.Abs(result.Values[1]-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, result.Values[1])
	}
}

func TestMovingAverage_Signals(t *testing.T) {
	// 19 flat bars then a final close 5% above: price well above both
	// averages.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	closes[19] = 105

	if result := SMA(closesToCandles(closes), 20); result.Signal != SignalBuy {
		t.Errorf("expected SMA BUY, got %s", result.Signal)
	}
	if result := EMA(closesToCandles(closes), 20); result.Signal != SignalBuy {
		t.Errorf("expected EMA BUY, got %s", result.Signal)
	}

	closes[19] = 95
	if result := SMA(closesToCandles(closes), 20); result.Signal != SignalSell {
		t.Errorf("expected SMA SELL, got %s", result.Signal)
	}
}
