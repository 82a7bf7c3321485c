package indicator

import (
	"math"
	"testing"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

func TestATR_ConstantRange(t *testing.T) {
	// Every bar spans exactly 2 points and closes mid-range, so every true
	// range is 2 and both the seed average and the Wilder updates stay at 2.
	candles := make([]candle.Candle, 30)
	for i := range candles {
		candles[i] = candle.Candle{
			Timestamp: int64(i),
			Open:      100,
			High:      101,
			Low:       99,
			Close:     100,
			Volume:    1000,
		}
	}

	result := ATR(candles, 14)
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	for i, v := range result.Values {
		if math.Abs(v-2) > 1e-9 {
			t.Errorf("value[%d]: expected 2, got %f", i, v)
		}
	}
}

func TestATR_GapUsesPreviousClose(t *testing.T) {
	// A bar gapping up makes |high-prevClose| the dominant term.
	candles := []candle.Candle{
		{Timestamp: 0, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
		{Timestamp: 1, Open: 110, High: 111, Low: 109, Close: 110, Volume: 1},
	}
	result := ATR(candles, 1)
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	// TR = max(111-109, |111-100|, |109-100|) = 11.
	if result.Current != 11 {
		t.Errorf("expected ATR 11, got %f", result.Current)
	}
}

func TestATR_InsufficientData(t *testing.T) {
	if result := ATR(constantCandles(100, 14), 14); result != nil {
		t.Errorf("expected nil with only period bars, got %+v", result)
	}
}
