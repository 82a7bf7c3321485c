package indicator

import (
	"reflect"
	"testing"
)

func trendingCandles(start, step float64, n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + step*float64(i)
	}
	return closes
}

func TestMACD_InsufficientDataReturnsNil(t *testing.T) {
	// slow+signalPeriod-1 bars is one short of the minimum.
	closes := trendingCandles(100, 1, DefaultMACDSlow+DefaultMACDSignal-1)
	if result := MACD(closesToCandles(closes), 12, 26, 9); result != nil {
		t.Errorf("expected nil below minimum window, got %+v", result)
	}
}

func TestMACD_InvalidParameters(t *testing.T) {
	closes := trendingCandles(100, 1, 100)
	if result := MACD(closesToCandles(closes), 26, 12, 9); result != nil {
		t.Error("expected nil when fast >= slow")
	}
	if result := MACD(closesToCandles(closes), 12, 26, 0); result != nil {
		t.Error("expected nil with zero signal period")
	}
}

func TestMACD_AlignedSequences(t *testing.T) {
	closes := trendingCandles(100, 0.5, 80)
	result := MACD(closesToCandles(closes), 12, 26, 9)
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	if len(result.MACD) != len(result.Signal) || len(result.Signal) != len(result.Histogram) {
		t.Fatalf("sequences misaligned: macd=%d signal=%d histogram=%d",
			len(result.MACD), len(result.Signal), len(result.Histogram))
	}
	// n - slow - signalPeriod + 2 output bars.
	if want := 80 - 26 - 9 + 2; len(result.Histogram) != want {
		t.Errorf("expected %d output bars, got %d", want, len(result.Histogram))
	}
	for i := range result.Histogram {
		if diff := result.MACD[i] - result.Signal[i] - result.Histogram[i]; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("histogram[%d] is not macd-signal (diff %g)", i, diff)
		}
	}
}

func TestMACD_UptrendIsPositive(t *testing.T) {
	closes := trendingCandles(100, 1, 100)
	result := MACD(closesToCandles(closes), 12, 26, 9)
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	if result.MACD[len(result.MACD)-1] <= 0 {
		t.Errorf("expected positive MACD line in steady uptrend, got %f",
			result.MACD[len(result.MACD)-1])
	}
}

func TestMACD_CrossoverDetection(t *testing.T) {
	// A long decline followed by a sharp recovery flips the histogram from
	// negative to positive on the final bars.
	closes := trendingCandles(200, -1, 60)
	closes = append(closes, trendingCandles(closes[59], 3, 20)...)
	result := MACD(closesToCandles(closes), 12, 26, 9)
	if result == nil {
		t.Fatal("expected result, got nil")
	}

	h := result.Histogram
	sawFlip := false
	for i := 1; i < len(h); i++ {
		if h[i-1] < 0 && h[i] >= 0 {
			sawFlip = true
		}
	}
	if !sawFlip {
		t.Fatal("expected a negative-to-positive histogram flip in the recovery")
	}
}

func TestMACD_CrossoverIdempotent(t *testing.T) {
	closes := trendingCandles(200, -1, 60)
	closes = append(closes, trendingCandles(closes[59], 3, 20)...)

	first := MACD(closesToCandles(closes), 12, 26, 9)
	second := MACD(closesToCandles(closes), 12, 26, 9)
	if first == nil || second == nil {
		t.Fatal("expected results, got nil")
	}
	if first.Crossover != second.Crossover {
		t.Errorf("crossover not idempotent: %s vs %s", first.Crossover, second.Crossover)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated runs on identical input must be byte-identical")
	}
}

func TestMACD_FlatSeriesHasNoCrossover(t *testing.T) {
	result := MACD(constantCandles(100, 60), 12, 26, 9)
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	if result.Crossover != CrossoverNone {
		t.Errorf("flat series should have no crossover, got %s", result.Crossover)
	}
}
