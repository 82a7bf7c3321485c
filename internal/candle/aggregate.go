package candle

// Aggregate merges every `factor` consecutive bars into one larger bar:
// open from the first bar, close from the last, high/low from the window
// extrema, volume summed, timestamp from the first bar. It is the batching
// transform behind the synthetic 4h granularity built from hourly bars.
//
// A trailing chunk shorter than factor is dropped, and so is any chunk whose
// opening or closing bar carries no usable open/close. Nothing is fabricated.
func Aggregate(candles []Candle, factor int) []Candle {
	if factor <= 1 {
		return append([]Candle(nil), candles...)
	}

	out := make([]Candle, 0, len(candles)/factor)
	for start := 0; start+factor <= len(candles); start += factor {
		chunk := candles[start : start+factor]
		if !chunk[0].Valid() || !chunk[factor-1].Valid() {
			continue
		}

		bar := Candle{
			Timestamp: chunk[0].Timestamp,
			Open:      chunk[0].Open,
			Close:     chunk[factor-1].Close,
			High:      chunk[0].High,
			Low:       chunk[0].Low,
		}
		for _, c := range chunk {
			if !c.Valid() {
				continue
			}
			if c.High > bar.High {
				bar.High = c.High
			}
			if c.Low < bar.Low {
				bar.Low = c.Low
			}
			bar.Volume += c.Volume
		}
		out = append(out, bar)
	}
	return out
}
