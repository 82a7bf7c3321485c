package indicator

import (
	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// lowVolumeRatio marks drying-up volume: half the trailing average or less.
const lowVolumeRatio = 0.5

// AnalyzeVolume compares the latest bar's volume against the average of the
// trailing period bars excluding that bar. Requires period+1 valid bars. A
// zero trailing average cannot produce a meaningful ratio and reads as
// insufficient data.
func AnalyzeVolume(candles []candle.Candle, period int, spikeThreshold float64) *VolumeResult {
	clean := candle.Sanitize(candles)
	if period <= 0 || spikeThreshold <= 0 || len(clean) < period+1 {
		return nil
	}

	last := len(clean) - 1
	sum := 0.0
	for _, c := range clean[last-period : last] {
		sum += c.Volume
	}
	average := sum / float64(period)
	if average == 0 {
		return nil
	}

	current := clean[last].Volume
	ratio := current / average

	signal := VolumeNormal
	switch {
	case ratio >= spikeThreshold:
		signal = VolumeHigh
	case ratio <= lowVolumeRatio:
		signal = VolumeLow
	}

	return &VolumeResult{
		Average: average,
		Current: current,
		Ratio:   ratio,
		IsSpike: ratio >= spikeThreshold,
		Signal:  signal,
	}
}
