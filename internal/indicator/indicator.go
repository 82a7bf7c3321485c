// Package indicator implements the stateless technical indicator library:
// SMA, EMA, RSI, MACD, Bollinger Bands, ATR and volume-spike analysis over a
// single candle series.
//
// Every function sanitizes its input first and returns nil when fewer valid
// bars remain than the computation's minimum window, when parameters are
// invalid, or when a computed value comes out non-finite. A nil result is the
// expected "insufficient data" outcome, never an exception path.
package indicator

import (
	"fmt"
	"math"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// Signal is the directional reading derived from an indicator's last value.
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalNeutral Signal = "NEUTRAL"
)

// Crossover flags a sign change between the last two histogram values.
type Crossover string

const (
	CrossoverBullish Crossover = "BULLISH"
	CrossoverBearish Crossover = "BEARISH"
	CrossoverNone    Crossover = "NONE"
)

// VolumeSignal classifies current volume against its trailing average.
type VolumeSignal string

const (
	VolumeHigh   VolumeSignal = "HIGH_VOLUME"
	VolumeLow    VolumeSignal = "LOW_VOLUME"
	VolumeNormal VolumeSignal = "NORMAL"
)

// Default parameters. These are the contract values of the engine, not
// tuning knobs.
const (
	DefaultMAPeriod        = 20
	DefaultRSIPeriod       = 14
	DefaultMACDFast        = 12
	DefaultMACDSlow        = 26
	DefaultMACDSignal      = 9
	DefaultBollingerPeriod = 20
	DefaultBollingerStdDev = 2.0
	DefaultATRPeriod       = 14
	DefaultVolumePeriod    = 20
	DefaultSpikeThreshold  = 1.5
)

// Result holds a computed indicator series aligned to the trailing sub-window
// of the input: one value per valid output bar, the last of which is Current.
type Result struct {
	Values   []float64 `json:"values"`
	Current  float64   `json:"current"`
	Signal   Signal    `json:"signal"`
	Strength float64   `json:"strength"`
}

// MACDResult holds the three aligned MACD sequences plus the histogram
// crossover flag for the last two bars.
type MACDResult struct {
	MACD      []float64 `json:"macd"`
	Signal    []float64 `json:"signal"`
	Histogram []float64 `json:"histogram"`
	Crossover Crossover `json:"crossover"`
}

// BollingerResult holds the band sequences, the percentage bandwidth of the
// latest window and a band-position signal.
type BollingerResult struct {
	Upper     []float64 `json:"upper"`
	Middle    []float64 `json:"middle"`
	Lower     []float64 `json:"lower"`
	Bandwidth float64   `json:"bandwidth"`
	Signal    Signal    `json:"signal"`
}

// VolumeResult describes the latest bar's volume against the trailing
// average that excludes it.
type VolumeResult struct {
	Average float64      `json:"average"`
	Current float64      `json:"current"`
	Ratio   float64      `json:"ratio"`
	IsSpike bool         `json:"isSpike"`
	Signal  VolumeSignal `json:"signal"`
}

// Kind names an indicator for the Compute dispatcher.
type Kind string

const (
	KindSMA       Kind = "sma"
	KindEMA       Kind = "ema"
	KindRSI       Kind = "rsi"
	KindMACD      Kind = "macd"
	KindBollinger Kind = "bollinger"
	KindATR       Kind = "atr"
	KindVolume    Kind = "volume"
)

// Params carries the per-kind parameter set for Compute. Zero values fall
// back to the defaults above.
type Params struct {
	Period         int     `json:"period"`
	FastPeriod     int     `json:"fastPeriod"`
	SlowPeriod     int     `json:"slowPeriod"`
	SignalPeriod   int     `json:"signalPeriod"`
	StdDev         float64 `json:"stdDev"`
	SpikeThreshold float64 `json:"spikeThreshold"`
}

// Compute dispatches to the named indicator. The first return is one of the
// result types above and is nil (typed nil unwrapped to untyped) when the
// series cannot support the computation. An error is returned only for an
// unknown kind.
func Compute(kind Kind, candles []candle.Candle, p Params) (interface{}, error) {
	switch kind {
	case KindSMA:
		if r := SMA(candles, orDefault(p.Period, DefaultMAPeriod)); r != nil {
			return r, nil
		}
	case KindEMA:
		if r := EMA(candles, orDefault(p.Period, DefaultMAPeriod)); r != nil {
			return r, nil
		}
	case KindRSI:
		if r := RSI(candles, orDefault(p.Period, DefaultRSIPeriod)); r != nil {
			return r, nil
		}
	case KindMACD:
		fast := orDefault(p.FastPeriod, DefaultMACDFast)
		slow := orDefault(p.SlowPeriod, DefaultMACDSlow)
		sig := orDefault(p.SignalPeriod, DefaultMACDSignal)
		if r := MACD(candles, fast, slow, sig); r != nil {
			return r, nil
		}
	case KindBollinger:
		k := p.StdDev
		if k == 0 {
			k = DefaultBollingerStdDev
		}
		if r := BollingerBands(candles, orDefault(p.Period, DefaultBollingerPeriod), k); r != nil {
			return r, nil
		}
	case KindATR:
		if r := ATR(candles, orDefault(p.Period, DefaultATRPeriod)); r != nil {
			return r, nil
		}
	case KindVolume:
		t := p.SpikeThreshold
		if t == 0 {
			t = DefaultSpikeThreshold
		}
		if r := AnalyzeVolume(candles, orDefault(p.Period, DefaultVolumePeriod), t); r != nil {
			return r, nil
		}
	default:
		return nil, fmt.Errorf("unknown indicator kind %q", kind)
	}
	return nil, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// allFinite reports whether every value in the series is a usable number.
// A non-finite output despite valid inputs is treated exactly like
// insufficient data.
func allFinite(values ...[]float64) bool {
	for _, series := range values {
		for _, v := range series {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func clampStrength(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
