// Package backtest replays a historical candle series bar-by-bar through a
// named strategy, simulating fills, fees and a fixed stop-loss, and reports
// summary performance statistics against a buy-and-hold baseline.
package backtest

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/indicator"
)

const (
	// warmupBars covers the slowest default indicator before trading starts.
	warmupBars = 26
	// positionFraction of current cash is deployed on every BUY.
	positionFraction = 0.95
	// IDX retail brokerage fee rates, buy and sell side.
	buyFeeRate  = 0.0015
	sellFeeRate = 0.0025
	// DefaultStopLossPercent forces an exit below the entry price.
	DefaultStopLossPercent = 0.02
	// DefaultInitialCapital is in rupiah.
	DefaultInitialCapital = 100_000_000

	tradingDaysPerYear = 252
	riskFreeRate       = 0.05
)

// Trade is one simulated fill. SELL fills carry the realized profit against
// the cost basis of the matching BUY. The ledger is append-only.
type Trade struct {
	Type          string  `json:"type"`
	Date          int64   `json:"date"`
	Price         float64 `json:"price"`
	Shares        int64   `json:"shares"`
	Value         float64 `json:"value"`
	Fees          float64 `json:"fees"`
	Profit        float64 `json:"profit,omitempty"`
	ProfitPercent float64 `json:"profitPercent,omitempty"`
	Reason        string  `json:"reason"`
}

// ProfitFactor marshals +Inf (wins with no losses) as a JSON string, since
// bare Infinity is not representable in JSON.
type ProfitFactor float64

func (p ProfitFactor) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(p), 1) {
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(p))
}

func (p *ProfitFactor) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*p = ProfitFactor(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ProfitFactor(v)
	return nil
}

// Result is one simulation outcome. It is immutable once Run returns.
type Result struct {
	Symbol         string       `json:"symbol"`
	Strategy       string       `json:"strategy"`
	InitialCapital float64      `json:"initialCapital"`
	FinalCapital   float64      `json:"finalCapital"`
	Trades         []Trade      `json:"trades"`
	TotalTrades    int          `json:"totalTrades"`
	Wins           int          `json:"wins"`
	Losses         int          `json:"losses"`
	WinRate        float64      `json:"winRate"`
	TotalReturn    float64      `json:"totalReturn"`
	ProfitFactor   ProfitFactor `json:"profitFactor"`
	MaxDrawdown    float64      `json:"maxDrawdown"`
	SharpeRatio    float64      `json:"sharpeRatio"`
	BuyHoldReturn  float64      `json:"buyHoldReturn"`
	IsViable       bool         `json:"isViable"`
	EquityCurve    []float64    `json:"equityCurve"`
}

// Params tunes one run. Zero values fall back to the defaults.
type Params struct {
	InitialCapital  float64
	StopLossPercent float64
}

func (p Params) withDefaults() Params {
	if p.InitialCapital <= 0 {
		p.InitialCapital = DefaultInitialCapital
	}
	if p.StopLossPercent <= 0 {
		p.StopLossPercent = DefaultStopLossPercent
	}
	return p
}

// position is the open-position state between bars. shares == 0 means flat.
type position struct {
	shares     int64
	entryPrice float64
}

// Run replays the series through the named strategy. Indicators are computed
// once over the full series and re-aligned per bar; trading decisions start
// after the warm-up window. Only one position may be open at a time and there
// is no shorting. Deterministic: identical inputs produce identical results.
func Run(symbol string, candles []candle.Candle, strategyName string, p Params) (*Result, error) {
	strategy, ok := strategies[strategyName]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", strategyName)
	}
	p = p.withDefaults()

	clean := candle.Sanitize(candles)
	if len(clean) <= warmupBars {
		return nil, fmt.Errorf("need more than %d bars, got %d", warmupBars, len(clean))
	}

	state := newIndicatorState(clean)

	result := &Result{
		Symbol:         symbol,
		Strategy:       strategyName,
		InitialCapital: p.InitialCapital,
		Trades:         []Trade{},
	}

	cash := p.InitialCapital
	var pos position

	for i := warmupBars; i < len(clean); i++ {
		bar := clean[i]
		price := bar.Close
		lastBar := i == len(clean)-1

		if pos.shares > 0 {
			// The stop-loss outranks every strategy signal.
			if price <= pos.entryPrice*(1-p.StopLossPercent) {
				cash += sell(result, bar, &pos, fmt.Sprintf("stop loss at -%.1f%%", p.StopLossPercent*100))
			} else {
				decision := strategy(Context{
					Price:      price,
					InPosition: true,
					EntryPrice: pos.entryPrice,
					Snapshot:   state.at(i),
				})
				if decision.Action == ActionSell {
					cash += sell(result, bar, &pos, decision.Reason)
				} else if lastBar {
					cash += sell(result, bar, &pos, "end of data")
				}
			}
		} else if !lastBar {
			decision := strategy(Context{
				Price:      price,
				InPosition: false,
				Snapshot:   state.at(i),
			})
			if decision.Action == ActionBuy {
				cash -= buy(result, bar, &pos, cash, decision.Reason)
			}
		}

		result.EquityCurve = append(result.EquityCurve, cash+float64(pos.shares)*price)
	}

	result.FinalCapital = cash
	summarize(result, clean)
	return result, nil
}

// buy sizes a whole-share position from the cash fraction and appends the
// fill. Returns the cash consumed (notional plus fee); zero when the budget
// cannot cover a single share.
func buy(r *Result, bar candle.Candle, pos *position, cash float64, reason string) float64 {
	budget := cash * positionFraction
	shares := int64(budget / bar.Close)
	if shares <= 0 {
		return 0
	}
	value := float64(shares) * bar.Close
	fees := value * buyFeeRate
	pos.shares = shares
	pos.entryPrice = bar.Close
	r.Trades = append(r.Trades, Trade{
		Type:   ActionBuy,
		Date:   bar.Timestamp,
		Price:  bar.Close,
		Shares: shares,
		Value:  value,
		Fees:   fees,
		Reason: reason,
	})
	return value + fees
}

// sell liquidates the full position and appends the fill with realized
// profit against the cost basis. Returns the net proceeds.
func sell(r *Result, bar candle.Candle, pos *position, reason string) float64 {
	value := float64(pos.shares) * bar.Close
	fees := value * sellFeeRate
	basis := float64(pos.shares) * pos.entryPrice
	profit := value - fees - basis
	profitPercent := 0.0
	if basis != 0 {
		profitPercent = profit / basis * 100
	}
	r.Trades = append(r.Trades, Trade{
		Type:          ActionSell,
		Date:          bar.Timestamp,
		Price:         bar.Close,
		Shares:        pos.shares,
		Value:         value,
		Fees:          fees,
		Profit:        profit,
		ProfitPercent: profitPercent,
		Reason:        reason,
	})
	pos.shares = 0
	pos.entryPrice = 0
	return value - fees
}

// summarize fills the performance statistics from the finished ledger and
// equity curve.
func summarize(r *Result, clean []candle.Candle) {
	grossWins, grossLosses := 0.0, 0.0
	for _, t := range r.Trades {
		if t.Type != ActionSell {
			continue
		}
		r.TotalTrades++
		if t.Profit > 0 {
			r.Wins++
			grossWins += t.Profit
		} else {
			r.Losses++
			grossLosses -= t.Profit
		}
	}

	if r.TotalTrades > 0 {
		r.WinRate = float64(r.Wins) / float64(r.TotalTrades) * 100
	}
	switch {
	case grossLosses > 0:
		r.ProfitFactor = ProfitFactor(grossWins / grossLosses)
	case grossWins > 0:
		r.ProfitFactor = ProfitFactor(math.Inf(1))
	default:
		r.ProfitFactor = 0
	}

	r.TotalReturn = (r.FinalCapital - r.InitialCapital) / r.InitialCapital * 100
	r.MaxDrawdown = maxDrawdown(r.EquityCurve)
	r.SharpeRatio = sharpeRatio(r.EquityCurve)

	warmupClose := clean[warmupBars].Close
	finalClose := clean[len(clean)-1].Close
	if warmupClose != 0 {
		r.BuyHoldReturn = (finalClose - warmupClose) / warmupClose * 100
	}

	r.IsViable = r.WinRate >= 50 && r.SharpeRatio > 0
}

// maxDrawdown is the largest peak-to-trough percentage decline of the
// running equity curve.
func maxDrawdown(equity []float64) float64 {
	worst, peak := 0.0, 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			dd := (peak - e) / peak * 100
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// sharpeRatio annualizes the mean and standard deviation of bar-to-bar
// equity returns. A flat curve has no variance and reads zero.
func sharpeRatio(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			return 0
		}
		returns = append(returns, equity[i]/equity[i-1]-1)
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	stddev := math.Sqrt(variance / float64(len(returns)))
	if stddev == 0 {
		return 0
	}

	annualMean := mean * tradingDaysPerYear
	annualStddev := stddev * math.Sqrt(tradingDaysPerYear)
	return (annualMean - riskFreeRate) / annualStddev
}

// indicatorState holds the full-series indicator outputs; at() re-aligns
// each output slice to an input bar index.
type indicatorState struct {
	rsi  *indicator.Result
	macd *indicator.MACDResult
	boll *indicator.BollingerResult
}

func newIndicatorState(clean []candle.Candle) indicatorState {
	return indicatorState{
		rsi:  indicator.RSI(clean, indicator.DefaultRSIPeriod),
		macd: indicator.MACD(clean, indicator.DefaultMACDFast, indicator.DefaultMACDSlow, indicator.DefaultMACDSignal),
		boll: indicator.BollingerBands(clean, indicator.DefaultBollingerPeriod, indicator.DefaultBollingerStdDev),
	}
}

// at projects each indicator series onto input bar i. Values the series
// cannot cover yet stay absent rather than defaulting to a misleading zero.
func (s indicatorState) at(i int) Snapshot {
	var snap Snapshot

	if s.rsi != nil {
		if idx := i - indicator.DefaultRSIPeriod; idx >= 0 && idx < len(s.rsi.Values) {
			snap.RSI = s.rsi.Values[idx]
			snap.HasRSI = true
		}
	}
	if s.macd != nil {
		offset := indicator.DefaultMACDSlow + indicator.DefaultMACDSignal - 2
		// The crossover strategies need the previous histogram value too.
		if idx := i - offset; idx >= 1 && idx < len(s.macd.Histogram) {
			snap.Histogram = s.macd.Histogram[idx]
			snap.PrevHistogram = s.macd.Histogram[idx-1]
			snap.HasMACD = true
		}
	}
	if s.boll != nil {
		if idx := i - (indicator.DefaultBollingerPeriod - 1); idx >= 0 && idx < len(s.boll.Middle) {
			snap.Upper = s.boll.Upper[idx]
			snap.Middle = s.boll.Middle[idx]
			snap.Lower = s.boll.Lower[idx]
			snap.HasBands = true
		}
	}
	return snap
}
