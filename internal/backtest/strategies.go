package backtest

import (
	"fmt"
	"sort"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/indicator"
)

// Trade actions. ActionHold is only ever returned by strategies, never
// recorded in the ledger.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)

// confluenceVotesRequired sub-signals must agree before the confluence
// strategy acts.
const confluenceVotesRequired = 2

// Snapshot is the indicator state aligned to one bar. Has* flags distinguish
// "not enough history yet" from a real zero.
type Snapshot struct {
	RSI           float64
	HasRSI        bool
	Histogram     float64
	PrevHistogram float64
	HasMACD       bool
	Upper         float64
	Middle        float64
	Lower         float64
	HasBands      bool
}

// Context is what a strategy sees on each bar.
type Context struct {
	Price      float64
	InPosition bool
	EntryPrice float64
	Snapshot
}

// Decision is a strategy's verdict for one bar.
type Decision struct {
	Action string
	Reason string
}

func hold() Decision { return Decision{Action: ActionHold} }

// StrategyFunc evaluates one bar. Implementations must be pure: same
// context, same decision.
type StrategyFunc func(Context) Decision

var strategies = map[string]StrategyFunc{
	"rsi_reversal":     rsiReversal,
	"macd_cross":       macdCross,
	"bollinger_bounce": bollingerBounce,
	"confluence":       confluenceVote,
}

// Strategies lists the registered strategy names, sorted.
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// rsiReversal buys oversold and sells overbought.
func rsiReversal(ctx Context) Decision {
	if !ctx.HasRSI {
		return hold()
	}
	if !ctx.InPosition && ctx.RSI < indicator.RSIOversold {
		return Decision{ActionBuy, fmt.Sprintf("RSI %.1f oversold", ctx.RSI)}
	}
	if ctx.InPosition && ctx.RSI > indicator.RSIOverbought {
		return Decision{ActionSell, fmt.Sprintf("RSI %.1f overbought", ctx.RSI)}
	}
	return hold()
}

// macdCross trades histogram sign flips: buy on the bar the histogram turns
// non-negative, sell on the bar it turns non-positive. The sign test matches
// the crossover classification the indicator reports.
func macdCross(ctx Context) Decision {
	if !ctx.HasMACD {
		return hold()
	}
	if !ctx.InPosition && ctx.PrevHistogram < 0 && ctx.Histogram >= 0 {
		return Decision{ActionBuy, "MACD histogram crossed bullish"}
	}
	if ctx.InPosition && ctx.PrevHistogram > 0 && ctx.Histogram <= 0 {
		return Decision{ActionSell, "MACD histogram crossed bearish"}
	}
	return hold()
}

// bollingerBounce buys at or below the lower band and sells at or above the
// upper. Degenerate bands (flat series collapses them onto the price) never
// trade.
func bollingerBounce(ctx Context) Decision {
	if !ctx.HasBands || ctx.Upper <= ctx.Lower {
		return hold()
	}
	if !ctx.InPosition && ctx.Price <= ctx.Lower {
		return Decision{ActionBuy, "price at lower Bollinger band"}
	}
	if ctx.InPosition && ctx.Price >= ctx.Upper {
		return Decision{ActionSell, "price at upper Bollinger band"}
	}
	return hold()
}

// confluenceVote acts only when at least two of the three sub-signals (RSI
// reversal, MACD flip, Bollinger touch) agree on the same direction.
func confluenceVote(ctx Context) Decision {
	buyVotes, sellVotes := 0, 0

	if ctx.HasRSI {
		if ctx.RSI < indicator.RSIOversold {
			buyVotes++
		} else if ctx.RSI > indicator.RSIOverbought {
			sellVotes++
		}
	}
	if ctx.HasMACD {
		if ctx.PrevHistogram < 0 && ctx.Histogram >= 0 {
			buyVotes++
		} else if ctx.PrevHistogram > 0 && ctx.Histogram <= 0 {
			sellVotes++
		}
	}
	if ctx.HasBands && ctx.Upper > ctx.Lower {
		if ctx.Price <= ctx.Lower {
			buyVotes++
		} else if ctx.Price >= ctx.Upper {
			sellVotes++
		}
	}

	if !ctx.InPosition && buyVotes >= confluenceVotesRequired {
		return Decision{ActionBuy, fmt.Sprintf("%d of 3 signals bullish", buyVotes)}
	}
	if ctx.InPosition && sellVotes >= confluenceVotesRequired {
		return Decision{ActionSell, fmt.Sprintf("%d of 3 signals bearish", sellVotes)}
	}
	return hold()
}
