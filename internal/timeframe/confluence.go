package timeframe

import "fmt"

// aggregate fuses per-granularity trends into a single direction. Three or
// more agreeing granularities make the call; anything less is MIXED. The
// bonus goes on top of the base strength only when the ladder's final
// (longest) entry carries data and agrees with the majority.
func aggregate(analyses []Analysis) Confluence {
	bullish, bearish, voting := 0, 0, 0
	for _, a := range analyses {
		if !a.HasData {
			continue
		}
		voting++
		switch a.Trend {
		case TrendBullish:
			bullish++
		case TrendBearish:
			bearish++
		}
	}

	ladderLen := len(analyses)
	if voting == 0 || ladderLen == 0 {
		return Confluence{Direction: DirectionMixed, Agreement: "no timeframe data"}
	}

	var trend Trend
	agree := 0
	switch {
	case bullish >= confluenceAgreement:
		trend, agree = TrendBullish, bullish
	case bearish >= confluenceAgreement:
		trend, agree = TrendBearish, bearish
	default:
		return Confluence{
			Direction: DirectionMixed,
			Agreement: fmt.Sprintf("%d bullish vs %d bearish of %d timeframes", bullish, bearish, voting),
		}
	}

	strength := float64(agree) / float64(ladderLen) * 100
	note := fmt.Sprintf("%d of %d timeframes %s", agree, ladderLen, trend)
	if longest := analyses[ladderLen-1]; longest.HasData && longest.Trend == trend {
		strength += longTimeframeBonus
		note += ", confirmed by the longest timeframe"
	}
	if strength > 100 {
		strength = 100
	}
	return Confluence{Direction: string(trend), Strength: strength, Agreement: note}
}

// recommend turns a confluence verdict into an actionable plan. Only strong
// confluence produces a BUY or SELL; the stop goes to the nearest support
// below price (for longs) when one sits inside the fallback band, otherwise
// a fixed percentage, and targets step out at risk multiples of the stop
// distance.
func recommend(report *Report) Recommendation {
	conf := report.Confluence
	price := report.CurrentPrice

	if price <= 0 || conf.Direction == DirectionMixed || conf.Strength < recommendationMinStrength {
		return Recommendation{
			Action: ActionWait,
			Reason: fmt.Sprintf("confluence %s at %.0f%% is not actionable", conf.Direction, conf.Strength),
		}
	}

	action := ActionBuy
	if conf.Direction == string(TrendBearish) {
		action = ActionSell
	}

	rec := Recommendation{
		Action:    action,
		EntryLow:  price * (1 - entryZonePercent),
		EntryHigh: price * (1 + entryZonePercent),
		Reason:    conf.Agreement,
	}

	if action == ActionBuy {
		rec.StopLoss = longStop(report, price)
		risk := price - rec.StopLoss
		for _, m := range riskMultiples {
			rec.Targets = append(rec.Targets, price+risk*m)
		}
	} else {
		rec.StopLoss = shortStop(report, price)
		risk := rec.StopLoss - price
		for _, m := range riskMultiples {
			rec.Targets = append(rec.Targets, price-risk*m)
		}
	}
	return rec
}

// longStop picks the tightest support below price across the ladder.
// Supports below the fallback level are ignored in favor of the fixed
// percentage stop.
func longStop(report *Report, price float64) float64 {
	fallback := price * (1 - stopFallbackPercent)
	best := 0.0
	for _, a := range report.Timeframes {
		if !a.HasData || a.Support <= 0 || a.Support >= price {
			continue
		}
		if a.Support >= fallback && a.Support > best {
			best = a.Support
		}
	}
	if best > 0 {
		return best
	}
	return fallback
}

// shortStop mirrors longStop with resistances above price.
func shortStop(report *Report, price float64) float64 {
	fallback := price * (1 + stopFallbackPercent)
	best := 0.0
	for _, a := range report.Timeframes {
		if !a.HasData || a.Resistance <= price {
			continue
		}
		if a.Resistance <= fallback && (best == 0 || a.Resistance < best) {
			best = a.Resistance
		}
	}
	if best > 0 {
		return best
	}
	return fallback
}
