package patterns

import (
	"strings"

	"github.com/yourusername/trade-journal/internal/models"
)

func detectStrategyDegradation(d *Detector, anchor *models.Trade, window []models.Trade) result {
	if anchor.Strategy == "" {
		return result{}
	}

	var history []models.Trade
	for i := range window {
		if window[i].Strategy == anchor.Strategy {
			history = append(history, window[i])
		}
	}
	if len(history) < d.cfg.DegradationMinTrades {
		return result{}
	}

	half := len(history) / 2
	older, newer := history[:half], history[half:]
	olderRate, newerRate := winRate(older), winRate(newer)
	olderAvg, newerAvg := avgPnL(older), avgPnL(newer)

	drop := olderRate - newerRate
	flipped := olderAvg > 0 && newerAvg < 0
	if percent(drop) <= percent(d.cfg.DegradationWinRateDrop) && !flipped {
		return result{}
	}

	return result{
		detected: true,
		affected: newer,
		metadata: map[string]interface{}{
			"strategy":       anchor.Strategy,
			"older_win_rate": percent(olderRate),
			"newer_win_rate": percent(newerRate),
			"drop":           percent(drop),
			"older_avg_pnl":  round2(olderAvg),
			"newer_avg_pnl":  round2(newerAvg),
			"sample_size":    len(history),
		},
		suggestions: []string{
			"Pause the strategy and paper trade it until it recovers",
			"Check whether market conditions changed since it last worked",
			"Cut position size on this strategy while reviewing it",
		},
	}
}

func detectStyleDrift(d *Detector, _ *models.Trade, window []models.Trade) result {
	if len(d.prefs.PreferredStyles) == 0 {
		return result{}
	}

	recent := lastN(window, d.cfg.StyleDriftWindow)
	counts := make(map[string]int)
	var offStyle []models.Trade
	for i := range recent {
		hold, ok := recent[i].HoldMinutes()
		if !ok {
			continue
		}
		style := models.StyleForHoldMinutes(hold)
		if d.prefs.PrefersStyle(style) {
			continue
		}
		counts[string(style)]++
		offStyle = append(offStyle, recent[i])
	}
	if len(offStyle) < d.cfg.StyleDriftMinOffStyle {
		return result{}
	}

	dominant, best := "", 0
	for _, style := range sortedKeys(counts) {
		if counts[style] > best {
			dominant, best = style, counts[style]
		}
	}

	preferred := make([]string, len(d.prefs.PreferredStyles))
	for i, s := range d.prefs.PreferredStyles {
		preferred[i] = string(s)
	}

	return result{
		detected: true,
		affected: offStyle,
		metadata: map[string]interface{}{
			"off_style_count":  len(offStyle),
			"sample_size":      len(recent),
			"dominant_style":   dominant,
			"preferred_styles": strings.Join(preferred, ", "),
		},
		suggestions: []string{
			"Re-read your trading plan and the holding periods it allows",
			"Tag each trade with its intended style before entry",
		},
	}
}

func detectLossAversion(d *Detector, _ *models.Trade, window []models.Trade) result {
	if len(window) < d.cfg.LossAversionMinTrades {
		return result{}
	}

	var winHold, lossHold, winSum, lossSum float64
	var winN, lossN, winCount, lossCount int
	var losing []models.Trade
	for i := range window {
		t := &window[i]
		hold, ok := t.HoldMinutes()
		switch {
		case t.IsWin():
			winSum += t.PnL
			winCount++
			if ok {
				winHold += hold
				winN++
			}
		case t.IsLoss():
			lossSum += t.PnL
			lossCount++
			losing = append(losing, *t)
			if ok {
				lossHold += hold
				lossN++
			}
		}
	}
	if winN < 3 || lossN < 3 {
		return result{}
	}

	avgWinHold := winHold / float64(winN)
	avgLossHold := lossHold / float64(lossN)
	avgWin := winSum / float64(winCount)
	avgLoss := lossSum / float64(lossCount)
	if avgWinHold <= 0 {
		return result{}
	}

	ratio := avgLossHold / avgWinHold
	if ratio < d.cfg.LossAversionHoldRatio || -avgLoss <= avgWin {
		return result{}
	}

	return result{
		detected: true,
		affected: losing,
		metadata: map[string]interface{}{
			"avg_winner_hold": round2(avgWinHold),
			"avg_loser_hold":  round2(avgLossHold),
			"hold_ratio":      round2(ratio),
			"avg_win":         round2(avgWin),
			"avg_loss":        round2(avgLoss),
		},
		suggestions: []string{
			"Place the stop-loss at entry and never move it further away",
			"Let winners run to target instead of closing them early",
		},
	}
}
