package patterns

import (
	"strings"

	"github.com/yourusername/trade-journal/internal/analytics"
	"github.com/yourusername/trade-journal/internal/models"
)

var revengeEmotions = map[string]bool{
	"angry":      true,
	"frustrated": true,
	"revenge":    true,
	"tilted":     true,
}

func detectRevengeTrading(d *Detector, anchor *models.Trade, window []models.Trade) result {
	idx := anchorIndex(anchor, window)
	if idx < 1 || !anchor.HasTimestamp() {
		return result{}
	}
	prev := window[idx-1]
	if !prev.IsLoss() {
		return result{}
	}

	gap := anchor.EntryTime.Sub(prev.ClosedAt())
	if gap < 0 || gap > d.cfg.RevengeWindow {
		return result{}
	}

	sizeRatio := 0.0
	if prev.Quantity > 0 {
		sizeRatio = anchor.Quantity / prev.Quantity
	}
	emotion := strings.ToLower(anchor.EmotionBefore)
	if sizeRatio < d.cfg.RevengeSizeMultiplier && !revengeEmotions[emotion] {
		return result{}
	}

	metadata := map[string]interface{}{
		"minutes_since_loss": round2(gap.Minutes()),
		"previous_loss":      round2(prev.PnL),
		"size_ratio":         round2(sizeRatio),
	}
	if emotion != "" {
		metadata["emotion"] = emotion
	}

	return result{
		detected: true,
		affected: []models.Trade{prev, *anchor},
		metadata: metadata,
		suggestions: []string{
			"Take a mandatory break after any losing trade",
			"Never increase size on the trade that follows a loss",
			"Write down why the next trade meets your plan before entering it",
		},
	}
}

func detectOvertrading(d *Detector, anchor *models.Trade, window []models.Trade) result {
	anchorClose := anchor.ClosedAt()
	if anchorClose.IsZero() {
		return result{}
	}
	anchorDay := analytics.DayOf(anchorClose)

	days := analytics.DailyPnL(window)
	today := 0
	otherTotal, otherDays := 0, 0
	for _, b := range days {
		if b.Day.Equal(anchorDay) {
			today = b.Trades
			continue
		}
		otherTotal += b.Trades
		otherDays++
	}
	if otherDays < d.cfg.OvertradingMinDays {
		return result{}
	}

	avg := float64(otherTotal) / float64(otherDays)
	threshold := avg * d.cfg.OvertradingMultiplier
	if threshold < float64(d.cfg.OvertradingMinDaily) {
		threshold = float64(d.cfg.OvertradingMinDaily)
	}
	if float64(today) <= threshold {
		return result{}
	}

	var affected []models.Trade
	for i := range window {
		closed := window[i].ClosedAt()
		if !closed.IsZero() && analytics.DayOf(closed).Equal(anchorDay) {
			affected = append(affected, window[i])
		}
	}

	return result{
		detected: true,
		affected: affected,
		metadata: map[string]interface{}{
			"trades_today":  today,
			"daily_average": round2(avg),
			"threshold":     round2(threshold),
		},
		suggestions: []string{
			"Set a maximum number of trades per day and stop when it is reached",
			"Only take setups that are written in your trading plan",
		},
	}
}

func detectTilt(d *Detector, anchor *models.Trade, window []models.Trade) result {
	idx := anchorIndex(anchor, window)
	if idx < 0 || !anchor.IsLoss() {
		return result{}
	}

	streak := []models.Trade{window[idx]}
	for i := idx - 1; i >= 0; i-- {
		cur, later := window[i], streak[len(streak)-1]
		if !cur.IsLoss() {
			break
		}
		gap := later.EntryTime.Sub(cur.ClosedAt())
		if cur.ClosedAt().IsZero() || !later.HasTimestamp() || gap < 0 || gap > d.cfg.TiltMaxGap {
			break
		}
		streak = append(streak, cur)
	}
	if len(streak) < d.cfg.TiltMinLosses {
		return result{}
	}

	total := 0.0
	for i := range streak {
		total += streak[i].PnL
	}

	return result{
		detected: true,
		affected: streak,
		metadata: map[string]interface{}{
			"consecutive_losses": len(streak),
			"streak_loss":        round2(total),
		},
		suggestions: []string{
			"Stop trading for the rest of the session",
			"Set a daily loss limit that ends the session automatically",
			"Review the losing trades tomorrow with a clear head",
		},
	}
}

func detectPositionSizingError(d *Detector, anchor *models.Trade, window []models.Trade) result {
	size := anchor.Notional()
	if size <= 0 {
		return result{}
	}

	sum, n := 0.0, 0
	for i := range window {
		if window[i].ID == anchor.ID {
			continue
		}
		if v := window[i].Notional(); v > 0 {
			sum += v
			n++
		}
	}
	if n < d.cfg.SizingMinTrades {
		return result{}
	}

	avg := sum / float64(n)
	ratio := size / avg
	if ratio < d.cfg.SizingMultiplier {
		return result{}
	}

	return result{
		detected: true,
		affected: []models.Trade{*anchor},
		metadata: map[string]interface{}{
			"position_size": round2(size),
			"average_size":  round2(avg),
			"size_ratio":    round2(ratio),
		},
		suggestions: []string{
			"Size every position from a fixed percentage of the account",
			"Use the position size calculator before each entry",
		},
	}
}

func detectPlanDeviation(d *Detector, anchor *models.Trade, window []models.Trade) result {
	if anchor.RuleFollowed == nil || *anchor.RuleFollowed {
		return result{}
	}

	recent := lastN(window, d.cfg.PlanWindow)
	tracked, broken := 0, 0
	var affected []models.Trade
	for i := range recent {
		if recent[i].RuleFollowed == nil {
			continue
		}
		tracked++
		if !*recent[i].RuleFollowed {
			broken++
			affected = append(affected, recent[i])
		}
	}
	if tracked < d.cfg.PlanMinTracked {
		return result{}
	}

	rate := float64(broken) / float64(tracked)
	if rate < d.cfg.PlanBrokenRate {
		return result{}
	}

	return result{
		detected: true,
		affected: affected,
		metadata: map[string]interface{}{
			"broken_rate":   percent(rate),
			"rules_broken":  broken,
			"rules_tracked": tracked,
		},
		suggestions: []string{
			"Use a pre-trade checklist and skip any trade that fails it",
			"Review each broken rule and note what triggered it",
		},
	}
}
