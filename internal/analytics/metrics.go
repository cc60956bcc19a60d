package analytics

import (
	"math"
	"time"

	"github.com/yourusername/trade-journal/internal/models"
)

// Calculator converts trade history into Metrics snapshots
type Calculator struct {
	now func() time.Time
}

// NewCalculator creates a calculator. A nil clock means time.Now.
func NewCalculator(now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now}
}

// Calculate recomputes every metric from the full trade list. The input is
// not reordered; streaks and drawdown are walked over a chronological copy.
func (c *Calculator) Calculate(trades []models.Trade) models.Metrics {
	m := models.Metrics{CalculatedAt: c.now().UTC()}
	if len(trades) == 0 {
		return m
	}

	sorted := SortChronological(trades)
	for i := range sorted {
		foldTrade(&m, &sorted[i])
	}
	finalize(&m)
	applyDaily(&m, DailyPnL(sorted))
	return m
}

// UpdateIncremental folds one new trade into a prior snapshot. Counts, sums,
// averages, streaks and drawdown are exact as long as the trade is newer than
// everything already folded in. Day-bucketed fields (consistency, Sharpe,
// Sortino, Calmar, trading days) keep their prior values until the next full
// Calculate.
func (c *Calculator) UpdateIncremental(prior models.Metrics, trade models.Trade) models.Metrics {
	m := prior
	foldTrade(&m, &trade)
	finalize(&m)
	m.CalculatedAt = c.now().UTC()
	return m
}

func foldTrade(m *models.Metrics, t *models.Trade) {
	acc := &m.Accumulators
	pnl := t.PnL

	m.TotalTrades++
	m.TotalPnL += pnl
	m.TotalCommission += t.Commission

	switch {
	case pnl > 0:
		m.WinningTrades++
		m.GrossProfit += pnl
		if pnl > m.LargestWin {
			m.LargestWin = pnl
		}
	case pnl < 0:
		m.LosingTrades++
		m.GrossLoss += -pnl
		if pnl < m.LargestLoss {
			m.LargestLoss = pnl
		}
	default:
		m.BreakEvenTrades++
	}

	if t.RiskRewardRatio != nil && *t.RiskRewardRatio > 0 {
		acc.RiskRewardSum += *t.RiskRewardRatio
		acc.RiskRewardCount++
	}
	if t.InitialRisk != nil && *t.InitialRisk > 0 {
		acc.InitialRiskSum += *t.InitialRisk
		acc.InitialRiskCount++
	}
	if hold, ok := t.HoldMinutes(); ok {
		acc.HoldMinutesSum += hold
		acc.HoldCount++
	}
	if t.RuleFollowed != nil {
		acc.RuleTracked++
		if *t.RuleFollowed {
			acc.RuleFollowed++
		}
	}

	foldStreak(m, pnl)
	foldDrawdown(m)

	if closed := t.ClosedAt(); !closed.IsZero() {
		if m.PeriodStart.IsZero() || closed.Before(m.PeriodStart) {
			m.PeriodStart = closed
		}
		if closed.After(m.PeriodEnd) {
			m.PeriodEnd = closed
		}
	}
}

// foldStreak advances the signed streak counter: positive for consecutive
// wins, negative for consecutive losses, 0 after a break-even trade.
func foldStreak(m *models.Metrics, pnl float64) {
	acc := &m.Accumulators
	s := m.CurrentStreak

	switch {
	case pnl > 0:
		if s > 0 {
			s++
		} else {
			if s < 0 {
				acc.LossSegments++
				acc.LossSegmentTotal += -s
			}
			s = 1
		}
	case pnl < 0:
		if s < 0 {
			s--
		} else {
			if s > 0 {
				acc.WinSegments++
				acc.WinSegmentTotal += s
			}
			s = -1
		}
	default:
		if s > 0 {
			acc.WinSegments++
			acc.WinSegmentTotal += s
		} else if s < 0 {
			acc.LossSegments++
			acc.LossSegmentTotal += -s
		}
		s = 0
	}

	m.CurrentStreak = s
	if s > m.LongestWinStreak {
		m.LongestWinStreak = s
	}
	if -s > m.LongestLossStreak {
		m.LongestLossStreak = -s
	}
}

// foldDrawdown walks the equity curve starting from zero equity
func foldDrawdown(m *models.Metrics) {
	acc := &m.Accumulators
	equity := m.TotalPnL
	if equity > acc.PeakEquity {
		acc.PeakEquity = equity
	}

	dd := acc.PeakEquity - equity
	m.CurrentDrawdown = dd
	if dd > m.MaxDrawdown {
		m.MaxDrawdown = dd
	}

	pct := dd / math.Max(math.Abs(acc.PeakEquity), 1)
	if pct > m.MaxDrawdownPercent {
		m.MaxDrawdownPercent = pct
	}
}

// finalize derives every ratio and average from the folded totals
func finalize(m *models.Metrics) {
	acc := &m.Accumulators
	total := float64(m.TotalTrades)
	if m.TotalTrades == 0 {
		return
	}

	m.WinRate = float64(m.WinningTrades) / total
	m.LossRate = 1 - m.WinRate
	m.AvgPnL = m.TotalPnL / total

	m.AvgWin = 0
	if m.WinningTrades > 0 {
		m.AvgWin = m.GrossProfit / float64(m.WinningTrades)
	}
	m.AvgLoss = 0
	if m.LosingTrades > 0 {
		m.AvgLoss = -m.GrossLoss / float64(m.LosingTrades)
	}

	m.ProfitFactor = models.NewRatio(m.GrossProfit, m.GrossLoss)
	m.Expectancy = m.WinRate*m.AvgWin + m.LossRate*m.AvgLoss

	if acc.RiskRewardCount > 0 {
		m.AvgRiskReward = acc.RiskRewardSum / float64(acc.RiskRewardCount)
	} else {
		m.AvgRiskReward = models.SafeDiv(m.AvgWin, math.Abs(m.AvgLoss))
	}
	if acc.InitialRiskCount > 0 {
		m.AvgRiskPerTrade = acc.InitialRiskSum / float64(acc.InitialRiskCount)
	} else {
		m.AvgRiskPerTrade = math.Abs(m.AvgLoss)
	}
	m.AvgHoldMinutes = models.SafeDiv(acc.HoldMinutesSum, float64(acc.HoldCount))
	m.RuleFollowedRate = models.SafeDiv(float64(acc.RuleFollowed), float64(acc.RuleTracked))

	winSegments, winTotal := acc.WinSegments, acc.WinSegmentTotal
	lossSegments, lossTotal := acc.LossSegments, acc.LossSegmentTotal
	if m.CurrentStreak > 0 {
		winSegments++
		winTotal += m.CurrentStreak
	} else if m.CurrentStreak < 0 {
		lossSegments++
		lossTotal += -m.CurrentStreak
	}
	m.AvgWinStreak = models.SafeDiv(float64(winTotal), float64(winSegments))
	m.AvgLossStreak = models.SafeDiv(float64(lossTotal), float64(lossSegments))

	m.RecoveryFactor = models.SafeDiv(m.TotalPnL, m.MaxDrawdown)
}

func applyDaily(m *models.Metrics, days []DayBucket) {
	daily := dailyValues(days)
	m.TradingDays = len(days)
	m.ConsistencyScore = ConsistencyScore(daily)
	m.SharpeRatio = SharpeRatio(daily)
	m.SortinoRatio = SortinoRatio(daily)
	m.CalmarRatio = CalmarRatio(m.TotalPnL, m.MaxDrawdown, m.TradingDays)
}
