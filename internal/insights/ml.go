package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yourusername/trade-journal/internal/models"
)

const (
	minHoursWithData     = 3
	minTradesPerHour     = 3
	minHourImprovement   = 0.05
	minSymbols           = 3
	consistencyCutoff    = 70.0
	profitFactorWarning  = 1.2
	profitFactorCritical = 1.0
	ruleFollowedWarning  = 0.8
	drawdownWarning      = 0.15
	drawdownCritical     = 0.25
)

// GenerateML runs the statistical sub-generators and returns their insights
// ordered by confidence*impact, highest first, ties broken by title
func (g *Generator) GenerateML(features models.FeatureMatrix, metrics *models.Metrics, patterns []models.DetectedPattern) []models.Insight {
	var out []models.Insight
	if in := g.TimeOfDay(features); in != nil {
		out = append(out, *in)
	}
	if in := g.StrategyComparison(features); in != nil {
		out = append(out, *in)
	}
	out = append(out, g.RiskChecks(features, metrics, patterns)...)
	if in := g.SymbolPerformance(features); in != nil {
		out = append(out, *in)
	}
	if in := g.Consistency(features, metrics); in != nil {
		out = append(out, *in)
	}
	if in := g.PositiveEdge(features, metrics); in != nil {
		out = append(out, *in)
	}

	SortByRank(out)
	return out
}

// SortByRank orders insights by confidence*impact descending, then title
func SortByRank(list []models.Insight) {
	sort.SliceStable(list, func(i, j int) bool {
		si, sj := list[i].RankScore(), list[j].RankScore()
		if si != sj {
			return si > sj
		}
		return list[i].Title < list[j].Title
	})
}

// TimeOfDay compares the best hour's win rate with the overall rate
func (g *Generator) TimeOfDay(f models.FeatureMatrix) *models.Insight {
	hours := make([]string, 0, len(f.HourDistribution))
	totalTrades, totalWins := 0, 0.0
	for hour, count := range f.HourDistribution {
		if count == 0 {
			continue
		}
		hours = append(hours, hour)
		totalTrades += count
		totalWins += f.HourlyWinRate[hour] * float64(count)
	}
	if len(hours) < minHoursWithData || totalTrades == 0 {
		return nil
	}
	sort.Strings(hours)

	overall := totalWins / float64(totalTrades)
	bestHour, bestRate := "", -1.0
	for _, hour := range hours {
		if f.HourDistribution[hour] < minTradesPerHour {
			continue
		}
		if rate := f.HourlyWinRate[hour]; rate > bestRate {
			bestHour, bestRate = hour, rate
		}
	}
	if bestHour == "" {
		return nil
	}

	improvement := bestRate - overall
	if points(improvement) < points(minHourImprovement) {
		return nil
	}

	in := g.newInsight(f.UserID, f.ProfileID, models.CategoryTiming, models.SeveritySuccess)
	in.Title = fmt.Sprintf("You trade best around %s", bestHour)
	in.Message = fmt.Sprintf(
		"Trades opened at %s win %.0f%% of the time against %.0f%% overall across %d trades. Consider focusing your session on this hour.",
		bestHour, bestRate*100, overall*100, f.HourDistribution[bestHour])
	in.Confidence = sampleConfidence(f.HourDistribution[bestHour])
	in.ImpactScore = clamp(improvement*50, 1, 10)
	in.Actions = []models.SuggestedAction{{Label: "Filter by hour", Action: "filter_hour"}}
	in.Metadata = map[string]interface{}{
		"best_hour":        bestHour,
		"best_win_rate":    round2(bestRate),
		"overall_win_rate": round2(overall),
		"improvement":      round2(improvement),
	}
	return &in
}

// StrategyComparison contrasts the best and worst strategies by average P&L
func (g *Generator) StrategyComparison(f models.FeatureMatrix) *models.Insight {
	groups := sortedGroups(f.Strategies)
	if len(groups) < 2 {
		return nil
	}
	best, worst := groups[0], groups[len(groups)-1]
	if best.AvgPnL <= 0 {
		return nil
	}

	in := g.newInsight(f.UserID, f.ProfileID, models.CategoryStrategy, models.SeverityInfo)
	in.Title = fmt.Sprintf("%s is your strongest strategy", best.Key)
	in.Message = fmt.Sprintf(
		"%s averages %.2f per trade over %d trades while %s averages %.2f over %d. Shift attention toward what is working.",
		best.Key, best.AvgPnL, best.TradeCount, worst.Key, worst.AvgPnL, worst.TradeCount)
	in.Confidence = sampleConfidence(best.TradeCount + worst.TradeCount)
	in.ImpactScore = clamp((best.AvgPnL-worst.AvgPnL)/math.Max(math.Abs(best.AvgPnL), 1)*3, 1, 10)
	in.Actions = []models.SuggestedAction{{Label: "Compare strategies", Action: "compare_strategies"}}
	in.Metadata = map[string]interface{}{
		"best_strategy":  best.Key,
		"best_avg_pnl":   round2(best.AvgPnL),
		"worst_strategy": worst.Key,
		"worst_avg_pnl":  round2(worst.AvgPnL),
	}
	return &in
}

// RiskChecks applies the fixed profit factor, rule discipline and drawdown
// limits
func (g *Generator) RiskChecks(f models.FeatureMatrix, m *models.Metrics, patterns []models.DetectedPattern) []models.Insight {
	if m == nil || m.TotalTrades == 0 {
		return nil
	}
	var out []models.Insight
	active := len(patterns)

	if pf := m.ProfitFactor.Float(); pf < profitFactorWarning {
		severity := models.SeverityWarning
		if pf < profitFactorCritical {
			severity = models.SeverityCritical
		}
		in := g.newInsight(f.UserID, f.ProfileID, models.CategoryRisk, severity)
		in.Title = "Profit factor is too low"
		in.Message = fmt.Sprintf(
			"Your profit factor is %s. Below %.1f the edge is too thin to survive commissions and bad streaks.",
			m.ProfitFactor.String(), profitFactorWarning)
		in.Confidence = sampleConfidence(m.TotalTrades)
		in.ImpactScore = 8
		in.Actions = []models.SuggestedAction{{Label: "Review losing trades", Action: "filter_losers"}}
		in.Metadata = map[string]interface{}{"profit_factor": round2(pf), "active_patterns": active}
		out = append(out, in)
	}

	if m.Accumulators.RuleTracked > 0 && points(m.RuleFollowedRate) < points(ruleFollowedWarning) {
		in := g.newInsight(f.UserID, f.ProfileID, models.CategoryRisk, models.SeverityWarning)
		in.Title = "Rules are not being followed"
		in.Message = fmt.Sprintf(
			"You followed your rules on %.0f%% of tracked trades. Aim for at least %.0f%%.",
			m.RuleFollowedRate*100, ruleFollowedWarning*100)
		in.Confidence = sampleConfidence(m.Accumulators.RuleTracked)
		in.ImpactScore = 7
		in.Actions = []models.SuggestedAction{{Label: "Open checklist", Action: "edit_checklist"}}
		in.Metadata = map[string]interface{}{"rule_followed_rate": round2(m.RuleFollowedRate), "active_patterns": active}
		out = append(out, in)
	}

	if dd := m.MaxDrawdownPercent; points(dd) > points(drawdownWarning) {
		severity := models.SeverityWarning
		if points(dd) > points(drawdownCritical) {
			severity = models.SeverityCritical
		}
		in := g.newInsight(f.UserID, f.ProfileID, models.CategoryRisk, severity)
		in.Title = "Drawdown is deep"
		in.Message = fmt.Sprintf(
			"Your maximum drawdown reached %.1f%% of peak equity (%.2f). Reduce size until equity recovers.",
			dd*100, m.MaxDrawdown)
		in.Confidence = sampleConfidence(m.TotalTrades)
		in.ImpactScore = clamp(dd*30, 1, 10)
		in.Actions = []models.SuggestedAction{{Label: "Open position size calculator", Action: "open_position_sizer"}}
		in.Metadata = map[string]interface{}{"max_drawdown_percent": round2(dd), "active_patterns": active}
		out = append(out, in)
	}

	return out
}

// SymbolPerformance highlights the top three symbols against any losing
// symbol among the bottom three
func (g *Generator) SymbolPerformance(f models.FeatureMatrix) *models.Insight {
	groups := sortedGroups(f.Symbols)
	if len(groups) < minSymbols {
		return nil
	}

	var top, losing []*models.GroupStats
	for _, s := range groups[:3] {
		if s.AvgPnL > 0 {
			top = append(top, s)
		}
	}
	for _, s := range groups[len(groups)-3:] {
		if s.AvgPnL < 0 {
			losing = append(losing, s)
		}
	}
	if len(top) == 0 || len(losing) == 0 {
		return nil
	}

	in := g.newInsight(f.UserID, f.ProfileID, models.CategoryPerformance, models.SeverityWarning)
	in.Title = fmt.Sprintf("%s is losing money", losing[len(losing)-1].Key)
	in.Message = fmt.Sprintf(
		"Your best symbols are %s. %s have a negative average P&L; consider removing them from your watchlist.",
		groupKeys(top), groupKeys(losing))
	count := 0
	for _, s := range losing {
		count += s.TradeCount
	}
	in.Confidence = sampleConfidence(count)
	in.ImpactScore = clamp(float64(len(losing))*3, 1, 10)
	in.Actions = []models.SuggestedAction{{Label: "Filter by symbol", Action: "filter_symbol"}}
	in.Metadata = map[string]interface{}{
		"top_symbols":    groupKeys(top),
		"losing_symbols": groupKeys(losing),
	}
	return &in
}

// Consistency flags erratic daily results
func (g *Generator) Consistency(f models.FeatureMatrix, m *models.Metrics) *models.Insight {
	if m == nil || m.TotalTrades == 0 || m.ConsistencyScore >= consistencyCutoff {
		return nil
	}

	severity := models.SeverityInfo
	if m.ConsistencyScore < 40 {
		severity = models.SeverityWarning
	}
	in := g.newInsight(f.UserID, f.ProfileID, models.CategoryPerformance, severity)
	in.Title = "Daily results are inconsistent"
	in.Message = fmt.Sprintf(
		"Your consistency score is %.0f out of 100 over %d trading days. Smaller, steadier positions smooth the equity curve.",
		m.ConsistencyScore, m.TradingDays)
	in.Confidence = sampleConfidence(m.TradingDays * 3)
	in.ImpactScore = clamp((consistencyCutoff-m.ConsistencyScore)/10, 1, 10)
	in.Metadata = map[string]interface{}{"consistency_score": m.ConsistencyScore}
	return &in
}

// PositiveEdge confirms a positive expectancy
func (g *Generator) PositiveEdge(f models.FeatureMatrix, m *models.Metrics) *models.Insight {
	if m == nil || m.Expectancy <= 0 {
		return nil
	}

	in := g.newInsight(f.UserID, f.ProfileID, models.CategoryOpportunity, models.SeveritySuccess)
	in.Title = "You have a positive edge"
	in.Message = fmt.Sprintf(
		"Each trade is worth %.2f on average with a %.0f%% win rate. Keep executing the same process.",
		m.Expectancy, m.WinRate*100)
	in.Confidence = sampleConfidence(m.TotalTrades)
	in.ImpactScore = 5
	in.Metadata = map[string]interface{}{"expectancy": round2(m.Expectancy)}
	return &in
}

// sortedGroups orders non-empty groups by average P&L descending, then key
func sortedGroups(groups map[string]*models.GroupStats) []*models.GroupStats {
	out := make([]*models.GroupStats, 0, len(groups))
	for _, gs := range groups {
		if gs != nil && gs.TradeCount > 0 {
			out = append(out, gs)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgPnL != out[j].AvgPnL {
			return out[i].AvgPnL > out[j].AvgPnL
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func groupKeys(groups []*models.GroupStats) string {
	keys := make([]string, len(groups))
	for i, gs := range groups {
		keys[i] = gs.Key
	}
	return strings.Join(keys, ", ")
}

// sampleConfidence grows with sample size and saturates at 0.95
func sampleConfidence(n int) float64 {
	return clamp(0.5+float64(n)/100, 0.5, 0.95)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// points converts a rate to percentage points rounded to one decimal
func points(rate float64) float64 {
	return math.Round(rate*1000) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
