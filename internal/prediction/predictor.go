// Package prediction estimates the outcome of a prospective trade and sizes
// it. The win probability is a blend of historical win frequencies, not a
// trained classifier.
package prediction

import (
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/trade-journal/internal/analytics"
	"github.com/yourusername/trade-journal/internal/models"
)

const (
	takeThreshold = 0.6
	skipThreshold = 0.4
)

// Predictor blends overall, per-setup and per-symbol win rates
type Predictor struct {
	calc *analytics.Calculator
}

// NewPredictor creates a predictor
func NewPredictor() *Predictor {
	return &Predictor{calc: analytics.NewCalculator(nil)}
}

// Predict scores candidate against the trader's history. Missing metrics are
// computed from recent; missing features are ignored.
func (p *Predictor) Predict(candidate models.TradeSetup, recent []models.Trade, features *models.FeatureMatrix, metrics *models.Metrics) models.TradePrediction {
	if metrics == nil {
		m := p.calc.Calculate(recent)
		metrics = &m
	}

	overall := metrics.WinRate
	pred := models.TradePrediction{
		Symbol:      strings.ToUpper(candidate.Symbol),
		Setup:       candidate.Setup,
		Components:  map[string]float64{"overall": overall},
		SampleSizes: map[string]int{"overall": metrics.TotalTrades},
	}
	if len(recent) > 0 {
		pred.UserID = recent[0].UserID
	}

	setupRate, setupN := groupRate(recent, candidate.Setup, setupOf, features, setupGroups)
	if setupN == 0 {
		setupRate = overall
		pred.Reasons = append(pred.Reasons, "no history for this setup, using the overall win rate")
	}
	symbolRate, symbolN := groupRate(recent, pred.Symbol, symbolOf, features, symbolGroups)
	if symbolN == 0 {
		symbolRate = overall
		pred.Reasons = append(pred.Reasons, "no history for this symbol, using the overall win rate")
	}
	pred.Components["setup"] = setupRate
	pred.Components["symbol"] = symbolRate
	pred.SampleSizes["setup"] = setupN
	pred.SampleSizes["symbol"] = symbolN

	win := models.Clamp((overall+setupRate+symbolRate)/3, 0, 1)
	pred.WinProbability = win
	pred.LossProbability = 1 - win
	pred.BreakEvenProbability = 0

	risk := metrics.AvgRiskPerTrade
	rr := metrics.AvgRiskReward
	pred.ExpectedPnL = win*risk*rr - pred.LossProbability*risk
	pred.ExpectedRiskReward = rr
	if candidateRR, ok := plannedRiskReward(candidate); ok {
		pred.ExpectedRiskReward = candidateRR
		pred.Reasons = append(pred.Reasons, fmt.Sprintf("planned risk/reward is %.2f", candidateRR))
	}

	pred.RiskScore = RiskScore(metrics)
	pred.Recommendation = Recommend(win, pred.ExpectedPnL)
	pred.Reasons = append(pred.Reasons, fmt.Sprintf(
		"historical win frequency %.0f%% with expected P&L %.2f", win*100, pred.ExpectedPnL))

	return pred
}

// RiskScore is clamp(50 + maxDrawdownPercent*100 - consistency*0.2, 0, 100)
func RiskScore(m *models.Metrics) float64 {
	if m == nil {
		return 50
	}
	return models.Clamp(50+m.MaxDrawdownPercent*100-m.ConsistencyScore*0.2, 0, 100)
}

// Recommend applies the threshold ladder. strong_take and strong_skip are
// never produced.
func Recommend(winProbability, expectedPnL float64) models.Recommendation {
	switch {
	case winProbability > takeThreshold && expectedPnL > 0:
		return models.RecommendTake
	case winProbability < skipThreshold:
		return models.RecommendSkip
	default:
		return models.RecommendNeutral
	}
}

func plannedRiskReward(c models.TradeSetup) (float64, bool) {
	if c.EntryPrice <= 0 || c.StopLoss <= 0 || c.Target <= 0 {
		return 0, false
	}
	risk := math.Abs(c.EntryPrice - c.StopLoss)
	if risk == 0 {
		return 0, false
	}
	return math.Abs(c.Target-c.EntryPrice) / risk, true
}

func setupOf(t *models.Trade) string  { return t.Setup }
func symbolOf(t *models.Trade) string { return strings.ToUpper(t.Symbol) }

func setupGroups(f *models.FeatureMatrix) map[string]*models.GroupStats  { return f.Setups }
func symbolGroups(f *models.FeatureMatrix) map[string]*models.GroupStats { return f.Symbols }

// groupRate returns the win rate of trades matching key, falling back to the
// feature matrix rollup when the recent trades carry none
func groupRate(
	recent []models.Trade,
	key string,
	keyOf func(*models.Trade) string,
	features *models.FeatureMatrix,
	groupsOf func(*models.FeatureMatrix) map[string]*models.GroupStats,
) (float64, int) {
	if key == "" {
		return 0, 0
	}
	wins, n := 0, 0
	for i := range recent {
		if keyOf(&recent[i]) != key {
			continue
		}
		n++
		if recent[i].IsWin() {
			wins++
		}
	}
	if n > 0 {
		return float64(wins) / float64(n), n
	}
	if features != nil {
		if g, ok := groupsOf(features)[key]; ok && g != nil && g.TradeCount > 0 {
			return g.WinRate, g.TradeCount
		}
	}
	return 0, 0
}
