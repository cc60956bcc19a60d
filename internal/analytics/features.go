package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trade-journal/internal/models"
)

// HourLabel formats the bucket key used by hour-of-day distributions
func HourLabel(hour int) string {
	return fmt.Sprintf("%d:00", hour)
}

// FeatureExtractor derives the FeatureMatrix consumed by insight generation
// and prediction
type FeatureExtractor struct {
	now func() time.Time
}

// NewFeatureExtractor creates an extractor. A nil clock means time.Now.
func NewFeatureExtractor(now func() time.Time) *FeatureExtractor {
	if now == nil {
		now = time.Now
	}
	return &FeatureExtractor{now: now}
}

// ExtractFeatures builds the feature matrix in a single pass. Missing metrics leave
// the performance summary zeroed.
func (e *FeatureExtractor) ExtractFeatures(userID, profileID uuid.UUID, trades []models.Trade, metrics *models.Metrics) models.FeatureMatrix {
	fm := models.FeatureMatrix{
		UserID:           userID,
		ProfileID:        profileID,
		HourDistribution: make(map[string]int),
		DayDistribution:  make(map[string]int),
		HourlyWinRate:    make(map[string]float64),
		Strategies:       make(map[string]*models.GroupStats),
		Setups:           make(map[string]*models.GroupStats),
		Symbols:          make(map[string]*models.GroupStats),
		TradeCount:       len(trades),
		GeneratedAt:      e.now().UTC(),
	}

	hourWins := make(map[string]int)
	for i := range trades {
		t := &trades[i]

		if t.HasTimestamp() {
			hour := HourLabel(t.EntryTime.Hour())
			fm.HourDistribution[hour]++
			fm.DayDistribution[t.EntryTime.Weekday().String()]++
			if t.IsWin() {
				hourWins[hour]++
			}
		}

		addToGroup(fm.Strategies, t.Strategy, t)
		addToGroup(fm.Setups, t.Setup, t)
		addToGroup(fm.Symbols, t.Symbol, t)
	}

	for hour, count := range fm.HourDistribution {
		fm.HourlyWinRate[hour] = float64(hourWins[hour]) / float64(count)
	}
	finishGroups(fm.Strategies)
	finishGroups(fm.Setups)
	finishGroups(fm.Symbols)

	if metrics != nil {
		fm.Performance = models.PerformanceSummary{
			WinRate:          metrics.WinRate,
			ProfitFactor:     metrics.ProfitFactor.Float(),
			AvgRR:            metrics.AvgRiskReward,
			MaxDrawdown:      metrics.MaxDrawdown,
			SharpeRatio:      metrics.SharpeRatio,
			ConsistencyScore: metrics.ConsistencyScore,
		}
	}

	return fm
}

func addToGroup(groups map[string]*models.GroupStats, key string, t *models.Trade) {
	if key == "" {
		return
	}
	g, ok := groups[key]
	if !ok {
		g = &models.GroupStats{Key: key}
		groups[key] = g
	}
	g.TradeCount++
	g.TotalPnL += t.PnL
	if t.IsWin() {
		g.Wins++
	} else if t.IsLoss() {
		g.Losses++
	}
}

func finishGroups(groups map[string]*models.GroupStats) {
	for _, g := range groups {
		if g.TradeCount == 0 {
			continue
		}
		g.WinRate = float64(g.Wins) / float64(g.TradeCount)
		g.AvgPnL = g.TotalPnL / float64(g.TradeCount)
	}
}
