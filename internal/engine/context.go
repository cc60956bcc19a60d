package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/trade-journal/internal/analytics"
	"github.com/yourusername/trade-journal/internal/insights"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/regime"
)

// UnifiedContext is the cached working set of one user profile. It is the
// only mutable state the engine owns; every field is guarded by mu.
type UnifiedContext struct {
	mu sync.RWMutex

	UserID      uuid.UUID
	ProfileID   uuid.UUID
	Preferences models.Preferences

	Trades        []models.Trade
	RecentTrades  []models.Trade
	TodayTrades   []models.Trade
	SessionTrades []models.Trade

	Metrics    models.Metrics
	Advanced   *models.AdvancedMetrics
	Features   models.FeatureMatrix
	Strategies []models.StrategyPerformance
	Regime     regime.Analysis

	ActivePatterns []models.DetectedPattern
	History        []models.DetectedPattern
	Interactions   []models.PatternInteraction

	patternInsights []models.Insight
	mlInsights      []models.Insight
	anomalyInsights []models.Insight

	RiskScore float64
	BuiltAt   time.Time
	UpdatedAt time.Time

	// retired is set once RefreshAll has published a replacement
	retired bool
}

// Dashboard is a read-only copy of a UnifiedContext for rendering
type Dashboard struct {
	UserID    uuid.UUID `json:"user_id"`
	ProfileID uuid.UUID `json:"profile_id"`

	Metrics    models.Metrics               `json:"metrics"`
	Advanced   *models.AdvancedMetrics      `json:"advanced,omitempty"`
	Features   models.FeatureMatrix         `json:"features"`
	Strategies []models.StrategyPerformance `json:"strategies"`
	Regime     regime.Analysis              `json:"regime"`

	ActivePatterns []models.DetectedPattern    `json:"active_patterns"`
	Interactions   []models.PatternInteraction `json:"interactions"`
	Insights       []models.Insight            `json:"insights"`

	RiskScore float64 `json:"risk_score"`
	RiskLevel string  `json:"risk_level"`

	TodayPnL      float64        `json:"today_pnl"`
	TodayTrades   int            `json:"today_trades"`
	SessionTrades int            `json:"session_trades"`
	RecentTrades  []models.Trade `json:"recent_trades"`

	BuiltAt   time.Time `json:"built_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Insights returns the ranked insight feed
func (uc *UnifiedContext) Insights() []models.Insight {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.rankedInsights()
}

func (uc *UnifiedContext) rankedInsights() []models.Insight {
	out := make([]models.Insight, 0, len(uc.patternInsights)+len(uc.mlInsights)+len(uc.anomalyInsights))
	out = append(out, uc.patternInsights...)
	out = append(out, uc.mlInsights...)
	out = append(out, uc.anomalyInsights...)
	insights.SortByRank(out)
	return out
}

// Snapshot copies the context into a Dashboard
func (uc *UnifiedContext) Snapshot() *Dashboard {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	d := &Dashboard{
		UserID:         uc.UserID,
		ProfileID:      uc.ProfileID,
		Metrics:        uc.Metrics,
		Features:       uc.Features,
		Strategies:     append([]models.StrategyPerformance(nil), uc.Strategies...),
		Regime:         uc.Regime,
		ActivePatterns: append([]models.DetectedPattern(nil), uc.ActivePatterns...),
		Interactions:   append([]models.PatternInteraction(nil), uc.Interactions...),
		Insights:       uc.rankedInsights(),
		RiskScore:      uc.RiskScore,
		RiskLevel:      RiskLevel(uc.RiskScore),
		TodayTrades:    len(uc.TodayTrades),
		SessionTrades:  len(uc.SessionTrades),
		RecentTrades:   append([]models.Trade(nil), uc.RecentTrades...),
		BuiltAt:        uc.BuiltAt,
		UpdatedAt:      uc.UpdatedAt,
	}
	if uc.Advanced != nil {
		adv := *uc.Advanced
		d.Advanced = &adv
	}
	for i := range uc.TodayTrades {
		d.TodayPnL += uc.TodayTrades[i].PnL
	}
	return d
}

// containsTrade requires uc.mu to be held
func (uc *UnifiedContext) containsTrade(id uuid.UUID) bool {
	for i := range uc.Trades {
		if uc.Trades[i].ID == id {
			return true
		}
	}
	return false
}

// recentEmotions lists the pre-trade emotions of the newest trades, newest first
func (uc *UnifiedContext) recentEmotions(limit int) []string {
	var out []string
	for i := len(uc.RecentTrades) - 1; i >= 0 && len(out) < limit; i-- {
		if e := uc.RecentTrades[i].EmotionBefore; e != "" {
			out = append(out, e)
		}
	}
	return out
}

func tail(trades []models.Trade, n int) []models.Trade {
	if n <= 0 || len(trades) <= n {
		return append([]models.Trade(nil), trades...)
	}
	return append([]models.Trade(nil), trades[len(trades)-n:]...)
}

func tradesOnDay(trades []models.Trade, day time.Time) []models.Trade {
	var out []models.Trade
	for i := range trades {
		if trades[i].HasTimestamp() && analytics.DayOf(trades[i].ClosedAt()).Equal(day) {
			out = append(out, trades[i])
		}
	}
	return out
}
