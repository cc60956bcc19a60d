// Package coach answers free-form questions about a trader's current state.
// The rule-based coach is always available; an LLM-backed coach can be layered
// on top and falls back to the rules on any failure.
package coach

import (
	"github.com/yourusername/trade-journal/internal/models"
)

// Snapshot is the slice of the unified context a coach reasons over
type Snapshot struct {
	Personality    string                   `json:"personality"`
	Metrics        models.Metrics           `json:"metrics"`
	Regime         models.MarketRegime      `json:"regime"`
	RiskScore      float64                  `json:"risk_score"`
	ActivePatterns []models.DetectedPattern `json:"active_patterns"`
	TodayTrades    []models.Trade           `json:"today_trades"`
	RecentEmotions []string                 `json:"recent_emotions"`
	TopInsights    []models.Insight         `json:"top_insights"`
}

// Response is a coach answer
type Response struct {
	Topic       string   `json:"topic"`
	Answer      string   `json:"answer"`
	Suggestions []string `json:"suggestions,omitempty"`
	Source      string   `json:"source"`
}

const (
	SourceRules = "rules"
	SourceLLM   = "llm"
)

func (s Snapshot) todayPnL() float64 {
	total := 0.0
	for i := range s.TodayTrades {
		total += s.TodayTrades[i].PnL
	}
	return total
}

func (s Snapshot) hasPattern(types ...models.PatternType) (models.DetectedPattern, bool) {
	for _, p := range s.ActivePatterns {
		for _, t := range types {
			if p.Type == t {
				return p, true
			}
		}
	}
	return models.DetectedPattern{}, false
}
