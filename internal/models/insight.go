package models

import (
	"time"

	"github.com/google/uuid"
)

// InsightSeverity is the display severity of an insight
type InsightSeverity string

const (
	SeverityInfo     InsightSeverity = "info"
	SeveritySuccess  InsightSeverity = "success"
	SeverityWarning  InsightSeverity = "warning"
	SeverityCritical InsightSeverity = "critical"
)

// Rank orders severities from least to most serious
func (s InsightSeverity) Rank() int {
	switch s {
	case SeveritySuccess:
		return 0
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 1
	}
}

// InsightCategory groups insights for the presentation layer
type InsightCategory string

const (
	CategoryPattern     InsightCategory = "pattern"
	CategoryPsychology  InsightCategory = "psychology"
	CategoryTiming      InsightCategory = "timing"
	CategoryStrategy    InsightCategory = "strategy"
	CategoryRisk        InsightCategory = "risk"
	CategoryPerformance InsightCategory = "performance"
	CategoryAnomaly     InsightCategory = "anomaly"
	CategoryOpportunity InsightCategory = "opportunity"
)

// InsightPriority is derived from severity and drives ordering in feeds
type InsightPriority string

const (
	PriorityLow    InsightPriority = "low"
	PriorityMedium InsightPriority = "medium"
	PriorityHigh   InsightPriority = "high"
	PriorityUrgent InsightPriority = "urgent"
)

// SuggestedAction is a call to action attached to an insight
type SuggestedAction struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Insight is the user-facing explanation of a pattern or statistical finding
type Insight struct {
	ID          uuid.UUID              `db:"id" json:"id"`
	UserID      uuid.UUID              `db:"user_id" json:"user_id"`
	ProfileID   uuid.UUID              `db:"profile_id" json:"profile_id"`
	Category    InsightCategory        `db:"category" json:"category"`
	Severity    InsightSeverity        `db:"severity" json:"severity"`
	Priority    InsightPriority        `db:"priority" json:"priority"`
	Title       string                 `db:"title" json:"title"`
	Message     string                 `db:"message" json:"message"`
	Confidence  float64                `db:"confidence" json:"confidence"`
	ImpactScore float64                `db:"impact_score" json:"impact_score"`
	Actions     []SuggestedAction      `db:"actions" json:"actions"`
	PatternID   *uuid.UUID             `db:"pattern_id" json:"pattern_id,omitempty"`
	PatternType PatternType            `db:"pattern_type" json:"pattern_type,omitempty"`
	TradeIDs    []uuid.UUID            `db:"trade_ids" json:"trade_ids,omitempty"`
	Metadata    map[string]interface{} `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
}

// RankScore is the ordering key used for insight feeds
func (i *Insight) RankScore() float64 {
	return i.Confidence * i.ImpactScore
}

// PriorityForSeverity maps a display severity to a feed priority
func PriorityForSeverity(s InsightSeverity) InsightPriority {
	switch s {
	case SeverityCritical:
		return PriorityHigh
	case SeverityWarning:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
