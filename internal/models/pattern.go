package models

import (
	"time"

	"github.com/google/uuid"
)

// PatternType is the closed set of behavioral and statistical anomalies
type PatternType string

const (
	PatternRevengeTrading      PatternType = "revenge_trading"
	PatternOvertrading         PatternType = "overtrading"
	PatternMondaySyndrome      PatternType = "monday_syndrome"
	PatternFridayCarelessness  PatternType = "friday_carelessness"
	PatternNewsTrading         PatternType = "news_trading"
	PatternStrategyDegradation PatternType = "strategy_degradation"
	PatternStyleDrift          PatternType = "style_drift"
	PatternFOMO                PatternType = "fomo"
	PatternTilt                PatternType = "tilt"
	PatternLossAversion        PatternType = "loss_aversion"
	PatternPositionSizingError PatternType = "position_sizing_error"
	PatternCorrelationExposure PatternType = "correlation_exposure"
	PatternTimeDecay           PatternType = "time_decay"
	PatternPlanDeviation       PatternType = "plan_deviation"
)

// AllPatternTypes lists every pattern type in a stable order
var AllPatternTypes = []PatternType{
	PatternRevengeTrading,
	PatternOvertrading,
	PatternMondaySyndrome,
	PatternFridayCarelessness,
	PatternNewsTrading,
	PatternStrategyDegradation,
	PatternStyleDrift,
	PatternFOMO,
	PatternTilt,
	PatternLossAversion,
	PatternPositionSizingError,
	PatternCorrelationExposure,
	PatternTimeDecay,
	PatternPlanDeviation,
}

// Valid reports whether p belongs to the closed set
func (p PatternType) Valid() bool {
	for _, known := range AllPatternTypes {
		if known == p {
			return true
		}
	}
	return false
}

// DetectedPattern is one detection event of a pattern type
type DetectedPattern struct {
	ID             uuid.UUID              `db:"id" json:"id"`
	UserID         uuid.UUID              `db:"user_id" json:"user_id"`
	ProfileID      uuid.UUID              `db:"profile_id" json:"profile_id"`
	Type           PatternType            `db:"pattern_type" json:"type"`
	Severity       int                    `db:"severity" json:"severity" validate:"min=1,max=10"`
	Confidence     float64                `db:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	EstimatedCost  float64                `db:"estimated_cost" json:"estimated_cost"`
	TradesAffected []uuid.UUID            `db:"trades_affected" json:"trades_affected"`
	Metadata       map[string]interface{} `db:"metadata" json:"metadata"`
	Suggestions    []string               `db:"suggestions" json:"suggestions"`
	DetectedAt     time.Time              `db:"detected_at" json:"detected_at"`
}

// PatternInteraction describes the combined risk of co-occurring patterns
type PatternInteraction struct {
	Patterns         []PatternType `json:"patterns"`
	CombinedSeverity int           `json:"combined_severity"`
	RiskMultiplier   float64       `json:"risk_multiplier"`
	Description      string        `json:"description"`
	Recommendation   string        `json:"recommendation"`
	DetectedAt       time.Time     `json:"detected_at"`
}
