package models

import "github.com/google/uuid"

// RiskTolerance controls the per-trade risk ceiling used by position sizing
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// TradingStyle is a coarse holding-period classification
type TradingStyle string

const (
	StyleScalping        TradingStyle = "scalping"
	StyleDayTrading      TradingStyle = "day_trading"
	StyleSwingTrading    TradingStyle = "swing_trading"
	StylePositionTrading TradingStyle = "position_trading"
)

// StyleForHoldMinutes infers a trading style from a holding period
func StyleForHoldMinutes(minutes float64) TradingStyle {
	switch {
	case minutes < 15:
		return StyleScalping
	case minutes < 240:
		return StyleDayTrading
	case minutes < 1440:
		return StyleSwingTrading
	default:
		return StylePositionTrading
	}
}

// Preferences holds the user settings consumed read-only by the intelligence layer
type Preferences struct {
	UserID              uuid.UUID      `db:"user_id" json:"user_id"`
	RiskTolerance       RiskTolerance  `db:"risk_tolerance" json:"risk_tolerance" validate:"omitempty,oneof=conservative moderate aggressive"`
	PreferredStyles     []TradingStyle `db:"preferred_styles" json:"preferred_styles"`
	PreferredStrategies []string       `db:"preferred_strategies" json:"preferred_strategies"`
	CoachPersonality    string         `db:"coach_personality" json:"coach_personality"`
	AccountSize         float64        `db:"account_size" json:"account_size"`
}

// DefaultPreferences returns the settings used when a user has none stored
func DefaultPreferences(userID uuid.UUID) Preferences {
	return Preferences{
		UserID:           userID,
		RiskTolerance:    RiskModerate,
		CoachPersonality: "supportive",
	}
}

// PrefersStyle reports whether style is among the declared preferred styles
func (p *Preferences) PrefersStyle(style TradingStyle) bool {
	for _, s := range p.PreferredStyles {
		if s == style {
			return true
		}
	}
	return false
}
