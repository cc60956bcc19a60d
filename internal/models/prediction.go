package models

import "github.com/google/uuid"

// Recommendation is the ordinal verdict of a trade prediction
type Recommendation string

const (
	RecommendStrongSkip Recommendation = "strong_skip" // reserved
	RecommendSkip       Recommendation = "skip"
	RecommendNeutral    Recommendation = "neutral"
	RecommendTake       Recommendation = "take"
	RecommendStrongTake Recommendation = "strong_take" // reserved
)

// TradeSetup is a hypothetical trade the user is considering
type TradeSetup struct {
	Symbol     string    `json:"symbol" validate:"required"`
	Side       TradeSide `json:"side,omitempty"`
	Setup      string    `json:"setup,omitempty"`
	Strategy   string    `json:"strategy,omitempty"`
	EntryPrice float64   `json:"entry_price,omitempty"`
	StopLoss   float64   `json:"stop_loss,omitempty"`
	Target     float64   `json:"target,omitempty"`
	Quantity   float64   `json:"quantity,omitempty"`
}

// TradePrediction is a request-scoped heuristic estimate. It blends historical
// win frequencies and is not a trained model.
type TradePrediction struct {
	UserID               uuid.UUID          `json:"user_id"`
	Symbol               string             `json:"symbol"`
	Setup                string             `json:"setup,omitempty"`
	WinProbability       float64            `json:"win_probability"`
	LossProbability      float64            `json:"loss_probability"`
	BreakEvenProbability float64            `json:"break_even_probability"`
	ExpectedPnL          float64            `json:"expected_pnl"`
	ExpectedRiskReward   float64            `json:"expected_risk_reward"`
	RiskScore            float64            `json:"risk_score"`
	Recommendation       Recommendation     `json:"recommendation"`
	Components           map[string]float64 `json:"components"`
	SampleSizes          map[string]int     `json:"sample_sizes"`
	Reasons              []string           `json:"reasons"`
}
