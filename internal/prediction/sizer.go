package prediction

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/yourusername/trade-journal/internal/models"
)

// Risk ceilings per trade as a fraction of the account
var riskCeilings = map[models.RiskTolerance]float64{
	models.RiskConservative: 0.005,
	models.RiskModerate:     0.01,
	models.RiskAggressive:   0.02,
}

// SizingRequest describes the trade to size. StopLossPercent is used when the
// entry and stop prices are not both given.
type SizingRequest struct {
	AccountSize     float64              `json:"account_size" validate:"gt=0"`
	RiskTolerance   models.RiskTolerance `json:"risk_tolerance"`
	WinRate         float64              `json:"win_rate" validate:"gte=0,lte=1"`
	AvgRiskReward   float64              `json:"avg_risk_reward" validate:"gte=0"`
	EntryPrice      float64              `json:"entry_price" validate:"gte=0"`
	StopLoss        float64              `json:"stop_loss" validate:"gte=0"`
	StopLossPercent float64              `json:"stop_loss_percent" validate:"gte=0"`
}

// SizingResult is the recommended size. Money fields are rounded to cents.
type SizingResult struct {
	KellyFraction   float64 `json:"kelly_fraction"`
	HalfKelly       float64 `json:"half_kelly"`
	RiskCeiling     float64 `json:"risk_ceiling"`
	RiskFraction    float64 `json:"risk_fraction"`
	RiskAmount      float64 `json:"risk_amount"`
	StopLossPercent float64 `json:"stop_loss_percent"`
	PositionValue   float64 `json:"position_value"`
	Shares          float64 `json:"shares"`
	Capped          bool    `json:"capped"`
}

// PositionSizer applies half-Kelly sizing under a risk-tolerance ceiling
type PositionSizer struct{}

// NewPositionSizer creates a sizer
func NewPositionSizer() *PositionSizer {
	return &PositionSizer{}
}

// Kelly returns max(0, winRate - (1-winRate)/riskReward)
func Kelly(winRate, riskReward float64) float64 {
	if riskReward <= 0 {
		return 0
	}
	return math.Max(0, winRate-(1-winRate)/riskReward)
}

// RiskCeiling returns the per-trade ceiling for a tolerance, moderate when
// unknown
func RiskCeiling(t models.RiskTolerance) float64 {
	if c, ok := riskCeilings[t]; ok {
		return c
	}
	return riskCeilings[models.RiskModerate]
}

// Size computes the recommended risk and position size
func (s *PositionSizer) Size(req SizingRequest) SizingResult {
	res := SizingResult{
		KellyFraction: Kelly(req.WinRate, req.AvgRiskReward),
		RiskCeiling:   RiskCeiling(req.RiskTolerance),
	}
	res.HalfKelly = res.KellyFraction / 2
	res.RiskFraction = res.HalfKelly
	if res.RiskFraction > res.RiskCeiling {
		res.RiskFraction = res.RiskCeiling
		res.Capped = true
	}
	if req.AccountSize <= 0 {
		return res
	}

	res.RiskAmount = cents(decimal.NewFromFloat(req.AccountSize).Mul(decimal.NewFromFloat(res.RiskFraction)))

	stopPct := req.StopLossPercent
	if req.EntryPrice > 0 && req.StopLoss > 0 {
		stopPct = math.Abs(req.EntryPrice-req.StopLoss) / req.EntryPrice
	}
	res.StopLossPercent = stopPct
	if stopPct <= 0 {
		return res
	}

	value := decimal.NewFromFloat(req.AccountSize).
		Mul(decimal.NewFromFloat(res.RiskFraction)).
		Div(decimal.NewFromFloat(stopPct))
	res.PositionValue = cents(value)

	if req.EntryPrice > 0 {
		shares, _ := value.Div(decimal.NewFromFloat(req.EntryPrice)).Floor().Float64()
		res.Shares = shares
	}
	return res
}

func cents(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
