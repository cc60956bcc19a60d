package models

import (
	"time"

	"github.com/google/uuid"
)

// Metrics is an aggregate performance snapshot over a trade collection
type Metrics struct {
	TotalTrades     int `json:"total_trades"`
	WinningTrades   int `json:"winning_trades"`
	LosingTrades    int `json:"losing_trades"`
	BreakEvenTrades int `json:"break_even_trades"`

	WinRate      float64 `json:"win_rate"`
	LossRate     float64 `json:"loss_rate"`
	ProfitFactor Ratio   `json:"profit_factor"`
	Expectancy   float64 `json:"expectancy"`

	TotalPnL        float64 `json:"total_pnl"`
	GrossProfit     float64 `json:"gross_profit"`
	GrossLoss       float64 `json:"gross_loss"`
	AvgPnL          float64 `json:"avg_pnl"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"` // negative
	LargestWin      float64 `json:"largest_win"`
	LargestLoss     float64 `json:"largest_loss"`
	TotalCommission float64 `json:"total_commission"`

	AvgRiskReward   float64 `json:"avg_risk_reward"`
	AvgRiskPerTrade float64 `json:"avg_risk_per_trade"`
	AvgHoldMinutes  float64 `json:"avg_hold_minutes"`

	MaxDrawdown        float64 `json:"max_drawdown"`
	MaxDrawdownPercent float64 `json:"max_drawdown_percent"`
	CurrentDrawdown    float64 `json:"current_drawdown"`
	SharpeRatio        float64 `json:"sharpe_ratio"`
	SortinoRatio       Ratio   `json:"sortino_ratio"`
	CalmarRatio        float64 `json:"calmar_ratio"`
	RecoveryFactor     float64 `json:"recovery_factor"`

	CurrentStreak     int     `json:"current_streak"`
	LongestWinStreak  int     `json:"longest_win_streak"`
	LongestLossStreak int     `json:"longest_loss_streak"`
	AvgWinStreak      float64 `json:"avg_win_streak"`
	AvgLossStreak     float64 `json:"avg_loss_streak"`

	RuleFollowedRate float64 `json:"rule_followed_rate"`
	ConsistencyScore float64 `json:"consistency_score"`
	TradingDays      int     `json:"trading_days"`

	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	CalculatedAt time.Time `json:"calculated_at"`

	Accumulators Accumulators `json:"accumulators"`
}

// Accumulators carries the running sums needed to fold one more trade into a
// snapshot without revisiting history.
type Accumulators struct {
	PeakEquity       float64 `json:"peak_equity"`
	RiskRewardSum    float64 `json:"risk_reward_sum"`
	RiskRewardCount  int     `json:"risk_reward_count"`
	InitialRiskSum   float64 `json:"initial_risk_sum"`
	InitialRiskCount int     `json:"initial_risk_count"`
	HoldMinutesSum   float64 `json:"hold_minutes_sum"`
	HoldCount        int     `json:"hold_count"`
	RuleTracked      int     `json:"rule_tracked"`
	RuleFollowed     int     `json:"rule_followed"`
	WinSegments      int     `json:"win_segments"`
	WinSegmentTotal  int     `json:"win_segment_total"`
	LossSegments     int     `json:"loss_segments"`
	LossSegmentTotal int     `json:"loss_segment_total"`
}

// AdvancedMetrics extends Metrics with tail-risk estimates and z-scores
type AdvancedMetrics struct {
	Metrics

	VaR95  float64 `json:"var_95"`
	VaR99  float64 `json:"var_99"`
	CVaR95 float64 `json:"cvar_95"`

	PnLMean        float64 `json:"pnl_mean"`
	PnLStdDev      float64 `json:"pnl_std_dev"`
	PnLZScore      float64 `json:"pnl_z_score"`
	WinRateZScore  float64 `json:"win_rate_z_score"`
	DrawdownZScore float64 `json:"drawdown_z_score"`
}

// GroupStats is a rollup of trades sharing a key (strategy, setup, symbol, hour)
type GroupStats struct {
	Key        string  `json:"key"`
	TradeCount int     `json:"trade_count"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"win_rate"`
	TotalPnL   float64 `json:"total_pnl"`
	AvgPnL     float64 `json:"avg_pnl"`
}

// PerformanceSummary mirrors selected Metrics fields inside a FeatureMatrix
type PerformanceSummary struct {
	WinRate          float64 `json:"win_rate"`
	ProfitFactor     float64 `json:"profit_factor"`
	AvgRR            float64 `json:"avg_rr"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	ConsistencyScore float64 `json:"consistency_score"`
}

// FeatureMatrix is a derived, non-authoritative view used by insight
// generation and prediction
type FeatureMatrix struct {
	UserID    uuid.UUID `json:"user_id"`
	ProfileID uuid.UUID `json:"profile_id"`

	HourDistribution map[string]int     `json:"hour_distribution"`
	DayDistribution  map[string]int     `json:"day_distribution"`
	HourlyWinRate    map[string]float64 `json:"hourly_win_rate"`

	Strategies map[string]*GroupStats `json:"strategies"`
	Setups     map[string]*GroupStats `json:"setups"`
	Symbols    map[string]*GroupStats `json:"symbols"`

	Performance PerformanceSummary `json:"performance"`

	TradeCount  int       `json:"trade_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// StrategyPerformance is one row of a strategy comparison
type StrategyPerformance struct {
	Strategy     string  `json:"strategy"`
	Rank         int     `json:"rank"`
	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"win_rate"`
	TotalPnL     float64 `json:"total_pnl"`
	AvgPnL       float64 `json:"avg_pnl"`
	ProfitFactor Ratio   `json:"profit_factor"`
	Expectancy   float64 `json:"expectancy"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	AvgRR        float64 `json:"avg_rr"`
}
