package models

// MarketRegime is a coarse classification of recent P&L behavior
type MarketRegime string

const (
	RegimeStrongUptrend   MarketRegime = "strong_uptrend"
	RegimeWeakUptrend     MarketRegime = "weak_uptrend"
	RegimeStrongDowntrend MarketRegime = "strong_downtrend"
	RegimeWeakDowntrend   MarketRegime = "weak_downtrend"
	RegimeRanging         MarketRegime = "ranging"
	RegimeHighVolatility  MarketRegime = "high_volatility"
	RegimeLowVolatility   MarketRegime = "low_volatility"
	RegimeChoppy          MarketRegime = "choppy" // reserved
)
