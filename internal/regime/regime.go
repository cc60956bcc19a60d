// Package regime classifies the recent behavior of a trader's daily P&L.
package regime

import (
	"math"

	"github.com/yourusername/trade-journal/internal/analytics"
	"github.com/yourusername/trade-journal/internal/models"
)

const (
	lookbackTrades      = 100
	highVolatility      = 0.7
	lowVolatility       = 0.2
	trendThreshold      = 0.3
	minNormalizingScale = 1.0
)

// Analysis is the regime together with the scores it was derived from
type Analysis struct {
	Regime          models.MarketRegime `json:"regime"`
	TrendScore      float64             `json:"trend_score"`
	VolatilityScore float64             `json:"volatility_score"`
	Days            int                 `json:"days"`
}

// Detect returns the regime of the most recent trades
func Detect(trades []models.Trade, metrics *models.Metrics) models.MarketRegime {
	return Analyze(trades, metrics).Regime
}

// Analyze buckets the last 100 trades by day and scores the mean (trend) and
// standard deviation (volatility) of daily P&L against the largest absolute
// day. Volatility is checked before trend.
func Analyze(trades []models.Trade, metrics *models.Metrics) Analysis {
	sorted := analytics.SortChronological(trades)
	if len(sorted) > lookbackTrades {
		sorted = sorted[len(sorted)-lookbackTrades:]
	}

	days := analytics.DailyPnL(sorted)
	if len(days) == 0 {
		return Analysis{Regime: models.RegimeRanging}
	}

	daily := make([]float64, len(days))
	maxDay, minDay := math.Inf(-1), math.Inf(1)
	for i, d := range days {
		daily[i] = d.PnL
		maxDay = math.Max(maxDay, d.PnL)
		minDay = math.Min(minDay, d.PnL)
	}

	scale := math.Max(math.Max(math.Abs(maxDay), math.Abs(minDay)), minNormalizingScale)
	mean, sd := analytics.MeanStdDev(daily)

	a := Analysis{
		TrendScore:      mean / scale,
		VolatilityScore: sd / scale,
		Days:            len(days),
	}

	totalPnL := 0.0
	if metrics != nil {
		totalPnL = metrics.TotalPnL
	} else {
		for _, v := range daily {
			totalPnL += v
		}
	}

	switch {
	case a.VolatilityScore > highVolatility:
		a.Regime = models.RegimeHighVolatility
	case a.VolatilityScore < lowVolatility:
		a.Regime = models.RegimeLowVolatility
	case a.TrendScore > trendThreshold:
		a.Regime = models.RegimeWeakUptrend
		if totalPnL > 0 {
			a.Regime = models.RegimeStrongUptrend
		}
	case a.TrendScore < -trendThreshold:
		a.Regime = models.RegimeWeakDowntrend
		if totalPnL < 0 {
			a.Regime = models.RegimeStrongDowntrend
		}
	default:
		a.Regime = models.RegimeRanging
	}
	return a
}
