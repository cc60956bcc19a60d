package analytics

import (
	"math"

	"github.com/yourusername/trade-journal/internal/models"
)

const tradingDaysPerYear = 252

// ConsistencyScore rates daily P&L stability on a 0-100 scale:
// round(100 * clamp(mean / (2*stddev), 0, 1)). A zero stddev over at least
// one day counts as perfectly consistent.
func ConsistencyScore(daily []float64) float64 {
	if len(daily) == 0 {
		return 0
	}
	mean, sd := MeanStdDev(daily)
	ratio := 1.0
	if sd != 0 {
		ratio = mean / (2 * sd)
	}
	return math.Round(100 * models.Clamp(ratio, 0, 1))
}

// SharpeRatio annualizes the mean/stddev of daily P&L
func SharpeRatio(daily []float64) float64 {
	if len(daily) == 0 {
		return 0
	}
	mean, sd := MeanStdDev(daily)
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(tradingDaysPerYear)
}

// SortinoRatio annualizes mean daily P&L over downside deviation. With no
// losing days and a positive mean the ratio is unbounded.
func SortinoRatio(daily []float64) models.Ratio {
	if len(daily) == 0 {
		return models.Ratio{}
	}
	mean := average(daily)
	down := downsideStddev(daily)
	if down == 0 {
		if mean > 0 {
			return models.UnboundedRatio()
		}
		return models.Ratio{}
	}
	return models.Ratio{Value: mean / down * math.Sqrt(tradingDaysPerYear)}
}

// CalmarRatio compares annualized P&L with the maximum drawdown
func CalmarRatio(totalPnL, maxDrawdown float64, tradingDays int) float64 {
	if tradingDays == 0 || maxDrawdown == 0 {
		return 0
	}
	annualized := totalPnL / float64(tradingDays) * tradingDaysPerYear
	return annualized / maxDrawdown
}

// RiskOfRuin estimates the probability of losing the account when risking
// riskFraction per trade, using the classic fixed-fractional approximation
// ((1-edge)/(1+edge))^(1/riskFraction).
func RiskOfRuin(winRate, payoff, riskFraction float64) float64 {
	if riskFraction <= 0 {
		return 0
	}
	if winRate <= 0 || payoff <= 0 {
		return 1
	}
	edge := winRate*payoff - (1 - winRate)
	if edge <= 0 {
		return 1
	}
	edge = math.Min(edge/payoff, 0.999)
	ruin := math.Pow((1-edge)/(1+edge), 1/riskFraction)
	return models.Clamp(ruin, 0, 1)
}

// DrawdownSeries returns the peak-to-equity drawdown after each trade of a
// chronologically ordered slice
func DrawdownSeries(sorted []models.Trade) []float64 {
	series := make([]float64, len(sorted))
	equity, peak := 0.0, 0.0
	for i := range sorted {
		equity += sorted[i].PnL
		if equity > peak {
			peak = equity
		}
		series[i] = peak - equity
	}
	return series
}
