package analytics

import (
	"math"
	"sort"

	"github.com/yourusername/trade-journal/internal/models"
)

const recentWinRateWindow = 20

// CalculateAdvanced adds empirical tail-risk estimates and z-scores against
// the trader's own history to the base metrics
func (c *Calculator) CalculateAdvanced(trades []models.Trade) models.AdvancedMetrics {
	adv := models.AdvancedMetrics{Metrics: c.Calculate(trades)}
	n := len(trades)
	if n == 0 {
		return adv
	}

	sorted := SortChronological(trades)
	pnls := PnLValues(sorted)

	adv.VaR95, adv.CVaR95 = valueAtRisk(pnls, 0.95)
	adv.VaR99, _ = valueAtRisk(pnls, 0.99)

	mean, sd := MeanStdDev(pnls)
	adv.PnLMean = mean
	adv.PnLStdDev = sd
	adv.PnLZScore = zScore(pnls[n-1], mean, sd)

	k := recentWinRateWindow
	if k > n {
		k = n
	}
	recent := winRateOf(sorted[n-k:])
	p := adv.WinRate
	adv.WinRateZScore = zScore(recent, p, math.Sqrt(p*(1-p)/float64(k)))

	ddMean, ddSD := MeanStdDev(DrawdownSeries(sorted))
	adv.DrawdownZScore = zScore(adv.CurrentDrawdown, ddMean, ddSD)

	return adv
}

// valueAtRisk reads the empirical quantile by position (no interpolation) and
// the mean of every value at or below that position
func valueAtRisk(pnls []float64, level float64) (float64, float64) {
	if len(pnls) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), pnls...)
	sort.Float64s(sorted)

	index := int(math.Floor((1 - level) * float64(len(sorted))))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index], average(sorted[:index+1])
}

func zScore(value, mean, sd float64) float64 {
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return (value - mean) / sd
}
