package analytics

import (
	"sort"

	"github.com/yourusername/trade-journal/internal/models"
)

const unclassifiedStrategy = "unclassified"

// CompareStrategies computes a metrics row per strategy and ranks them by
// expectancy, then total P&L, then name
func (c *Calculator) CompareStrategies(trades []models.Trade) []models.StrategyPerformance {
	groups := make(map[string][]models.Trade)
	for i := range trades {
		key := trades[i].Strategy
		if key == "" {
			key = unclassifiedStrategy
		}
		groups[key] = append(groups[key], trades[i])
	}

	rows := make([]models.StrategyPerformance, 0, len(groups))
	for name, group := range groups {
		m := c.Calculate(group)
		rows = append(rows, models.StrategyPerformance{
			Strategy:     name,
			TotalTrades:  m.TotalTrades,
			WinRate:      m.WinRate,
			TotalPnL:     m.TotalPnL,
			AvgPnL:       m.AvgPnL,
			ProfitFactor: m.ProfitFactor,
			Expectancy:   m.Expectancy,
			MaxDrawdown:  m.MaxDrawdown,
			AvgRR:        m.AvgRiskReward,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Expectancy != rows[j].Expectancy {
			return rows[i].Expectancy > rows[j].Expectancy
		}
		if rows[i].TotalPnL != rows[j].TotalPnL {
			return rows[i].TotalPnL > rows[j].TotalPnL
		}
		return rows[i].Strategy < rows[j].Strategy
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
