package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trade-journal/internal/models"
)

func TestExtractFeatures_Distributions(t *testing.T) {
	ext := NewFeatureExtractor(fixedClock)
	trades := []models.Trade{
		tradeAt(50, baseTime),                      // Monday 10:00
		tradeAt(-20, baseTime.Add(15*time.Minute)), // Monday 10:15
		tradeAt(30, baseTime.AddDate(0, 0, 1).Add(4*time.Hour)),
	}
	trades[0].Strategy = "breakout"
	trades[1].Strategy = "breakout"
	trades[2].Symbol = "MSFT"

	fm := ext.ExtractFeatures(testUser, uuid.Nil, trades, nil)

	assert.Equal(t, 3, fm.TradeCount)
	assert.Equal(t, 2, fm.HourDistribution["10:00"])
	assert.Equal(t, 1, fm.HourDistribution["14:00"])
	assert.Equal(t, 2, fm.DayDistribution["Monday"])
	assert.Equal(t, 1, fm.DayDistribution["Tuesday"])
	assert.InDelta(t, 0.5, fm.HourlyWinRate["10:00"], 1e-9)
	assert.InDelta(t, 1.0, fm.HourlyWinRate["14:00"], 1e-9)

	require.Contains(t, fm.Strategies, "breakout")
	assert.Equal(t, 2, fm.Strategies["breakout"].TradeCount)
	assert.InDelta(t, 15.0, fm.Strategies["breakout"].AvgPnL, 1e-9)
	assert.Len(t, fm.Symbols, 2)
	assert.Empty(t, fm.Setups)
	assert.Equal(t, models.PerformanceSummary{}, fm.Performance)
}

func TestExtractFeatures_SkipsMissingTimestamps(t *testing.T) {
	ext := NewFeatureExtractor(fixedClock)
	trade := models.Trade{ID: uuid.New(), Symbol: "ES", PnL: 10}

	fm := ext.ExtractFeatures(testUser, uuid.Nil, []models.Trade{trade}, nil)

	assert.Empty(t, fm.HourDistribution)
	assert.Empty(t, fm.DayDistribution)
	assert.Equal(t, 1, fm.Symbols["ES"].TradeCount)
}

func TestExtractFeatures_WithMetrics(t *testing.T) {
	trades := dailyTrades(100, 50, -40)
	metrics := NewCalculator(fixedClock).Calculate(trades)

	fm := NewFeatureExtractor(fixedClock).ExtractFeatures(testUser, uuid.Nil, trades, &metrics)

	assert.InDelta(t, metrics.WinRate, fm.Performance.WinRate, 1e-9)
	assert.InDelta(t, 3.75, fm.Performance.ProfitFactor, 1e-9)
	assert.Equal(t, fixedClock(), fm.GeneratedAt)
}
