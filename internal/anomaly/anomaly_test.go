package anomaly

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trade-journal/internal/models"
)

func clock() time.Time {
	return time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)
}

func withPnL(pnls ...float64) []models.Trade {
	trades := make([]models.Trade, len(pnls))
	for i, p := range pnls {
		trades[i] = models.Trade{ID: uuid.New(), Symbol: "NQ", PnL: p}
	}
	return trades
}

func outlierSet(outlier float64) []models.Trade {
	pnls := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		pnls = append(pnls, 10)
	}
	return withPnL(append(pnls, outlier)...)
}

func TestDetect_Empty(t *testing.T) {
	assert.Empty(t, NewDetector(clock).Detect(nil, nil))
}

func TestDetect_IdenticalTradesUseStdFloor(t *testing.T) {
	assert.Empty(t, NewDetector(clock).Detect(withPnL(5, 5, 5, 5), nil))
}

func TestDetect_LargeLossIsCritical(t *testing.T) {
	trades := outlierSet(-1000)

	insights := NewDetector(clock).Detect(trades, nil)

	require.Len(t, insights, 1)
	in := insights[0]
	assert.Equal(t, models.SeverityCritical, in.Severity)
	assert.Equal(t, models.CategoryAnomaly, in.Category)
	assert.Equal(t, models.PriorityHigh, in.Priority)
	assert.Equal(t, []uuid.UUID{trades[20].ID}, in.TradeIDs)
	assert.Equal(t, clock(), in.CreatedAt)
	assert.LessOrEqual(t, in.ImpactScore, 10.0)
	assert.Less(t, in.Metadata["z_score"].(float64), -3.0)
}

func TestDetect_LargeWinIsInfo(t *testing.T) {
	insights := NewDetector(clock).Detect(outlierSet(1000), nil)

	require.Len(t, insights, 1)
	assert.Equal(t, models.SeverityInfo, insights[0].Severity)
	assert.Equal(t, models.PriorityLow, insights[0].Priority)
}

func TestBaseline_ZScore(t *testing.T) {
	base := NewBaseline(withPnL(10, 20, 30))

	assert.InDelta(t, 20.0, base.Mean, 1e-9)
	assert.InDelta(t, 0.0, base.ZScore(20), 1e-9)
	assert.Greater(t, base.ZScore(40), 0.0)
}
