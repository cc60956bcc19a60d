package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trade-journal/internal/models"
)

var (
	testUser = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	baseTime = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC) // Monday
)

func fixedClock() time.Time {
	return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func tradeAt(pnl float64, at time.Time) models.Trade {
	exit := at.Add(30 * time.Minute)
	return models.Trade{
		ID:        uuid.New(),
		UserID:    testUser,
		Symbol:    "AAPL",
		Side:      models.TradeSideLong,
		EntryTime: at,
		ExitTime:  &exit,
		PnL:       pnl,
	}
}

// dailyTrades places one trade per day starting at baseTime
func dailyTrades(pnls ...float64) []models.Trade {
	trades := make([]models.Trade, len(pnls))
	for i, p := range pnls {
		trades[i] = tradeAt(p, baseTime.AddDate(0, 0, i))
	}
	return trades
}

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }
