package patterns

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trade-journal/internal/models"
)

var (
	testUser    = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testProfile = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	// 2024-01-01 is a Monday
	firstMonday = time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)}
}

// trade opens at `at`, holds for 20 minutes and carries a stop-loss so that it
// stays clear of the news detector
func trade(at time.Time, pnl float64) models.Trade {
	exit := at.Add(20 * time.Minute)
	stop := 95.0
	return models.Trade{
		ID:         uuid.New(),
		UserID:     testUser,
		ProfileID:  testProfile,
		Symbol:     "AAPL",
		Side:       models.TradeSideLong,
		EntryPrice: 100,
		Quantity:   10,
		EntryTime:  at,
		ExitTime:   &exit,
		StopLoss:   &stop,
		PnL:        pnl,
	}
}

// held is trade with an explicit holding period
func held(at time.Time, pnl float64, hold time.Duration) models.Trade {
	t := trade(at, pnl)
	exit := at.Add(hold)
	t.ExitTime = &exit
	return t
}

func outcome(win bool) float64 {
	if win {
		return 100
	}
	return -50
}

func types(found []models.DetectedPattern) []models.PatternType {
	out := make([]models.PatternType, len(found))
	for i := range found {
		out[i] = found[i].Type
	}
	return out
}

func find(found []models.DetectedPattern, t models.PatternType) *models.DetectedPattern {
	for i := range found {
		if found[i].Type == t {
			return &found[i]
		}
	}
	return nil
}

// mondayScenario builds 12 Monday trades at a 25% win rate and 30 Tuesday to
// Thursday trades at a 66.7% win rate
func mondayScenario() []models.Trade {
	var trades []models.Trade
	for w := 0; w < 12; w++ {
		trades = append(trades, trade(firstMonday.AddDate(0, 0, 7*w), outcome(w < 3)))
	}
	for w := 0; w < 10; w++ {
		for k := 1; k <= 3; k++ {
			trades = append(trades, trade(firstMonday.AddDate(0, 0, 7*w+k), outcome((w*3+k)%3 != 0)))
		}
	}
	return trades
}

// weekdayScenario builds `mondays` Monday trades with the first mondayWins
// winning, followed by 30 Tuesday to Thursday trades with the first otherWins
// winning
func weekdayScenario(mondays, mondayWins, otherWins int) []models.Trade {
	var trades []models.Trade
	for w := 0; w < mondays; w++ {
		trades = append(trades, trade(firstMonday.AddDate(0, 0, 7*w), outcome(w < mondayWins)))
	}
	for i := 0; i < 30; i++ {
		trades = append(trades, trade(firstMonday.AddDate(0, 0, 7*(i/3)+i%3+1), outcome(i < otherWins)))
	}
	return trades
}

// fridayScenario adds Friday trades to 30 Tuesday to Thursday trades of which
// 21 win. The first `afternoon` Fridays open at 15:00, the rest at 10:00, and
// the first fridayWins of them win.
func fridayScenario(fridays, afternoon, fridayWins int) []models.Trade {
	trades := weekdayScenario(0, 0, 21)
	for w := 0; w < fridays; w++ {
		at := firstMonday.AddDate(0, 0, 7*w+4)
		if w < afternoon {
			at = at.Add(5 * time.Hour)
		}
		trades = append(trades, trade(at, outcome(w < fridayWins)))
	}
	return trades
}
