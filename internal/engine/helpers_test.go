package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trade-journal/internal/cache"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/patterns"
	"github.com/yourusername/trade-journal/internal/repository"
)

var (
	testUser    = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	testProfile = uuid.MustParse("55555555-5555-5555-5555-555555555555")
	// 2024-01-01 is a Monday
	firstMonday = time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	// 2024-06-03 is a Monday as well
	sessionDay = time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC)}
}

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
		CreatedAt:  at,
	}
}

func outcome(win bool) float64 {
	if win {
		return 100
	}
	return -50
}

// mondayScenario is 12 Mondays at a 25% win rate against 30 other weekdays
// at 66.7%, enough to trigger monday syndrome and nothing else
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

func seededRepos(trades []models.Trade) *repository.Repositories {
	repos := repository.NewMemoryRepositories()
	for i := range trades {
		if err := repos.Trade.Create(context.Background(), &trades[i]); err != nil {
			panic(err)
		}
	}
	return repos
}

func newTestEngine(clock *fakeClock, repos *repository.Repositories) *Engine {
	return New(Dependencies{Repos: repos, Clock: clock.Now}, DefaultOptions())
}

func patternTypes(list []models.DetectedPattern) []models.PatternType {
	out := make([]models.PatternType, len(list))
	for i := range list {
		out[i] = list[i].Type
	}
	return out
}

type countingTradeRepo struct {
	repository.TradeRepository
	reads atomic.Int32
	delay time.Duration
}

func (r *countingTradeRepo) GetByProfile(ctx context.Context, userID, profileID uuid.UUID, limit int) ([]models.Trade, error) {
	r.reads.Add(1)
	time.Sleep(r.delay)
	return r.TradeRepository.GetByProfile(ctx, userID, profileID, limit)
}

var errSourceDown = errors.New("trade source down")

type failingTradeRepo struct {
	repository.TradeRepository
}

func (failingTradeRepo) GetByProfile(context.Context, uuid.UUID, uuid.UUID, int) ([]models.Trade, error) {
	return nil, errSourceDown
}

type failingPatternRepo struct {
	repository.PatternRepository
}

func (failingPatternRepo) Insert(context.Context, *models.DetectedPattern) error {
	return errors.New("sink unavailable")
}

// slowCooldownStore delays every load
type slowCooldownStore struct {
	cache.CooldownStore
	delay time.Duration
}

func (s slowCooldownStore) Load(ctx context.Context, userID, profileID uuid.UUID) (patterns.CooldownState, error) {
	time.Sleep(s.delay)
	return s.CooldownStore.Load(ctx, userID, profileID)
}
