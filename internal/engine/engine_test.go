package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trade-journal/internal/analytics"
	"github.com/yourusername/trade-journal/internal/cache"
	"github.com/yourusername/trade-journal/internal/coach"
	"github.com/yourusername/trade-journal/internal/metrics"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/prediction"
)

func TestInitializeBuildsContext(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	repos := seededRepos(mondayScenario())
	e := newTestEngine(clock, repos)

	dash, err := e.Dashboard(ctx, testUser, testProfile)
	require.NoError(t, err)

	assert.Equal(t, 42, dash.Metrics.TotalTrades)
	assert.Equal(t, []models.PatternType{models.PatternMondaySyndrome}, patternTypes(dash.ActivePatterns))
	assert.NotNil(t, dash.Advanced)
	assert.Equal(t, 42, dash.Features.TradeCount)
	assert.NotEmpty(t, dash.Insights)
	assert.Equal(t, clock.Now(), dash.BuiltAt)
	assert.Zero(t, dash.TodayTrades)

	found := false
	for _, in := range dash.Insights {
		if in.PatternType == models.PatternMondaySyndrome {
			found = true
		}
	}
	assert.True(t, found, "pattern insight must be in the feed")

	history, err := repos.Pattern.History(ctx, testUser, testProfile, "", clock.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, history, 1)

	state, err := e.cooldowns.Load(ctx, testUser, testProfile)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), state[models.PatternMondaySyndrome])
}

func TestInitializeEmptyHistory(t *testing.T) {
	e := newTestEngine(newClock(), seededRepos(nil))

	dash, err := e.Dashboard(context.Background(), testUser, testProfile)
	require.NoError(t, err)
	assert.Zero(t, dash.Metrics.TotalTrades)
	assert.Empty(t, dash.ActivePatterns)
	assert.Empty(t, dash.Insights)
	assert.Equal(t, 50.0, dash.RiskScore)
}

func TestInitializeUsesCache(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(newClock(), seededRepos(mondayScenario()))

	first, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)
	second, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)
	assert.Same(t, first, second)

	e.Invalidate(testUser, testProfile, "test")
	third, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestInitializeSingleFlight(t *testing.T) {
	repos := seededRepos(mondayScenario())
	counting := &countingTradeRepo{TradeRepository: repos.Trade, delay: 20 * time.Millisecond}
	repos.Trade = counting
	e := newTestEngine(newClock(), repos)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Initialize(context.Background(), testUser, testProfile)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), counting.reads.Load())
}

func TestInitializeTradeSourceFailure(t *testing.T) {
	repos := seededRepos(nil)
	repos.Trade = failingTradeRepo{}
	e := newTestEngine(newClock(), repos)

	_, err := e.Initialize(context.Background(), testUser, testProfile)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContextUnavailable)
	assert.ErrorIs(t, err, errSourceDown)
}

func TestPersistenceFailureIsSwallowed(t *testing.T) {
	repos := seededRepos(mondayScenario())
	repos.Pattern = failingPatternRepo{PatternRepository: repos.Pattern}
	e := newTestEngine(newClock(), repos)
	failures := metrics.PersistenceFailuresTotal.WithLabelValues("pattern")
	before := testutil.ToFloat64(failures)

	dash, err := e.Dashboard(context.Background(), testUser, testProfile)
	require.NoError(t, err)
	assert.Len(t, dash.ActivePatterns, 1)
	assert.Equal(t, before+1, testutil.ToFloat64(failures))
}

func TestPreferencesDefaultWhenMissing(t *testing.T) {
	ctx := context.Background()
	opts := DefaultOptions()
	opts.DefaultRiskTolerance = models.RiskConservative
	e := New(Dependencies{Repos: seededRepos(nil), Clock: newClock().Now}, opts)

	uc, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)
	assert.Equal(t, models.RiskConservative, uc.Preferences.RiskTolerance)
	assert.Equal(t, testUser, uc.Preferences.UserID)
}

func TestRecordTradeDetectsTilt(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	repos := seededRepos(mondayScenario())
	e := newTestEngine(clock, repos)

	_, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)

	var update *TradeUpdate
	for i, pnl := range []float64{-30, -40, -50} {
		update, err = e.RecordTrade(ctx, trade(sessionDay.Add(time.Duration(i)*30*time.Minute), pnl))
		require.NoError(t, err)
	}

	assert.Equal(t, []models.PatternType{models.PatternTilt}, patternTypes(update.NewPatterns))
	require.NotEmpty(t, update.NewInsights)
	assert.Equal(t, models.PatternTilt, update.NewInsights[0].PatternType)

	dash := update.Dashboard
	assert.Equal(t, 45, dash.Metrics.TotalTrades)
	assert.Equal(t, 3, dash.TodayTrades)
	assert.Equal(t, 3, dash.SessionTrades)
	assert.InDelta(t, -120.0, dash.TodayPnL, 1e-9)
	assert.ElementsMatch(t,
		[]models.PatternType{models.PatternMondaySyndrome, models.PatternTilt},
		patternTypes(dash.ActivePatterns))

	history, err := repos.Pattern.History(ctx, testUser, testProfile, models.PatternMondaySyndrome, time.Time{})
	require.NoError(t, err)
	assert.Len(t, history, 1, "monday syndrome stays in cooldown")
}

func TestIncrementalMatchesFullRecompute(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	e := newTestEngine(clock, seededRepos(mondayScenario()))

	_, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)

	added := []models.Trade{
		trade(sessionDay, 80),
		trade(sessionDay.Add(40*time.Minute), -20),
		trade(sessionDay.Add(80*time.Minute), 0),
	}
	var dash *Dashboard
	for _, tr := range added {
		update, err := e.OnNewTrade(ctx, tr)
		require.NoError(t, err)
		dash = update.Dashboard
	}

	full := analytics.NewCalculator(clock.Now).Calculate(append(mondayScenario(), added...))
	assert.Equal(t, full.TotalTrades, dash.Metrics.TotalTrades)
	assert.Equal(t, full.WinningTrades, dash.Metrics.WinningTrades)
	assert.Equal(t, full.LosingTrades, dash.Metrics.LosingTrades)
	assert.Equal(t, full.BreakEvenTrades, dash.Metrics.BreakEvenTrades)
	assert.InDelta(t, full.TotalPnL, dash.Metrics.TotalPnL, 1e-9)
	assert.InDelta(t, full.WinRate, dash.Metrics.WinRate, 1e-9)
	assert.Equal(t, full.LongestLossStreak, dash.Metrics.LongestLossStreak)
	assert.InDelta(t, full.MaxDrawdown, dash.Metrics.MaxDrawdown, 1e-9)
}

func TestOnNewTradeBackdatedRecomputes(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	e := newTestEngine(clock, seededRepos(mondayScenario()))

	_, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)

	// a loss between two early wins; appended at the end it would extend the
	// closing three-loss streak to four
	late := trade(firstMonday.AddDate(0, 0, 8).Add(2*time.Hour), -50)
	update, err := e.OnNewTrade(ctx, late)
	require.NoError(t, err)

	full := analytics.NewCalculator(clock.Now).Calculate(append(mondayScenario(), late))
	dash := update.Dashboard
	assert.Equal(t, 43, dash.Metrics.TotalTrades)
	assert.Equal(t, 3, full.LongestLossStreak)
	assert.Equal(t, full.LongestLossStreak, dash.Metrics.LongestLossStreak)
	assert.Equal(t, full.CurrentStreak, dash.Metrics.CurrentStreak)
	assert.InDelta(t, full.MaxDrawdown, dash.Metrics.MaxDrawdown, 1e-9)
	assert.InDelta(t, full.TotalPnL, dash.Metrics.TotalPnL, 1e-9)

	uc, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)
	for i := 1; i < len(uc.Trades); i++ {
		assert.False(t, uc.Trades[i].ClosedAt().Before(uc.Trades[i-1].ClosedAt()), "trades out of order at %d", i)
	}
}

func TestOnNewTradeConcurrentCooldown(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	repos := seededRepos(mondayScenario())
	e := New(Dependencies{
		Repos:     repos,
		Clock:     clock.Now,
		Cooldowns: slowCooldownStore{CooldownStore: cache.NewMemoryCooldownStore(48 * time.Hour), delay: 20 * time.Millisecond},
	}, DefaultOptions())

	_, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)

	// two unprotected trades inside the 14:00 news window
	var updates [2]*TradeUpdate
	var wg sync.WaitGroup
	for i := range updates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr := trade(sessionDay.Add(5*time.Hour+time.Duration(i)*10*time.Minute), 10)
			tr.StopLoss = nil
			update, err := e.OnNewTrade(ctx, tr)
			assert.NoError(t, err)
			updates[i] = update
		}(i)
	}
	wg.Wait()

	news := 0
	for _, update := range updates {
		require.NotNil(t, update)
		for _, p := range update.NewPatterns {
			if p.Type == models.PatternNewsTrading {
				news++
			}
		}
	}
	assert.Equal(t, 1, news)

	history, err := repos.Pattern.History(ctx, testUser, testProfile, models.PatternNewsTrading, time.Time{})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestOnNewTradeBuildsMissingContext(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos(mondayScenario())
	e := newTestEngine(newClock(), repos)

	update, err := e.RecordTrade(ctx, trade(sessionDay, 25))
	require.NoError(t, err)

	assert.Empty(t, update.NewPatterns)
	assert.Equal(t, 43, update.Dashboard.Metrics.TotalTrades)
	assert.Zero(t, update.Dashboard.SessionTrades)
}

func TestOnNewTradeRequiresUser(t *testing.T) {
	e := newTestEngine(newClock(), seededRepos(nil))
	tr := trade(sessionDay, 10)
	tr.UserID = uuid.Nil

	_, err := e.OnNewTrade(context.Background(), tr)
	assert.ErrorIs(t, err, models.ErrMissingUserID)
}

func TestCooldownSurvivesRebuild(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	repos := seededRepos(mondayScenario())
	e := newTestEngine(clock, repos)

	_, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)

	// a fresh engine shares only the repositories, so the cooldown comes
	// from the persisted history
	clock.Advance(time.Hour)
	fresh := newTestEngine(clock, repos)
	dash, err := fresh.Dashboard(ctx, testUser, testProfile)
	require.NoError(t, err)
	assert.Equal(t, []models.PatternType{models.PatternMondaySyndrome}, patternTypes(dash.ActivePatterns))

	history, err := repos.Pattern.History(ctx, testUser, testProfile, "", time.Time{})
	require.NoError(t, err)
	assert.Len(t, history, 1)

	clock.Advance(24 * time.Hour)
	e.Invalidate(testUser, testProfile, "test")
	_, err = e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)

	history, err = repos.Pattern.History(ctx, testUser, testProfile, "", time.Time{})
	require.NoError(t, err)
	assert.Len(t, history, 2, "eligible again after the cooldown")
}

func TestPredict(t *testing.T) {
	e := newTestEngine(newClock(), seededRepos(mondayScenario()))

	pred, err := e.Predict(context.Background(), testUser, testProfile, models.TradeSetup{Symbol: "aapl"})
	require.NoError(t, err)

	assert.Equal(t, testUser, pred.UserID)
	assert.Equal(t, "AAPL", pred.Symbol)
	assert.InDelta(t, 1.0, pred.WinProbability+pred.LossProbability+pred.BreakEvenProbability, 1e-9)
	assert.GreaterOrEqual(t, pred.RiskScore, 0.0)
	assert.LessOrEqual(t, pred.RiskScore, 100.0)
}

func TestPositionSizeUsesPreferences(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos(mondayScenario())
	prefs := models.DefaultPreferences(testUser)
	prefs.AccountSize = 10000
	require.NoError(t, repos.Preferences.Upsert(ctx, &prefs))
	e := newTestEngine(newClock(), repos)

	res, err := e.PositionSize(ctx, testUser, testProfile, prediction.SizingRequest{
		AvgRiskReward: 2,
		EntryPrice:    100,
		StopLoss:      95,
	})
	require.NoError(t, err)

	assert.True(t, res.Capped)
	assert.Equal(t, 0.01, res.RiskFraction)
	assert.Equal(t, 100.0, res.RiskAmount)
	assert.Equal(t, 2000.0, res.PositionValue)
	assert.Equal(t, 20.0, res.Shares)
}

func TestAskFallsBackToRules(t *testing.T) {
	e := newTestEngine(newClock(), seededRepos(mondayScenario()))

	resp, err := e.Ask(context.Background(), testUser, testProfile, "How risky is my trading right now?")
	require.NoError(t, err)
	assert.Equal(t, coach.SourceRules, resp.Source)
	assert.NotEmpty(t, resp.Answer)
}

func TestRefreshAllKeepsSessionTrades(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(newClock(), seededRepos(mondayScenario()))

	_, err := e.RecordTrade(ctx, trade(sessionDay, 10))
	require.NoError(t, err)
	_, err = e.RecordTrade(ctx, trade(sessionDay.Add(time.Hour), 10))
	require.NoError(t, err)

	refreshed, err := e.RefreshAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	dash, err := e.Dashboard(ctx, testUser, testProfile)
	require.NoError(t, err)
	assert.Equal(t, 44, dash.Metrics.TotalTrades)
	assert.Equal(t, 1, dash.SessionTrades)
	assert.Equal(t, 1, e.EvictExpired())
}

func TestRefreshAllSharesInitializeFlight(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos(mondayScenario())
	counting := &countingTradeRepo{TradeRepository: repos.Trade}
	repos.Trade = counting
	e := newTestEngine(newClock(), repos)

	_, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)
	counting.delay = 50 * time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		refreshed, err := e.RefreshAll(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, refreshed)
	}()

	time.Sleep(10 * time.Millisecond)
	e.Invalidate(testUser, testProfile, "test")
	uc, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)
	<-done

	assert.Equal(t, int32(2), counting.reads.Load(), "the miss joins the running rebuild")
	cached, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)
	assert.Same(t, uc, cached)
}

func TestRefreshAllHandsOffConcurrentTrade(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos(mondayScenario())
	counting := &countingTradeRepo{TradeRepository: repos.Trade}
	repos.Trade = counting
	e := newTestEngine(newClock(), repos)

	_, err := e.Initialize(ctx, testUser, testProfile)
	require.NoError(t, err)
	counting.delay = 50 * time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := e.RefreshAll(ctx)
		assert.NoError(t, err)
	}()

	// the trade never reaches the trade source, so only the context carries it
	time.Sleep(10 * time.Millisecond)
	update, err := e.OnNewTrade(ctx, trade(sessionDay, 10))
	require.NoError(t, err)
	<-done

	assert.Equal(t, 43, update.Dashboard.Metrics.TotalTrades)
	dash, err := e.Dashboard(ctx, testUser, testProfile)
	require.NoError(t, err)
	assert.Equal(t, 43, dash.Metrics.TotalTrades)
	assert.Equal(t, 1, dash.SessionTrades)
}
