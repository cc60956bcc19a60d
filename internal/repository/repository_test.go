package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/trade-journal/internal/database"
	"github.com/yourusername/trade-journal/internal/models"
)

var baseTime = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func newTrade(user, profile uuid.UUID, offset time.Duration, pnl float64) models.Trade {
	return models.Trade{
		ID:         uuid.New(),
		UserID:     user,
		ProfileID:  profile,
		Symbol:     "AAPL",
		Side:       models.TradeSideLong,
		EntryPrice: 100,
		ExitPrice:  100 + pnl/10,
		Quantity:   10,
		EntryTime:  baseTime.Add(offset),
		PnL:        pnl,
		Tags:       []string{"breakout"},
		CreatedAt:  baseTime.Add(offset),
	}
}

func TestMemoryTradeRepositoryOrdersAndLimits(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTradeRepository()
	user, profile := uuid.New(), uuid.New()

	for _, offset := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		tr := newTrade(user, profile, offset, 10)
		require.NoError(t, repo.Create(ctx, &tr))
	}
	other := newTrade(user, uuid.New(), 0, 5)
	require.NoError(t, repo.Create(ctx, &other))

	trades, err := repo.GetByProfile(ctx, user, profile, 2)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, baseTime.Add(2*time.Hour), trades[0].EntryTime)
	assert.Equal(t, baseTime.Add(3*time.Hour), trades[1].EntryTime)
}

func TestMemoryTradeRepositoryRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTradeRepository()
	tr := newTrade(uuid.New(), uuid.New(), 0, 10)

	require.NoError(t, repo.Create(ctx, &tr))
	assert.ErrorIs(t, repo.Create(ctx, &tr), models.ErrDuplicateKey)

	tr.UserID = uuid.Nil
	assert.ErrorIs(t, repo.Create(ctx, &tr), models.ErrMissingUserID)
}

func TestMemoryPreferencesRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPreferencesRepository()
	user := uuid.New()

	_, err := repo.Get(ctx, user)
	assert.ErrorIs(t, err, models.ErrNotFound)

	prefs := models.DefaultPreferences(user)
	prefs.RiskTolerance = models.RiskAggressive
	require.NoError(t, repo.Upsert(ctx, &prefs))

	got, err := repo.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.RiskAggressive, got.RiskTolerance)
}

func TestMemoryPatternRepositoryHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPatternRepository()
	user, profile := uuid.New(), uuid.New()

	old := models.DetectedPattern{ID: uuid.New(), UserID: user, ProfileID: profile, Type: models.PatternTilt, DetectedAt: baseTime.Add(-48 * time.Hour)}
	recentTilt := models.DetectedPattern{ID: uuid.New(), UserID: user, ProfileID: profile, Type: models.PatternTilt, DetectedAt: baseTime.Add(-time.Hour)}
	recentRevenge := models.DetectedPattern{ID: uuid.New(), UserID: user, ProfileID: profile, Type: models.PatternRevengeTrading, DetectedAt: baseTime}

	for _, p := range []models.DetectedPattern{old, recentTilt, recentRevenge} {
		p := p
		require.NoError(t, repo.Insert(ctx, &p))
	}
	require.NoError(t, repo.Insert(ctx, &recentTilt))

	all, err := repo.History(ctx, user, profile, "", baseTime.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, recentRevenge.ID, all[0].ID)

	tilt, err := repo.History(ctx, user, profile, models.PatternTilt, baseTime.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, tilt, 1)
	assert.Equal(t, recentTilt.ID, tilt[0].ID)
}

func TestMemoryInsightRepositoryGetRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInsightRepository()
	user, profile := uuid.New(), uuid.New()

	batch := []models.Insight{
		{ID: uuid.New(), UserID: user, ProfileID: profile, Title: "first", CreatedAt: baseTime},
		{ID: uuid.New(), UserID: user, ProfileID: profile, Title: "second", CreatedAt: baseTime.Add(time.Minute)},
		{ID: uuid.New(), UserID: uuid.New(), ProfileID: profile, Title: "other user", CreatedAt: baseTime},
	}
	require.NoError(t, repo.InsertBatch(ctx, batch))

	recent, err := repo.GetRecent(ctx, user, profile, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "second", recent[0].Title)
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)

	repos := NewMemoryRepositories()
	assert.NotNil(t, repos.Trade)
	assert.NotNil(t, repos.Insight)
}

func TestPostgresTradeRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	user, profile := uuid.New(), uuid.New()
	defer database.TeardownTestDB(t, db, user)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stop := 95.5
	tr := newTrade(user, profile, 0, -42.25)
	tr.StopLoss = &stop
	require.NoError(t, repos.Trade.Create(ctx, &tr))

	trades, err := repos.Trade.GetByProfile(ctx, user, profile, 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, tr.ID, trades[0].ID)
	assert.InDelta(t, -42.25, trades[0].PnL, 1e-9)
	require.NotNil(t, trades[0].StopLoss)
	assert.InDelta(t, 95.5, *trades[0].StopLoss, 1e-9)
	assert.True(t, trades[0].EntryTime.Equal(tr.EntryTime))
	assert.Equal(t, []string{"breakout"}, trades[0].Tags)
}

func TestPostgresPatternHistory(t *testing.T) {
	db := database.SetupTestDB(t)
	user, profile := uuid.New(), uuid.New()
	defer database.TeardownTestDB(t, db, user)

	repos, err := NewRepositories(db)
	require.NoError(t, err)
	ctx := context.Background()

	p := models.DetectedPattern{
		ID: uuid.New(), UserID: user, ProfileID: profile, Type: models.PatternTilt,
		Severity: 8, Confidence: 0.9, EstimatedCost: 300,
		Metadata: map[string]interface{}{"loss_streak": 4.0}, DetectedAt: baseTime,
	}
	require.NoError(t, repos.Pattern.Insert(ctx, &p))

	history, err := repos.Pattern.History(ctx, user, profile, models.PatternTilt, baseTime.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 4.0, history[0].Metadata["loss_streak"])
}
