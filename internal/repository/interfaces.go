package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/trade-journal/internal/models"
)

// TradeRepository defines the interface for journal trade access
type TradeRepository interface {
	Create(ctx context.Context, trade *models.Trade) error
	// GetByProfile returns up to limit of the most recent trades, oldest first
	GetByProfile(ctx context.Context, userID, profileID uuid.UUID, limit int) ([]models.Trade, error)
}

// PreferencesRepository defines the interface for trading preference access
type PreferencesRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Preferences, error)
	Upsert(ctx context.Context, prefs *models.Preferences) error
}

// PatternRepository persists detected patterns
type PatternRepository interface {
	Insert(ctx context.Context, pattern *models.DetectedPattern) error
	// History returns patterns detected at or after since, newest first.
	// An empty patternType matches every type.
	History(ctx context.Context, userID, profileID uuid.UUID, patternType models.PatternType, since time.Time) ([]models.DetectedPattern, error)
}

// InsightRepository persists generated insights
type InsightRepository interface {
	InsertBatch(ctx context.Context, insights []models.Insight) error
	GetRecent(ctx context.Context, userID, profileID uuid.UUID, limit int) ([]models.Insight, error)
}
