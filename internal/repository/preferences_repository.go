package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/trade-journal/internal/database"
	"github.com/yourusername/trade-journal/internal/models"
)

// PostgresPreferencesRepository implements PreferencesRepository for PostgreSQL
type PostgresPreferencesRepository struct {
	db *database.DB
}

// NewPostgresPreferencesRepository creates a new preferences repository
func NewPostgresPreferencesRepository(db *database.DB) PreferencesRepository {
	return &PostgresPreferencesRepository{db: db}
}

// Get retrieves the preferences of a user
func (r *PostgresPreferencesRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Preferences, error) {
	query := `
		SELECT user_id, risk_tolerance, preferred_styles, preferred_strategies, coach_personality,
		       COALESCE(account_size::text, '')
		FROM trading_preferences WHERE user_id = $1
	`

	prefs := &models.Preferences{}
	var styles []string
	var accountSize string
	err := r.db.GetPool().QueryRow(ctx, query, userID).Scan(
		&prefs.UserID, &prefs.RiskTolerance, &styles, &prefs.PreferredStrategies,
		&prefs.CoachPersonality, &accountSize,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	for _, s := range styles {
		prefs.PreferredStyles = append(prefs.PreferredStyles, models.TradingStyle(s))
	}
	prefs.AccountSize = models.ParseNumber(accountSize)

	return prefs, nil
}

// Upsert inserts or replaces the preferences of a user
func (r *PostgresPreferencesRepository) Upsert(ctx context.Context, prefs *models.Preferences) error {
	query := `
		INSERT INTO trading_preferences (user_id, risk_tolerance, preferred_styles, preferred_strategies,
		                                 coach_personality, account_size)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			risk_tolerance = EXCLUDED.risk_tolerance,
			preferred_styles = EXCLUDED.preferred_styles,
			preferred_strategies = EXCLUDED.preferred_strategies,
			coach_personality = EXCLUDED.coach_personality,
			account_size = EXCLUDED.account_size
	`

	styles := make([]string, 0, len(prefs.PreferredStyles))
	for _, s := range prefs.PreferredStyles {
		styles = append(styles, string(s))
	}
	strategies := prefs.PreferredStrategies
	if strategies == nil {
		strategies = []string{}
	}

	_, err := r.db.GetPool().Exec(ctx, query,
		prefs.UserID, string(prefs.RiskTolerance), styles, strategies, prefs.CoachPersonality, prefs.AccountSize,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	return nil
}
