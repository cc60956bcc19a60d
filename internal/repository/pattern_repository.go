package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/trade-journal/internal/database"
	"github.com/yourusername/trade-journal/internal/models"
)

// PostgresPatternRepository implements PatternRepository for PostgreSQL
type PostgresPatternRepository struct {
	db *database.DB
}

// NewPostgresPatternRepository creates a new pattern repository
func NewPostgresPatternRepository(db *database.DB) PatternRepository {
	return &PostgresPatternRepository{db: db}
}

// Insert stores a detected pattern
func (r *PostgresPatternRepository) Insert(ctx context.Context, p *models.DetectedPattern) error {
	query := `
		INSERT INTO detected_patterns (id, user_id, profile_id, pattern_type, severity, confidence,
		                               estimated_cost, trades_affected, metadata, suggestions, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`

	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode pattern metadata: %w", err)
	}
	affected := p.TradesAffected
	if affected == nil {
		affected = []uuid.UUID{}
	}
	suggestions := p.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	_, err = r.db.GetPool().Exec(ctx, query,
		p.ID, p.UserID, p.ProfileID, string(p.Type), p.Severity, p.Confidence,
		p.EstimatedCost, affected, metadata, suggestions, p.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pattern: %w", err)
	}

	return nil
}

// History retrieves patterns detected since the given time, newest first
func (r *PostgresPatternRepository) History(ctx context.Context, userID, profileID uuid.UUID, patternType models.PatternType, since time.Time) ([]models.DetectedPattern, error) {
	query := `
		SELECT id, user_id, profile_id, pattern_type, severity, confidence, estimated_cost,
		       trades_affected, metadata, suggestions, detected_at
		FROM detected_patterns
		WHERE user_id = $1 AND profile_id = $2 AND detected_at >= $3
		  AND ($4 = '' OR pattern_type = $4)
		ORDER BY detected_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, userID, profileID, since, string(patternType))
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern history: %w", err)
	}
	defer rows.Close()

	var patterns []models.DetectedPattern
	for rows.Next() {
		var p models.DetectedPattern
		var metadata []byte
		err := rows.Scan(
			&p.ID, &p.UserID, &p.ProfileID, &p.Type, &p.Severity, &p.Confidence, &p.EstimatedCost,
			&p.TradesAffected, &metadata, &p.Suggestions, &p.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode pattern metadata: %w", err)
			}
		}
		patterns = append(patterns, p)
	}

	return patterns, rows.Err()
}
