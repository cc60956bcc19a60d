package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/trade-journal/internal/database"
	"github.com/yourusername/trade-journal/internal/models"
)

// PostgresInsightRepository implements InsightRepository for PostgreSQL
type PostgresInsightRepository struct {
	db *database.DB
}

// NewPostgresInsightRepository creates a new insight repository
func NewPostgresInsightRepository(db *database.DB) InsightRepository {
	return &PostgresInsightRepository{db: db}
}

// InsertBatch stores insights in a single round trip
func (r *PostgresInsightRepository) InsertBatch(ctx context.Context, insights []models.Insight) error {
	if len(insights) == 0 {
		return nil
	}

	query := `
		INSERT INTO insights (id, user_id, profile_id, category, severity, priority, title, message,
		                      confidence, impact_score, actions, pattern_id, pattern_type, trade_ids,
		                      metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for i := range insights {
		in := &insights[i]
		actions, err := json.Marshal(in.Actions)
		if err != nil {
			return fmt.Errorf("failed to encode insight actions: %w", err)
		}
		metadata, err := json.Marshal(in.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode insight metadata: %w", err)
		}
		tradeIDs := in.TradeIDs
		if tradeIDs == nil {
			tradeIDs = []uuid.UUID{}
		}
		batch.Queue(query,
			in.ID, in.UserID, in.ProfileID, string(in.Category), string(in.Severity), string(in.Priority),
			in.Title, in.Message, in.Confidence, in.ImpactScore, actions, in.PatternID,
			string(in.PatternType), tradeIDs, metadata, in.CreatedAt,
		)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range insights {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert insight batch: %w", err)
		}
	}

	return nil
}

// GetRecent retrieves the newest insights of a profile
func (r *PostgresInsightRepository) GetRecent(ctx context.Context, userID, profileID uuid.UUID, limit int) ([]models.Insight, error) {
	query := `
		SELECT id, user_id, profile_id, category, severity, priority, title, message, confidence,
		       impact_score, actions, pattern_id, pattern_type, trade_ids, metadata, created_at
		FROM insights
		WHERE user_id = $1 AND profile_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.GetPool().Query(ctx, query, userID, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var insights []models.Insight
	for rows.Next() {
		var in models.Insight
		var actions, metadata []byte
		err := rows.Scan(
			&in.ID, &in.UserID, &in.ProfileID, &in.Category, &in.Severity, &in.Priority, &in.Title,
			&in.Message, &in.Confidence, &in.ImpactScore, &actions, &in.PatternID, &in.PatternType,
			&in.TradeIDs, &metadata, &in.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		if err := json.Unmarshal(actions, &in.Actions); err != nil {
			return nil, fmt.Errorf("failed to decode insight actions: %w", err)
		}
		if err := json.Unmarshal(metadata, &in.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode insight metadata: %w", err)
		}
		insights = append(insights, in)
	}

	return insights, rows.Err()
}
