package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/trade-journal/internal/database"
	"github.com/yourusername/trade-journal/internal/models"
)

const utcTimestamp = `'YYYY-MM-DD"T"HH24:MI:SS.US"Z"'`

// Numeric and time columns are read back as text and parsed by models.TradeRow
// so that a single malformed value degrades to zero instead of failing the read.
var tradeSelectColumns = `
	id::text, user_id::text, profile_id::text, symbol, side,
	COALESCE(entry_price::text, ''), COALESCE(exit_price::text, ''), COALESCE(quantity::text, ''),
	COALESCE(to_char(entry_time AT TIME ZONE 'UTC', ` + utcTimestamp + `), ''),
	COALESCE(to_char(exit_time AT TIME ZONE 'UTC', ` + utcTimestamp + `), ''),
	duration::text,
	COALESCE(pnl::text, ''), COALESCE(pnl_percentage::text, ''), COALESCE(gross_pnl::text, ''),
	COALESCE(commission::text, ''),
	stop_loss::text, target::text, initial_risk::text, risk_reward_ratio::text, slippage::text,
	entry_type, exit_type, emotion_before, emotion_after, rule_followed, notes, tags,
	strategy, setup, timeframe, grade,
	to_char(created_at AT TIME ZONE 'UTC', ` + utcTimestamp + `)
`

// PostgresTradeRepository implements TradeRepository for PostgreSQL
type PostgresTradeRepository struct {
	db *database.DB
}

// NewPostgresTradeRepository creates a new trade repository
func NewPostgresTradeRepository(db *database.DB) TradeRepository {
	return &PostgresTradeRepository{db: db}
}

// Create inserts a new trade
func (r *PostgresTradeRepository) Create(ctx context.Context, trade *models.Trade) error {
	query := `
		INSERT INTO trades (id, user_id, profile_id, symbol, side, entry_price, exit_price, quantity,
		                    entry_time, exit_time, duration, pnl, pnl_percentage, gross_pnl, commission,
		                    stop_loss, target, initial_risk, risk_reward_ratio, slippage, entry_type, exit_type,
		                    emotion_before, emotion_after, rule_followed, notes, tags, strategy, setup,
		                    timeframe, grade, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		        $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
	`

	tags := trade.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := r.db.GetPool().Exec(ctx, query,
		trade.ID, trade.UserID, trade.ProfileID, trade.Symbol, string(trade.Side),
		trade.EntryPrice, trade.ExitPrice, trade.Quantity, nullableTime(trade.EntryTime), trade.ExitTime,
		trade.DurationMinutes, trade.PnL, trade.PnLPercentage, trade.GrossPnL, trade.Commission,
		trade.StopLoss, trade.Target, trade.InitialRisk, trade.RiskRewardRatio, trade.Slippage,
		trade.EntryType, trade.ExitType, trade.EmotionBefore, trade.EmotionAfter, trade.RuleFollowed,
		trade.Notes, tags, trade.Strategy, trade.Setup, trade.Timeframe, trade.Grade, trade.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}

	return nil
}

// GetByProfile retrieves the most recent trades of a profile in chronological order
func (r *PostgresTradeRepository) GetByProfile(ctx context.Context, userID, profileID uuid.UUID, limit int) ([]models.Trade, error) {
	query := `
		SELECT * FROM (
			SELECT ` + tradeSelectColumns + `, entry_time AS sort_time
			FROM trades
			WHERE user_id = $1 AND profile_id = $2
			ORDER BY entry_time DESC NULLS LAST
			LIMIT $3
		) recent
		ORDER BY sort_time ASC NULLS FIRST
	`

	rows, err := r.db.GetPool().Query(ctx, query, userID, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades by profile: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var row models.TradeRow
		var sortTime interface{}
		err := rows.Scan(
			&row.ID, &row.UserID, &row.ProfileID, &row.Symbol, &row.Side,
			&row.EntryPrice, &row.ExitPrice, &row.Quantity, &row.EntryTime, &row.ExitTime, &row.Duration,
			&row.PnL, &row.PnLPercentage, &row.GrossPnL, &row.Commission,
			&row.StopLoss, &row.Target, &row.InitialRisk, &row.RiskRewardRatio, &row.Slippage,
			&row.EntryType, &row.ExitType, &row.EmotionBefore, &row.EmotionAfter, &row.RuleFollowed,
			&row.Notes, &row.Tags, &row.Strategy, &row.Setup, &row.Timeframe, &row.Grade, &row.CreatedAt,
			&sortTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		trade, err := row.ToTrade()
		if err != nil {
			return nil, fmt.Errorf("failed to normalize trade %s: %w", row.ID, err)
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
