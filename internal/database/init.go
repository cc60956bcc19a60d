package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/trade-journal/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id                UUID PRIMARY KEY,
	user_id           UUID NOT NULL,
	profile_id        UUID NOT NULL,
	symbol            TEXT NOT NULL,
	side              TEXT NOT NULL DEFAULT '',
	entry_price       NUMERIC,
	exit_price        NUMERIC,
	quantity          NUMERIC,
	entry_time        TIMESTAMPTZ,
	exit_time         TIMESTAMPTZ,
	duration          NUMERIC,
	pnl               NUMERIC,
	pnl_percentage    NUMERIC,
	gross_pnl         NUMERIC,
	commission        NUMERIC,
	stop_loss         NUMERIC,
	target            NUMERIC,
	initial_risk      NUMERIC,
	risk_reward_ratio NUMERIC,
	slippage          NUMERIC,
	entry_type        TEXT NOT NULL DEFAULT '',
	exit_type         TEXT NOT NULL DEFAULT '',
	emotion_before    TEXT NOT NULL DEFAULT '',
	emotion_after     TEXT NOT NULL DEFAULT '',
	rule_followed     BOOLEAN,
	notes             TEXT NOT NULL DEFAULT '',
	tags              TEXT[] NOT NULL DEFAULT '{}',
	strategy          TEXT NOT NULL DEFAULT '',
	setup             TEXT NOT NULL DEFAULT '',
	timeframe         TEXT NOT NULL DEFAULT '',
	grade             TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_trades_profile_time ON trades (user_id, profile_id, entry_time DESC);

CREATE TABLE IF NOT EXISTS trading_preferences (
	user_id              UUID PRIMARY KEY,
	risk_tolerance       TEXT NOT NULL DEFAULT 'moderate',
	preferred_styles     TEXT[] NOT NULL DEFAULT '{}',
	preferred_strategies TEXT[] NOT NULL DEFAULT '{}',
	coach_personality    TEXT NOT NULL DEFAULT '',
	account_size         NUMERIC
);

CREATE TABLE IF NOT EXISTS detected_patterns (
	id              UUID PRIMARY KEY,
	user_id         UUID NOT NULL,
	profile_id      UUID NOT NULL,
	pattern_type    TEXT NOT NULL,
	severity        INT NOT NULL,
	confidence      DOUBLE PRECISION NOT NULL,
	estimated_cost  DOUBLE PRECISION NOT NULL,
	trades_affected UUID[] NOT NULL DEFAULT '{}',
	metadata        JSONB NOT NULL DEFAULT '{}',
	suggestions     TEXT[] NOT NULL DEFAULT '{}',
	detected_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_patterns_profile_time ON detected_patterns (user_id, profile_id, detected_at DESC);

CREATE TABLE IF NOT EXISTS insights (
	id           UUID PRIMARY KEY,
	user_id      UUID NOT NULL,
	profile_id   UUID NOT NULL,
	category     TEXT NOT NULL,
	severity     TEXT NOT NULL,
	priority     TEXT NOT NULL,
	title        TEXT NOT NULL,
	message      TEXT NOT NULL,
	confidence   DOUBLE PRECISION NOT NULL,
	impact_score DOUBLE PRECISION NOT NULL,
	actions      JSONB NOT NULL DEFAULT '[]',
	pattern_id   UUID,
	pattern_type TEXT NOT NULL DEFAULT '',
	trade_ids    UUID[] NOT NULL DEFAULT '{}',
	metadata     JSONB NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL
);
`

// Initialize creates a database connection pool and makes sure the journal
// tables exist
func Initialize(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	var tradeCount int64
	if err := db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM trades").Scan(&tradeCount); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to count trades: %w", err)
	}
	if tradeCount == 0 {
		log.Warn("Trade journal is empty; analytics will return neutral results until trades are recorded")
	}

	return db, nil
}

// EnsureSchema creates the journal tables when they are missing
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
