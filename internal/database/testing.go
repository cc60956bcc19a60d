package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/trade-journal/internal/config"
)

// TestConfigPath names the variable pointing at an integration test config file
const TestConfigPath = "TRADE_JOURNAL_TEST_CONFIG"

// SetupTestDB connects to the database described by the file in
// TRADE_JOURNAL_TEST_CONFIG and skips the test when it is unset
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestConfigPath)
	if path == "" {
		t.Skipf("integration test - set %s to run against PostgreSQL", TestConfigPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	return db
}

// TeardownTestDB removes rows written by a test user and closes the pool
func TeardownTestDB(t *testing.T, db *DB, userIDs ...interface{}) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, table := range []string{"trades", "trading_preferences", "detected_patterns", "insights"} {
		for _, id := range userIDs {
			if _, err := db.pool.Exec(ctx, "DELETE FROM "+table+" WHERE user_id = $1", id); err != nil {
				t.Logf("warning: failed to clean %s: %v", table, err)
			}
		}
	}
	db.Close()
}
