// Package repository provides PostgreSQL and in-memory access to the journal.
package repository

import (
	"fmt"

	"github.com/yourusername/trade-journal/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Trade       TradeRepository
	Preferences PreferencesRepository
	Pattern     PatternRepository
	Insight     InsightRepository
}

// NewRepositories creates PostgreSQL-backed repositories
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Trade:       NewPostgresTradeRepository(db),
		Preferences: NewPostgresPreferencesRepository(db),
		Pattern:     NewPostgresPatternRepository(db),
		Insight:     NewPostgresInsightRepository(db),
	}, nil
}

// NewMemoryRepositories creates repositories that keep everything in process
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Trade:       NewMemoryTradeRepository(),
		Preferences: NewMemoryPreferencesRepository(),
		Pattern:     NewMemoryPatternRepository(),
		Insight:     NewMemoryInsightRepository(),
	}
}
