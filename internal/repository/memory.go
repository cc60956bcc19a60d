package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/trade-journal/internal/models"
)

type profileKey struct {
	user    uuid.UUID
	profile uuid.UUID
}

// MemoryTradeRepository keeps trades in process, used by the CLI and tests
type MemoryTradeRepository struct {
	mu     sync.RWMutex
	trades map[profileKey][]models.Trade
}

// NewMemoryTradeRepository creates an empty in-memory trade repository
func NewMemoryTradeRepository() *MemoryTradeRepository {
	return &MemoryTradeRepository{trades: make(map[profileKey][]models.Trade)}
}

// Create stores a copy of the trade
func (r *MemoryTradeRepository) Create(_ context.Context, trade *models.Trade) error {
	if trade.UserID == uuid.Nil {
		return models.ErrMissingUserID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := profileKey{trade.UserID, trade.ProfileID}
	for _, existing := range r.trades[key] {
		if existing.ID == trade.ID {
			return models.ErrDuplicateKey
		}
	}
	r.trades[key] = append(r.trades[key], *trade)
	return nil
}

// GetByProfile returns the newest limit trades in chronological order
func (r *MemoryTradeRepository) GetByProfile(_ context.Context, userID, profileID uuid.UUID, limit int) ([]models.Trade, error) {
	r.mu.RLock()
	stored := r.trades[profileKey{userID, profileID}]
	out := make([]models.Trade, len(stored))
	copy(out, stored)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryTime.Before(out[j].EntryTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// MemoryPreferencesRepository keeps preferences in process
type MemoryPreferencesRepository struct {
	mu    sync.RWMutex
	prefs map[uuid.UUID]models.Preferences
}

// NewMemoryPreferencesRepository creates an empty in-memory preferences repository
func NewMemoryPreferencesRepository() *MemoryPreferencesRepository {
	return &MemoryPreferencesRepository{prefs: make(map[uuid.UUID]models.Preferences)}
}

// Get returns the stored preferences or models.ErrNotFound
func (r *MemoryPreferencesRepository) Get(_ context.Context, userID uuid.UUID) (*models.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prefs[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

// Upsert stores the preferences
func (r *MemoryPreferencesRepository) Upsert(_ context.Context, prefs *models.Preferences) error {
	if prefs.UserID == uuid.Nil {
		return models.ErrMissingUserID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[prefs.UserID] = *prefs
	return nil
}

// MemoryPatternRepository keeps detected patterns in process
type MemoryPatternRepository struct {
	mu       sync.RWMutex
	patterns []models.DetectedPattern
}

// NewMemoryPatternRepository creates an empty in-memory pattern repository
func NewMemoryPatternRepository() *MemoryPatternRepository {
	return &MemoryPatternRepository{}
}

// Insert stores the pattern unless one with the same ID exists
func (r *MemoryPatternRepository) Insert(_ context.Context, p *models.DetectedPattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.patterns {
		if existing.ID == p.ID {
			return nil
		}
	}
	r.patterns = append(r.patterns, *p)
	return nil
}

// History returns matching patterns newest first
func (r *MemoryPatternRepository) History(_ context.Context, userID, profileID uuid.UUID, patternType models.PatternType, since time.Time) ([]models.DetectedPattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.DetectedPattern
	for _, p := range r.patterns {
		if p.UserID != userID || p.ProfileID != profileID || p.DetectedAt.Before(since) {
			continue
		}
		if patternType != "" && p.Type != patternType {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out, nil
}

// MemoryInsightRepository keeps insights in process
type MemoryInsightRepository struct {
	mu       sync.RWMutex
	insights []models.Insight
}

// NewMemoryInsightRepository creates an empty in-memory insight repository
func NewMemoryInsightRepository() *MemoryInsightRepository {
	return &MemoryInsightRepository{}
}

// InsertBatch appends the insights
func (r *MemoryInsightRepository) InsertBatch(_ context.Context, insights []models.Insight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insights = append(r.insights, insights...)
	return nil
}

// GetRecent returns the newest insights of a profile
func (r *MemoryInsightRepository) GetRecent(_ context.Context, userID, profileID uuid.UUID, limit int) ([]models.Insight, error) {
	r.mu.RLock()
	var out []models.Insight
	for _, in := range r.insights {
		if in.UserID == userID && in.ProfileID == profileID {
			out = append(out, in)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
