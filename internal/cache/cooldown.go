// Package cache externalizes pattern cooldown state so detections survive
// context eviction and can be shared between service instances.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/yourusername/trade-journal/internal/patterns"
)

// CooldownStore loads and saves the per-profile cooldown state
type CooldownStore interface {
	Load(ctx context.Context, userID, profileID uuid.UUID) (patterns.CooldownState, error)
	Save(ctx context.Context, userID, profileID uuid.UUID, state patterns.CooldownState) error
}

func cooldownKey(userID, profileID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", userID, profileID)
}

// MemoryCooldownStore keeps cooldown state in process. Entries expire after
// the retention period since a state older than the cooldown has no effect.
type MemoryCooldownStore struct {
	store *gocache.Cache
}

// NewMemoryCooldownStore creates a store retaining entries for retention
func NewMemoryCooldownStore(retention time.Duration) *MemoryCooldownStore {
	return &MemoryCooldownStore{
		store: gocache.New(retention, retention),
	}
}

// Load returns a copy of the stored state, empty when none is stored
func (m *MemoryCooldownStore) Load(_ context.Context, userID, profileID uuid.UUID) (patterns.CooldownState, error) {
	if v, ok := m.store.Get(cooldownKey(userID, profileID)); ok {
		return v.(patterns.CooldownState).Copy(), nil
	}
	return patterns.CooldownState{}, nil
}

// Save stores a copy of state
func (m *MemoryCooldownStore) Save(_ context.Context, userID, profileID uuid.UUID, state patterns.CooldownState) error {
	m.store.SetDefault(cooldownKey(userID, profileID), state.Copy())
	return nil
}
