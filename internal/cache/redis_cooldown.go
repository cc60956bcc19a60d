package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/patterns"
)

// CooldownKeyPrefix namespaces cooldown hashes.
// Format: {prefix}:cooldown:{userID}:{profileID}
const CooldownKeyPrefix = "cooldown"

// RedisCooldownStore stores cooldown state as one hash per profile, field per
// pattern type. When Redis is unreachable it falls back to an in-memory store.
type RedisCooldownStore struct {
	client         *redis.Client
	prefix         string
	ttl            time.Duration
	fallback       *MemoryCooldownStore
	redisAvailable atomic.Bool
	logger         *logrus.Entry
}

// NewRedisClient builds a go-redis client from configuration
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisCooldownStore creates a store on client. A nil client runs in
// memory-only mode.
func NewRedisCooldownStore(ctx context.Context, client *redis.Client, prefix string, ttl time.Duration, logger *logrus.Logger) *RedisCooldownStore {
	s := &RedisCooldownStore{
		client:   client,
		prefix:   prefix,
		ttl:      ttl,
		fallback: NewMemoryCooldownStore(ttl),
		logger:   logger.WithField("component", "cooldown_store"),
	}

	if client == nil {
		s.logger.Info("No Redis client provided, cooldown state kept in memory")
		return s
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		s.logger.WithError(err).Warn("Redis unavailable at startup, cooldown state kept in memory")
		return s
	}
	s.redisAvailable.Store(true)
	return s
}

// Available reports whether Redis is currently used
func (s *RedisCooldownStore) Available() bool {
	return s.redisAvailable.Load()
}

func (s *RedisCooldownStore) key(userID, profileID uuid.UUID) string {
	if s.prefix == "" {
		return fmt.Sprintf("%s:%s", CooldownKeyPrefix, cooldownKey(userID, profileID))
	}
	return fmt.Sprintf("%s:%s:%s", s.prefix, CooldownKeyPrefix, cooldownKey(userID, profileID))
}

// Load reads the cooldown hash
func (s *RedisCooldownStore) Load(ctx context.Context, userID, profileID uuid.UUID) (patterns.CooldownState, error) {
	if !s.Available() {
		return s.fallback.Load(ctx, userID, profileID)
	}

	fields, err := s.client.HGetAll(ctx, s.key(userID, profileID)).Result()
	if err != nil {
		s.markUnavailable(err)
		return s.fallback.Load(ctx, userID, profileID)
	}
	return decodeCooldown(fields), nil
}

// Save replaces the cooldown hash and refreshes its expiry
func (s *RedisCooldownStore) Save(ctx context.Context, userID, profileID uuid.UUID, state patterns.CooldownState) error {
	if err := s.fallback.Save(ctx, userID, profileID, state); err != nil {
		return err
	}
	if !s.Available() || len(state) == 0 {
		return nil
	}

	key := s.key(userID, profileID)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, encodeCooldown(state))
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.markUnavailable(err)
		return fmt.Errorf("failed to save cooldown state: %w", err)
	}
	return nil
}

func (s *RedisCooldownStore) markUnavailable(err error) {
	if s.redisAvailable.CompareAndSwap(true, false) {
		s.logger.WithError(err).Warn("Redis cooldown store failed, switching to in-memory state")
	}
}

func encodeCooldown(state patterns.CooldownState) map[string]interface{} {
	fields := make(map[string]interface{}, len(state))
	for t, at := range state {
		fields[string(t)] = at.UTC().Format(time.RFC3339Nano)
	}
	return fields
}

// decodeCooldown skips unknown pattern types and unparseable times
func decodeCooldown(fields map[string]string) patterns.CooldownState {
	state := make(patterns.CooldownState, len(fields))
	for field, raw := range fields {
		t := models.PatternType(field)
		if !t.Valid() {
			continue
		}
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			continue
		}
		state[t] = at
	}
	return state
}
