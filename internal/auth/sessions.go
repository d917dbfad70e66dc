// File: internal/auth/sessions.go
package auth

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/config"
	platformredis "github.com/ShIIIrochka/SecondStagePROD/internal/platform/redis"

	"github.com/google/uuid"
)

// SessionStore keeps the single active token per principal. Signing in (or
// up) overwrites the stored token, so earlier tokens stop matching and die.
type SessionStore interface {
	// Put records token as the one active session for the subject.
	Put(ctx context.Context, subjectID uuid.UUID, token string, ttl time.Duration) error
	// Matches reports whether token is the subject's current session.
	Matches(ctx context.Context, subjectID uuid.UUID, token string) (bool, error)
	// Drop forgets the subject's session.
	Drop(ctx context.Context, subjectID uuid.UUID) error
}

func sessionKey(subjectID uuid.UUID) string {
	return "whitelist:" + subjectID.String()
}

// NewSessionStore picks the backend from the configuration: Redis when
// configured, the in-process store otherwise (mirroring the sqlite fallback
// on the storage side).
func NewSessionStore(cfg *config.Config, logger *zap.Logger) (SessionStore, error) {
	if cfg.UsesRedis() {
		client, err := platformredis.NewClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisSessionStore(client), nil
	}
	logger.Warn("REDIS_HOST not set, using in-process session store")
	return NewMemorySessionStore(cfg.TokenTTL), nil
}

// RedisSessionStore keeps sessions in Redis under whitelist:{id}.
type RedisSessionStore struct {
	client *redis.Client
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Put(ctx context.Context, subjectID uuid.UUID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(subjectID), token, ttl).Err()
}

func (s *RedisSessionStore) Matches(ctx context.Context, subjectID uuid.UUID, token string) (bool, error) {
	stored, err := s.client.Get(ctx, sessionKey(subjectID)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return stored == token, nil
}

func (s *RedisSessionStore) Drop(ctx context.Context, subjectID uuid.UUID) error {
	return s.client.Del(ctx, sessionKey(subjectID)).Err()
}

// MemorySessionStore is the in-process fallback for runs without Redis.
type MemorySessionStore struct {
	cache *gocache.Cache
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an in-memory session store whose janitor
// sweeps expired entries at half the session TTL.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &MemorySessionStore{cache: gocache.New(ttl, cleanup)}
}

func (s *MemorySessionStore) Put(_ context.Context, subjectID uuid.UUID, token string, ttl time.Duration) error {
	s.cache.Set(sessionKey(subjectID), token, ttl)
	return nil
}

func (s *MemorySessionStore) Matches(_ context.Context, subjectID uuid.UUID, token string) (bool, error) {
	stored, found := s.cache.Get(sessionKey(subjectID))
	if !found {
		return false, nil
	}
	return stored == token, nil
}

func (s *MemorySessionStore) Drop(_ context.Context, subjectID uuid.UUID) error {
	s.cache.Delete(sessionKey(subjectID))
	return nil
}
