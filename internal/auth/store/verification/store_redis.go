package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"authgate/internal/auth/models"
	"authgate/pkg/platform/sentinel"
)

var (
	lookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "authgate_verification_code_lookup_duration_ms",
		Help:    "Latency of verification code lookups in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})
)

const (
	// Redis key prefix for pending registration codes
	codeKeyPrefix = "verify:code:"
)

// redisEntry is the JSON value stored under the code key. The full candidate
// payload rides along with the code so confirmation never needs a second
// round-trip of registration data.
type redisEntry struct {
	Code int `json:"code"`
	models.PendingRegistration
}

// RedisStore is the Redis-backed verification code store. This is the
// production implementation: TTL eviction is native, and pending
// registrations surviving a restart is explicitly not required.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed verification code store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put stores a pending registration under its key with expiry now+ttl.
// Unconditionally overwrites any prior entry for the key: a re-requested
// code invalidates the old one by construction.
func (s *RedisStore) Put(ctx context.Context, key string, code int, payload models.PendingRegistration, ttl time.Duration) error {
	value, err := json.Marshal(redisEntry{Code: code, PendingRegistration: payload})
	if err != nil {
		return fmt.Errorf("marshal pending registration: %w", err)
	}
	if err := s.client.Set(ctx, codeKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("store pending registration: %w", err)
	}
	return nil
}

// Get returns the live entry for key. Redis expiry guarantees an expired
// entry is never returned; it is indistinguishable from absence.
func (s *RedisStore) Get(ctx context.Context, key string) (int, models.PendingRegistration, error) {
	start := time.Now()
	defer func() {
		lookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	raw, err := s.client.Get(ctx, codeKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, models.PendingRegistration{}, fmt.Errorf("pending registration not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return 0, models.PendingRegistration{}, fmt.Errorf("load pending registration: %w", err)
	}

	var e redisEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return 0, models.PendingRegistration{}, fmt.Errorf("decode pending registration: %w", err)
	}
	return e.Code, e.PendingRegistration, nil
}

// Consume deletes the entry after a successful match so the same code cannot
// be replayed for a second registration attempt.
func (s *RedisStore) Consume(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, codeKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("consume pending registration: %w", err)
	}
	return nil
}
