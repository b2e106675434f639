package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Monthly creation limits per plan. Callers with no plan information at all
// (e.g. identities resolved without an account) get the default.
const (
	QuotaFree    = 20
	QuotaPro     = 200
	QuotaDefault = 100
)

const quotaTTL = 31 * 24 * time.Hour

// CounterStore is the storage needed by the quota limiter: monotonically
// increasing counters that expire on their own.
type CounterStore interface {
	Get(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type QuotaResult struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	Limit     int  `json:"limit"`
}

// QuotaLimiter bounds link creation per identity per calendar month.
type QuotaLimiter struct {
	store CounterStore
}

func NewQuotaLimiter(store CounterStore) *QuotaLimiter {
	return &QuotaLimiter{store: store}
}

// Consume checks the identity's counter for the current month and, when
// below the limit, increments it. At capacity nothing is mutated.
func (q *QuotaLimiter) Consume(ctx context.Context, identity, planStatus string) (QuotaResult, error) {
	limit := limitFor(planStatus)
	key := quotaKey(identity, time.Now())

	used, err := q.store.Get(ctx, key)
	if err != nil {
		return QuotaResult{}, fmt.Errorf("quota read failed: %w", err)
	}

	if used >= int64(limit) {
		return QuotaResult{Allowed: false, Remaining: 0, Limit: limit}, nil
	}

	used, err = q.store.Increment(ctx, key, quotaTTL)
	if err != nil {
		return QuotaResult{}, fmt.Errorf("quota increment failed: %w", err)
	}

	remaining := limit - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return QuotaResult{Allowed: true, Remaining: remaining, Limit: limit}, nil
}

func limitFor(planStatus string) int {
	switch planStatus {
	case "active", "trialing":
		return QuotaPro
	case "":
		return QuotaDefault
	default:
		return QuotaFree
	}
}

func quotaKey(identity string, now time.Time) string {
	return "quota:" + identity + ":" + now.Format("2006-01")
}

// RedisCounterStore backs the quota limiter with redis. The counter is
// created with its TTL on first increment so stale months clean themselves.
type RedisCounterStore struct {
	rdb *redis.Client
}

func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb}
}

func (s *RedisCounterStore) Get(ctx context.Context, key string) (int64, error) {
	if s.rdb == nil {
		return 0, nil
	}
	val, err := s.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// Without redis the counters cannot persist, so quota enforcement is
// effectively disabled rather than blocking all creation.
func (s *RedisCounterStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s.rdb == nil {
		return 1, nil
	}
	val, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		if err := s.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			return val, err
		}
	}
	return val, nil
}
