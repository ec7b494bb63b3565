package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const pendingMarker = "pending"

// RedisIdempotency is the shared-cache variant of IdempotencyRepo, for
// several API instances in front of one database. Keys expire after ttl.
type RedisIdempotency struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotency(rdb *redis.Client, ttl time.Duration) *RedisIdempotency {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisIdempotency{rdb: rdb, ttl: ttl}
}

func redisKey(key string) string { return fmt.Sprintf("idempotent-key:%s", key) }

func (r *RedisIdempotency) Claim(ctx context.Context, key string) (int64, bool, error) {
	ok, err := r.rdb.SetNX(ctx, redisKey(key), pendingMarker, r.ttl).Result()
	if err != nil {
		return 0, false, errors.Wrap(err, "claim idempotency key")
	}
	if ok {
		return 0, true, nil
	}
	val, err := r.rdb.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return r.Claim(ctx, key)
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "read idempotency key")
	}
	if val == pendingMarker {
		return 0, false, nil
	}
	return cast.ToInt64(val), false, nil
}

func (r *RedisIdempotency) Complete(ctx context.Context, key string, orderID int64) error {
	err := r.rdb.Set(ctx, redisKey(key), orderID, r.ttl).Err()
	return errors.Wrap(err, "complete idempotency key")
}

func (r *RedisIdempotency) Release(ctx context.Context, key string) error {
	val, err := r.rdb.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read idempotency key")
	}
	if val != pendingMarker {
		return nil
	}
	return errors.Wrap(r.rdb.Del(ctx, redisKey(key)).Err(), "release idempotency key")
}
