package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// redisClient is the part of *rdb.Client the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *rdb.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *rdb.StatusCmd
	Del(ctx context.Context, keys ...string) *rdb.IntCmd
	Ping(ctx context.Context) *rdb.StatusCmd
	Close() error
}

// RedisStore keeps codes in redis so every node sees the same codes.
type RedisStore struct {
	c redisClient
}

// NewRedisStore connects to addr and pings it once.
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	client := rdb.NewClient(&rdb.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("otp: redis ping failed: %w", err)
	}
	return &RedisStore{c: client}, nil
}

func (r *RedisStore) Put(ctx context.Context, purpose Purpose, email, code string, ttl time.Duration) error {
	if err := r.c.Set(ctx, key(purpose, email), digest(code), ttl).Err(); err != nil {
		return fmt.Errorf("otp: redis set: %w", err)
	}
	return nil
}

// Take deletes the key only after a match; Del's count decides the winner
// when two callers race with the same code.
func (r *RedisStore) Take(ctx context.Context, purpose Purpose, email, code string) (bool, error) {
	k := key(purpose, email)

	stored, err := r.c.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, rdb.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("otp: redis get: %w", err)
	}
	if !matches(stored, code) {
		return false, nil
	}

	n, err := r.c.Del(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("otp: redis del: %w", err)
	}
	return n == 1, nil
}

func (r *RedisStore) Close() error {
	return r.c.Close()
}
