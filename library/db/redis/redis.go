// Package redis wraps go-redis for short-lived counters.
package redis

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "blog-api/"

// DB is a wrapper for go-redis
type DB struct {
	db redis.UniversalClient
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	return &DB{db: redis.NewClient(opt)}
}

// NewDBWithClient wraps an existing client.
func NewDBWithClient(cli redis.UniversalClient) *DB {
	return &DB{db: cli}
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.db.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "ping redis")
	}

	return nil
}

// Close closes the underlying client.
func (db *DB) Close() error {
	return db.db.Close()
}

// Incr increments the counter of key and returns the new value.
// The first increment in a window sets the expiry, so a counter
// always disappears ttl after it was created.
func (db *DB) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	key = keyPrefix + key

	pipe := db.db.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Wrapf(err, "incr %q", key)
	}

	return incr.Val(), nil
}

// Count returns the current counter of key, zero if absent.
func (db *DB) Count(ctx context.Context, key string) (int64, error) {
	key = keyPrefix + key

	n, err := db.db.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "get %q", key)
	}

	return n, nil
}

// Reset removes the counter of key.
func (db *DB) Reset(ctx context.Context, key string) error {
	key = keyPrefix + key
	if err := db.db.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "del %q", key)
	}

	return nil
}
