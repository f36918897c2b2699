package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	pingTimeout  = 5 * time.Second
	dialTimeout  = 3 * time.Second
	readTimeout  = time.Second
	writeTimeout = time.Second
)

// OpenRedis connects to the idempotency / policy cache and verifies it with a PING.
// The client is closed again when the ping fails.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis %s db=%d: %w", addr, db, err)
	}
	log.Info().Str("addr", addr).Int("db", db).Msg("redis connected")
	return r, nil
}

// Ping adapts a client to the health-check signature.
func Ping(r *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error { return r.Ping(ctx).Err() }
}
