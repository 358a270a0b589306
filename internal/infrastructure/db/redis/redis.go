package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for the lock backend connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
	// PoolSize bounds concurrent commands; lock polling holds a connection
	// only for the duration of one SET NX.
	PoolSize int
}

// Connect opens a client and pings it once. The client is closed again when
// the ping fails.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	if err := Ping(client)(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Ping returns a readiness check for client.
func Ping(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		return nil
	}
}
