package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/pkg/metrics"
)

const (
	lockPrefix       = "lock:"
	defaultLockWait  = 3 * time.Second
	defaultLockHold  = 5 * time.Second
	defaultLockRetry = 25 * time.Millisecond
)

// releaseScript deletes the lock only if it still carries our token, so a
// lease that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements ports.Locker with Redis leases (SET NX PX), so every
// replica of the service serializes on the same keys.
// Key format: lock:<key>
type Locker struct {
	client *redis.Client
	log    zerolog.Logger

	wait  time.Duration
	hold  time.Duration
	retry time.Duration
}

// NewLocker creates a Locker. wait bounds how long Acquire polls for a busy
// key; hold is the lease TTL.
func NewLocker(client *redis.Client, wait, hold time.Duration, log zerolog.Logger) *Locker {
	if wait <= 0 {
		wait = defaultLockWait
	}
	if hold <= 0 {
		hold = defaultLockHold
	}
	return &Locker{client: client, log: log, wait: wait, hold: hold, retry: defaultLockRetry}
}

// Acquire implements ports.Locker.
func (l *Locker) Acquire(ctx context.Context, key string) (context.Context, func(), error) {
	redisKey := lockPrefix + key
	token := uuid.NewString()
	start := time.Now()
	deadline := start.Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.hold).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			return nil, nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			metrics.LockWaitDuration.WithLabelValues("redis").Observe(time.Since(start).Seconds())
			metrics.LockTimeoutsTotal.WithLabelValues("redis").Inc()
			return nil, nil, fmt.Errorf("acquire %s: %w", key, domain.ErrBusy)
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil, ctx.Err()
		case <-timer.C:
		}
	}
	metrics.LockWaitDuration.WithLabelValues("redis").Observe(time.Since(start).Seconds())

	heldCtx, cancelHold := context.WithTimeout(ctx, l.hold)
	var once sync.Once
	release := func() {
		once.Do(func() {
			cancelHold()
			relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeout)
			defer cancel()
			if err := releaseScript.Run(relCtx, l.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				l.log.Warn().Err(err).Str("key", key).Msg("failed to release lock, lease will expire")
			}
		})
	}
	return heldCtx, release, nil
}
