// Package lock provides the in-process implementation of ports.Locker: one
// weighted semaphore per key, created on demand and dropped when the last
// waiter leaves.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/pkg/metrics"
)

const (
	DefaultWaitTimeout = 3 * time.Second
	DefaultHoldTimeout = 5 * time.Second
)

type slot struct {
	sem  *semaphore.Weighted
	refs int
}

// Keyed serializes callers per key. Different keys never contend.
type Keyed struct {
	mu    sync.Mutex
	slots map[string]*slot

	wait time.Duration
	hold time.Duration
}

// NewKeyed returns a Keyed locker. Non-positive timeouts fall back to the defaults.
func NewKeyed(wait, hold time.Duration) *Keyed {
	if wait <= 0 {
		wait = DefaultWaitTimeout
	}
	if hold <= 0 {
		hold = DefaultHoldTimeout
	}
	return &Keyed{slots: make(map[string]*slot), wait: wait, hold: hold}
}

// Acquire implements ports.Locker.
func (k *Keyed) Acquire(ctx context.Context, key string) (context.Context, func(), error) {
	s := k.ref(key)
	start := time.Now()

	waitCtx, cancelWait := context.WithTimeout(ctx, k.wait)
	err := s.sem.Acquire(waitCtx, 1)
	cancelWait()
	metrics.LockWaitDuration.WithLabelValues("memory").Observe(time.Since(start).Seconds())
	if err != nil {
		k.unref(key, s)
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		metrics.LockTimeoutsTotal.WithLabelValues("memory").Inc()
		return nil, nil, fmt.Errorf("acquire %s: %w", key, domain.ErrBusy)
	}

	heldCtx, cancelHold := context.WithTimeout(ctx, k.hold)
	var once sync.Once
	release := func() {
		once.Do(func() {
			cancelHold()
			s.sem.Release(1)
			k.unref(key, s)
		})
	}
	return heldCtx, release, nil
}

// Len returns the number of keys currently held or waited on.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}

func (k *Keyed) ref(key string) *slot {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.slots[key]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		k.slots[key] = s
	}
	s.refs++
	return s
}

func (k *Keyed) unref(key string, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
}
