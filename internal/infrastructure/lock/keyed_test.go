package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playhouse/roomhub/internal/core/domain"
)

func TestKeyed_SerializesSameKey(t *testing.T) {
	k := NewKeyed(time.Second, time.Second)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, release, err := k.Acquire(context.Background(), "room:1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, k.Len(), "slots must be dropped once released")
}

func TestKeyed_DifferentKeysDoNotContend(t *testing.T) {
	k := NewKeyed(50*time.Millisecond, time.Second)

	_, releaseA, err := k.Acquire(context.Background(), "user:a")
	require.NoError(t, err)
	defer releaseA()

	_, releaseB, err := k.Acquire(context.Background(), "user:b")
	require.NoError(t, err)
	releaseB()
}

func TestKeyed_WaitTimeoutIsBusy(t *testing.T) {
	k := NewKeyed(20*time.Millisecond, time.Second)

	_, release, err := k.Acquire(context.Background(), "room:1")
	require.NoError(t, err)
	defer release()

	_, _, err = k.Acquire(context.Background(), "room:1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBusy))
	assert.True(t, domain.IsRetryable(err))
}

func TestKeyed_CallerCancellationIsNotBusy(t *testing.T) {
	k := NewKeyed(time.Second, time.Second)

	_, release, err := k.Acquire(context.Background(), "room:1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = k.Acquire(ctx, "room:1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyed_ReleaseIsIdempotent(t *testing.T) {
	k := NewKeyed(50*time.Millisecond, time.Second)

	_, release, err := k.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release()
	release()

	_, release2, err := k.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release2()
	assert.Equal(t, 0, k.Len())
}

func TestKeyed_HeldContextExpires(t *testing.T) {
	k := NewKeyed(time.Second, 20*time.Millisecond)

	heldCtx, release, err := k.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	select {
	case <-heldCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("held context did not expire")
	}
}
