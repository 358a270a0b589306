package ports

import "context"

// Locker grants scoped exclusive access to a named resource.
//
// Acquire blocks until the key is free or the locker's wait timeout elapses,
// in which case it fails with domain.ErrBusy. The returned context is
// derived from ctx and expires when the holder has used the lock for longer
// than the locker allows; use it for every call made under the lock.
// release is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (context.Context, func(), error)
}
