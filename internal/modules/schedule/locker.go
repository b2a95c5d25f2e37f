package schedule

import (
	"context"
	"sync"
	"time"
)

// KeyedLocker serializes work per int64 key. Each slot gets its own
// lock, so bookings against different slots never contend. Lock state
// is refcounted and removed once the last waiter releases it.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[int64]*keyedLock)}
}

// Acquire blocks until the key's lock is held, the timeout elapses, or
// ctx is done. On success it returns a release func that must be called
// exactly once.
func (l *KeyedLocker) Acquire(ctx context.Context, key int64, timeout time.Duration) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case kl.ch <- struct{}{}:
		return func() {
			<-kl.ch
			l.release(key, kl)
		}, nil
	case <-timer.C:
		l.release(key, kl)
		return nil, ErrLockTimeout
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}
}

func (l *KeyedLocker) release(key int64, kl *keyedLock) {
	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
