package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLocker_SerializesSameKey(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, 7, time.Second)
			assert.NoError(t, err)

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "two holders inside the same key's critical section")
}

func TestKeyedLocker_IndependentKeys(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	r1, err := l.Acquire(ctx, 1, time.Second)
	assert.NoError(t, err)
	defer r1()

	// a different key must not block behind key 1
	r2, err := l.Acquire(ctx, 2, 50*time.Millisecond)
	assert.NoError(t, err)
	r2()
}

func TestKeyedLocker_Timeout(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	r1, err := l.Acquire(ctx, 3, time.Second)
	assert.NoError(t, err)

	_, err = l.Acquire(ctx, 3, 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrLockTimeout)

	r1()

	// released, the key is acquirable again
	r2, err := l.Acquire(ctx, 3, time.Second)
	assert.NoError(t, err)
	r2()
}

func TestKeyedLocker_ContextCancel(t *testing.T) {
	l := NewKeyedLocker()

	r1, err := l.Acquire(context.Background(), 4, time.Second)
	assert.NoError(t, err)
	defer r1()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, 4, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
