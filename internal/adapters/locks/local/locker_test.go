package local

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrack/internal/ports/locks"
)

func TestLockExcludesSameKey(t *testing.T) {
	l := New()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "pet-1")
			if err != nil {
				t.Error(err)
				return
			}
			defer unlock()

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
	assert.Empty(t, l.keys, "entries are dropped once released")
}

func TestLockDifferentKeysDoNotBlock(t *testing.T) {
	l := New()
	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLockHonoursContext(t *testing.T) {
	l := New()
	unlock, err := l.Lock(context.Background(), "pet-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "pet-1")
	assert.ErrorIs(t, err, locks.ErrNotAcquired)

	unlock()
	unlock()

	again, err := l.Lock(context.Background(), "pet-1")
	require.NoError(t, err)
	again()
}
