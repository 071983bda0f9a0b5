package lock

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedRegistry_WithLock_MutualExclusion(t *testing.T) {
	registry := NewKeyedRegistry()
	ctx := context.Background()

	const goroutines = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := registry.WithLock(ctx, "stock:1", time.Second, func() error {
				// Unsynchronized increment; only the lock makes this safe.
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
	assert.Equal(t, 0, registry.Len())
}

func TestKeyedRegistry_WithLock_DifferentKeysRunInParallel(t *testing.T) {
	registry := NewKeyedRegistry()
	ctx := context.Background()

	aHeld := make(chan struct{})
	releaseA := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- registry.WithLock(ctx, "stock:a", time.Second, func() error {
			close(aHeld)
			<-releaseA
			return nil
		})
	}()

	<-aHeld
	// While "stock:a" is held, "stock:b" must be acquirable immediately.
	err := registry.WithLock(ctx, "stock:b", 100*time.Millisecond, func() error { return nil })
	require.NoError(t, err)

	close(releaseA)
	require.NoError(t, <-done)
	assert.Equal(t, 0, registry.Len())
}

func TestKeyedRegistry_WithLock_Timeout(t *testing.T) {
	registry := NewKeyedRegistry()
	ctx := context.Background()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = registry.WithLock(ctx, "coupon:1", time.Second, func() error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := registry.WithLock(ctx, "coupon:1", 30*time.Millisecond, func() error {
		t.Error("action must not run after a timed-out acquisition")
		return nil
	})

	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeLockTimeout))

	close(release)
}

func TestKeyedRegistry_WithLock_ReleasesOnActionError(t *testing.T) {
	registry := NewKeyedRegistry()
	ctx := context.Background()

	boom := shared.NewDomainError("OUT_OF_STOCK", "Insufficient stock")
	err := registry.WithLock(ctx, "stock:9", time.Second, func() error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The lock must be free again and the entry gone.
	assert.Equal(t, 0, registry.Len())
	err = registry.WithLock(ctx, "stock:9", 50*time.Millisecond, func() error { return nil })
	assert.NoError(t, err)
}

func TestKeyedRegistry_WithLock_ContextCancellation(t *testing.T) {
	registry := NewKeyedRegistry()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = registry.WithLock(context.Background(), "stock:ctx", time.Second, func() error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := registry.WithLock(ctx, "stock:ctx", time.Second, func() error { return nil })
	require.ErrorIs(t, err, context.Canceled)

	close(release)
}

func TestKeyedRegistry_NoEntryLeak(t *testing.T) {
	registry := NewKeyedRegistry()
	ctx := context.Background()

	const keys = 200
	var wg sync.WaitGroup
	for i := 0; i < keys; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("stock:%d", i)
			err := registry.WithLock(ctx, key, time.Second, func() error { return nil })
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, registry.Len(), "uncontended entries must be removed")
}

func TestKeyedRegistry_WithLockAll_SortsAndDeduplicates(t *testing.T) {
	registry := NewKeyedRegistry()
	ctx := context.Background()

	var order []string
	err := registry.WithLockAll(ctx, []string{"stock:2", "stock:1", "stock:2"}, time.Second, func() error {
		order = append(order, "ran")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ran"}, order)
	assert.Equal(t, 0, registry.Len())
}

func TestKeyedRegistry_WithLockAll_EmptyKeys(t *testing.T) {
	registry := NewKeyedRegistry()
	err := registry.WithLockAll(context.Background(), nil, time.Second, func() error { return nil })
	require.Error(t, err)
}

func TestKeyedRegistry_WithLockAll_NoDeadlockOnOppositeOrders(t *testing.T) {
	registry := NewKeyedRegistry()
	ctx := context.Background()

	const rounds = 100
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			err := registry.WithLockAll(ctx, []string{"stock:1", "stock:2"}, 5*time.Second, func() error {
				return nil
			})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			err := registry.WithLockAll(ctx, []string{"stock:2", "stock:1"}, 5*time.Second, func() error {
				return nil
			})
			assert.NoError(t, err)
		}
	}()

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("deadlock: opposite-order multi-key sections did not complete")
	}
	assert.Equal(t, 0, registry.Len())
}

func TestKeyedRegistry_WithLockAll_ReleasesAcquiredOnTimeout(t *testing.T) {
	registry := NewKeyedRegistry()
	ctx := context.Background()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = registry.WithLock(ctx, "stock:b", time.Second, func() error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := registry.WithLockAll(ctx, []string{"stock:a", "stock:b"}, 30*time.Millisecond, func() error {
		t.Error("action must not run")
		return nil
	})
	require.True(t, shared.IsCode(err, shared.CodeLockTimeout))

	// "stock:a" must have been rolled back.
	err = registry.WithLock(ctx, "stock:a", 50*time.Millisecond, func() error { return nil })
	assert.NoError(t, err)

	close(release)
}

// The timeout bounds the whole multi-key acquisition, not each key. With
// "stock:a" held for 100ms and "stock:b" held throughout, a per-key budget
// would let the caller wait 100ms + 150ms; the shared deadline must cut it
// off at roughly 150ms total.
func TestKeyedRegistry_WithLockAll_SharedDeadlineAcrossKeys(t *testing.T) {
	registry := NewKeyedRegistry()
	ctx := context.Background()

	require.True(t, registry.TryLock("stock:a", time.Second))
	require.True(t, registry.TryLock("stock:b", time.Second))
	defer func() { _ = registry.Unlock("stock:b") }()

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = registry.Unlock("stock:a")
	}()

	start := time.Now()
	err := registry.WithLockAll(ctx, []string{"stock:a", "stock:b"}, 150*time.Millisecond, func() error {
		t.Error("action must not run")
		return nil
	})
	elapsed := time.Since(start)

	require.True(t, shared.IsCode(err, shared.CodeLockTimeout))
	assert.Less(t, elapsed, 220*time.Millisecond, "waits must not accumulate per key")

	// "stock:a" was acquired partway through and must be free again.
	assert.NoError(t, registry.WithLock(ctx, "stock:a", 50*time.Millisecond, func() error { return nil }))
}

func TestKeyedRegistry_TryLockUnlock(t *testing.T) {
	registry := NewKeyedRegistry()

	t.Run("acquires and releases", func(t *testing.T) {
		require.True(t, registry.TryLock("stock:7", 100*time.Millisecond))
		assert.Equal(t, 1, registry.Len())
		require.NoError(t, registry.Unlock("stock:7"))
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("second holder times out", func(t *testing.T) {
		require.True(t, registry.TryLock("stock:8", 100*time.Millisecond))
		assert.False(t, registry.TryLock("stock:8", 30*time.Millisecond))
		require.NoError(t, registry.Unlock("stock:8"))
	})

	t.Run("unlock without hold fails", func(t *testing.T) {
		err := registry.Unlock("stock:nothing")
		require.Error(t, err)
	})
}

func TestKeyedRegistry_DefaultTimeoutOption(t *testing.T) {
	registry := NewKeyedRegistry(WithDefaultTimeout(20 * time.Millisecond))

	require.True(t, registry.TryLock("stock:d", 0))
	defer func() { _ = registry.Unlock("stock:d") }()

	start := time.Now()
	err := registry.WithLock(context.Background(), "stock:d", 0, func() error { return nil })
	elapsed := time.Since(start)

	require.True(t, shared.IsCode(err, shared.CodeLockTimeout))
	assert.Less(t, elapsed, 500*time.Millisecond)
}
