package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/saintathena/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced manually by tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(ttl time.Duration, maxEntries int) (*MemoryCache, *fakeClock) {
	clock := newFakeClock()
	c := NewMemoryCache(ttl, maxEntries)
	c.now = clock.Now
	return c, clock
}

func TestNewMemoryCache_DefaultTTL(t *testing.T) {
	c := NewMemoryCache(0, 0)
	assert.Equal(t, DefaultTTL, c.TTL())
	assert.Equal(t, 60*time.Second, c.TTL())
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(time.Minute, 0)
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
	}{
		{name: "store and retrieve payload", key: "single:salmon:limit=10", value: []byte("payload")},
		{name: "store empty payload", key: "single:empty", value: []byte{}},
		{name: "overwrite keeps last writer", key: "single:salmon:limit=10", value: []byte("second")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, tt.key, tt.value))

			got, err := c.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	c, _ := newTestCache(time.Minute, 0)

	_, err := c.Get(context.Background(), "non-existent-key")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_ExpiresLazilyOnRead(t *testing.T) {
	c, clock := newTestCache(60*time.Second, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v")))

	clock.Advance(60 * time.Second)
	_, err := c.Get(ctx, "k")
	require.NoError(t, err, "an entry exactly TTL old is still fresh")

	clock.Advance(time.Millisecond)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Equal(t, 0, c.Size(), "expired entry is removed on read")
}

func TestMemoryCache_StoredValueIsIsolated(t *testing.T) {
	c, _ := newTestCache(time.Minute, 0)
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCache_Delete(t *testing.T) {
	c, _ := newTestCache(time.Minute, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "delete-test", []byte("value")))
	require.NoError(t, c.Delete(ctx, "delete-test"))

	_, err := c.Get(ctx, "delete-test")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_Exists(t *testing.T) {
	c, clock := newTestCache(time.Minute, 0)
	ctx := context.Background()

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	exists, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	clock.Advance(2 * time.Minute)
	exists, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_Sweep(t *testing.T) {
	c, clock := newTestCache(time.Minute, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "old-1", []byte("a")))
	require.NoError(t, c.Set(ctx, "old-2", []byte("b")))
	clock.Advance(45 * time.Second)
	require.NoError(t, c.Set(ctx, "fresh", []byte("c")))
	clock.Advance(30 * time.Second)

	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 1, c.Size())

	_, err := c.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryCache_MaxEntriesEvictsOldest(t *testing.T) {
	c, clock := newTestCache(time.Minute, 2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "first", []byte("1")))
	clock.Advance(time.Second)
	require.NoError(t, c.Set(ctx, "second", []byte("2")))
	clock.Advance(time.Second)
	require.NoError(t, c.Set(ctx, "third", []byte("3")))

	assert.Equal(t, 2, c.Size())
	_, err := c.Get(ctx, "first")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	// Overwriting an existing key never evicts
	require.NoError(t, c.Set(ctx, "second", []byte("2b")))
	assert.Equal(t, 2, c.Size())
}

func TestMemoryCache_Clear(t *testing.T) {
	c, _ := newTestCache(time.Minute, 0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("key-%d", i), []byte("v")))
	}
	assert.Equal(t, 5, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c, clock := newTestCache(time.Minute, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%5)
			value := []byte(fmt.Sprintf("value-%d", i))
			_ = c.Set(ctx, key, value)
			if got, err := c.Get(ctx, key); err == nil {
				assert.Contains(t, string(got), "value-")
			}
			if i%10 == 0 {
				clock.Advance(time.Second)
				c.Sweep()
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 5)
}
