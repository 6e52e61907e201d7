package territory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_GetSet(t *testing.T) {
	cache := NewResultCache(time.Minute)
	defer cache.Stop()

	_, ok := cache.Get("flux:1")
	assert.False(t, ok)

	cache.Set("flux:1", 42)
	value, ok := cache.Get("flux:1")
	require.True(t, ok)
	assert.Equal(t, 42, value)

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-12)
}

func TestResultCache_Expiry(t *testing.T) {
	cache := NewResultCache(time.Millisecond)
	defer cache.Stop()

	cache.Set("flux:1", 1)
	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Get("flux:1")
	assert.False(t, ok)
	cache.removeExpired()
	assert.Zero(t, cache.Size())
}

func TestResultCache_GetOrSet(t *testing.T) {
	cache := NewResultCache(time.Minute)
	defer cache.Stop()
	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return "result", nil
	}

	for i := 0; i < 3; i++ {
		value, err := cache.GetOrSet("stocks:1", compute)
		require.NoError(t, err)
		assert.Equal(t, "result", value)
	}
	assert.Equal(t, 1, calls)

	_, err := cache.GetOrSet("stocks:2", func() (interface{}, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
	_, ok := cache.Get("stocks:2")
	assert.False(t, ok)
}

func TestResultCache_DeleteByPrefix(t *testing.T) {
	cache := NewResultCache(time.Minute)
	defer cache.Stop()

	cache.Set("flux:1", 1)
	cache.Set("flux:2", 2)
	cache.Set("stocks:1", 3)

	cache.DeleteByPrefix("flux:")
	assert.Equal(t, 1, cache.Size())

	cache.Clear()
	assert.Zero(t, cache.Size())
}
