package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheExpiry(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(KeyTodayDrop, "drop", TodayDropTTL)
	v, ok := c.Get(KeyTodayDrop)
	require.True(t, ok)
	assert.Equal(t, "drop", v)

	now = now.Add(TodayDropTTL)
	_, ok = c.Get(KeyTodayDrop)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCacheDelete(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	c.Set(KeyTodayDrop, 1, time.Minute)
	c.Set(KeyLeaderboard, 2, time.Minute)
	c.Delete(KeyTodayDrop, KeyLeaderboard)

	_, ok := c.Get(KeyTodayDrop)
	assert.False(t, ok)
	_, ok = c.Get(KeyLeaderboard)
	assert.False(t, ok)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Get("a")
	c.Set("c", 3, time.Minute)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestNilCacheIsUsable(t *testing.T) {
	var c *Cache
	c.Set("k", 1, time.Minute)
	c.Delete("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}
