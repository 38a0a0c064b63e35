// Package cache is a small in-process read cache with per-entry expiry.
package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const (
	KeyTodayDrop   = "drop:today"
	KeyLeaderboard = "drop:leaderboard"

	TodayDropTTL   = 15 * time.Second
	LeaderboardTTL = 30 * time.Second

	DefaultSize = 128
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache wraps an LRU with per-entry expiry. A nil *Cache is valid and
// behaves as an always-empty cache.
type Cache struct {
	lru *lru.Cache
	now func() time.Time
}

func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Cache{lru: l, now: time.Now}, nil
}

func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	raw, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	e, ok := raw.(entry)
	if !ok || !c.now().Before(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	c.lru.Add(key, entry{value: value, expiresAt: c.now().Add(ttl)})
}

// Delete drops every given key.
func (c *Cache) Delete(keys ...string) {
	if c == nil {
		return
	}
	for _, key := range keys {
		c.lru.Remove(key)
	}
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
