// Package caching keeps fetched sitemap documents on disk so resumed runs
// don't refetch an unchanged sitemap tree.
package caching

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Cache provides a simple file-based cache with a TTL.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive, got %s", ttl)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

func (c *Cache) key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", hash)
}

// Get returns the cached body for url when present and younger than the TTL.
func (c *Cache) Get(url string) ([]byte, bool) {
	filePath := filepath.Join(c.path, c.key(url))

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores data for url, replacing any previous entry.
func (c *Cache) Set(url string, data []byte) error {
	filePath := filepath.Join(c.path, c.key(url))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Getter fetches a document body. It matches sitemap.Getter.
type Getter interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// CachedGetter serves bodies from the cache and falls through to next on a miss.
type CachedGetter struct {
	next   Getter
	cache  *Cache
	logger *slog.Logger
}

func NewCachedGetter(next Getter, cache *Cache, logger *slog.Logger) *CachedGetter {
	return &CachedGetter{next: next, cache: cache, logger: logger}
}

func (g *CachedGetter) GetBytes(ctx context.Context, url string) ([]byte, error) {
	if data, ok := g.cache.Get(url); ok {
		g.logger.Debug("Sitemap cache hit", "url", url)
		return data, nil
	}

	data, err := g.next.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := g.cache.Set(url, data); err != nil {
		g.logger.Warn("Failed to cache sitemap", "url", url, "error", err)
	}
	return data, nil
}
