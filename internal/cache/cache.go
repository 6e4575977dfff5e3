package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Index is the persistent set of blueprint content hashes already ingested.
type Index interface {
	Has(ctx context.Context, hash string) (bool, error)
	ListHashes(ctx context.Context) ([]string, error)
}

// DocumentCache provides in-memory + backend lookups of ingested blueprints
// by content hash.
type DocumentCache struct {
	index  Index
	mu     sync.RWMutex
	memory map[string]struct{}
}

// NewDocumentCache creates a cache over index. A nil index keeps the cache
// memory only.
func NewDocumentCache(index Index) *DocumentCache {
	return &DocumentCache{
		index:  index,
		memory: make(map[string]struct{}),
	}
}

// Seen reports whether a blueprint with this hash was already ingested.
// Backend errors are logged and treated as a miss.
func (c *DocumentCache) Seen(ctx context.Context, hash string) bool {
	c.mu.RLock()
	_, ok := c.memory[hash]
	c.mu.RUnlock()
	if ok {
		return true
	}
	if c.index == nil {
		return false
	}

	found, err := c.index.Has(ctx, hash)
	if err != nil {
		log.Warn().Err(err).Str("hash", hash).Msg("Cache lookup failed")
		return false
	}
	if found {
		c.Mark(hash)
	}
	return found
}

// Mark records hash as ingested in memory.
func (c *DocumentCache) Mark(hash string) {
	c.mu.Lock()
	c.memory[hash] = struct{}{}
	c.mu.Unlock()
}

// Preload loads every known hash into memory.
func (c *DocumentCache) Preload(ctx context.Context) error {
	if c.index == nil {
		return nil
	}
	hashes, err := c.index.ListHashes(ctx)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, h := range hashes {
		c.memory[h] = struct{}{}
	}

	log.Info().Int("count", len(hashes)).Msg("Preloaded document cache")
	return nil
}

// Len returns the number of hashes held in memory.
func (c *DocumentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}
