// Package cache memoizes parsed design files keyed by content, so
// re-exporting an unchanged tree skips the frontends.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

// Key identifies one parse result: the frontend language, the file path and
// the SHA-256 of the source.
func Key(language, path string, src []byte) string {
	sum := sha256.Sum256(src)
	return language + "|" + path + "|" + hex.EncodeToString(sum[:])
}

// Stats is a snapshot of cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// ParseCache is a bounded in-memory cache of parse results. Cached contexts
// are shared; callers must treat them as read-only. A nil *ParseCache is a
// valid cache that never hits.
type ParseCache struct {
	c otter.Cache[string, *hdlobjects.Context]
}

// New returns a cache holding at most capacity files. A capacity of zero
// disables caching and returns nil.
func New(capacity int) (*ParseCache, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("cache capacity cannot be negative: %d", capacity)
	}
	if capacity == 0 {
		return nil, nil
	}
	c, err := otter.MustBuilder[string, *hdlobjects.Context](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build parse cache: %w", err)
	}
	return &ParseCache{c: c}, nil
}

// Get returns the cached context for key.
func (p *ParseCache) Get(key string) (*hdlobjects.Context, bool) {
	if p == nil {
		return nil, false
	}
	return p.c.Get(key)
}

// Put stores ctx under key.
func (p *ParseCache) Put(key string, ctx *hdlobjects.Context) {
	if p == nil || ctx == nil {
		return
	}
	p.c.Set(key, ctx)
}

// Invalidate drops every entry.
func (p *ParseCache) Invalidate() {
	if p == nil {
		return
	}
	p.c.Clear()
}

// Stats reports hit and miss counters.
func (p *ParseCache) Stats() Stats {
	if p == nil {
		return Stats{}
	}
	s := p.c.Stats()
	return Stats{Hits: s.Hits(), Misses: s.Misses(), Size: p.c.Size()}
}

// Close releases the cache's background resources.
func (p *ParseCache) Close() {
	if p == nil {
		return
	}
	p.c.Close()
}
