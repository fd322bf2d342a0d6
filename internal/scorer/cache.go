package scorer

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/panefit/panefit/internal/model"
)

// ScoreCache caches external scores keyed by pane id and content hash.
// When pane content hasn't changed since the last scoring pass, the
// cached score is reused — saving an LLM API call per pane.
//
// Cache entries have a TTL. After expiry, the pane is re-scored even if
// content is identical, so a long-idle pane's judgment does not stay
// frozen forever.
type ScoreCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry // keyed by pane id
	ttl     time.Duration
}

type cacheEntry struct {
	contentHash string
	score       model.ExternalScore
	cachedAt    time.Time
	hitCount    int
}

// NewScoreCache creates a cache with the given TTL.
// A TTL of 0 disables caching.
func NewScoreCache(ttl time.Duration) *ScoreCache {
	return &ScoreCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// Lookup checks for a valid cached score for the given pane and content.
// Returns the cached score and true if found and valid.
func (c *ScoreCache) Lookup(paneID, content string) (model.ExternalScore, bool) {
	if c.ttl <= 0 {
		return model.ExternalScore{}, false
	}

	hash := hashContent(content)

	c.mu.RLock()
	entry, ok := c.entries[paneID]
	c.mu.RUnlock()

	if !ok {
		return model.ExternalScore{}, false
	}

	// Content changed — cache miss
	if entry.contentHash != hash {
		return model.ExternalScore{}, false
	}

	// TTL expired — cache miss
	if time.Since(entry.cachedAt) > c.ttl {
		return model.ExternalScore{}, false
	}

	c.mu.Lock()
	entry.hitCount++
	c.mu.Unlock()

	return entry.score, true
}

// Store saves a score in the cache for the given pane and content.
func (c *ScoreCache) Store(paneID, content string, score model.ExternalScore) {
	if c.ttl <= 0 {
		return
	}

	hash := hashContent(content)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[paneID] = &cacheEntry{
		contentHash: hash,
		score:       score,
		cachedAt:    time.Now(),
	}
}

// Invalidate removes the cache entry for the given pane, forcing
// re-scoring on the next pass regardless of content.
func (c *ScoreCache) Invalidate(paneID string) {
	c.mu.Lock()
	delete(c.entries, paneID)
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *ScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// hashContent returns a hex-encoded SHA256 hash of the content.
func hashContent(content string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", h)
}
