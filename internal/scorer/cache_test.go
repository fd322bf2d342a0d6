package scorer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/panefit/panefit/internal/model"
)

func TestScoreCache_StoreAndLookup(t *testing.T) {
	cache := NewScoreCache(5 * time.Minute)

	score := model.ExternalScore{
		Importance:      0.8,
		Interestingness: 0.6,
		Summary:         "failing test run",
	}

	cache.Store("%1", "pane content here", score)

	got, ok := cache.Lookup("%1", "pane content here")
	if !ok {
		t.Fatal("expected cache hit, got miss")
	}
	if got.Importance != 0.8 {
		t.Errorf("Importance: got %v, want 0.8", got.Importance)
	}
	if got.Summary != "failing test run" {
		t.Errorf("Summary: got %q, want %q", got.Summary, "failing test run")
	}
}

func TestScoreCache_ContentChanged(t *testing.T) {
	cache := NewScoreCache(5 * time.Minute)

	cache.Store("%1", "old content", model.ExternalScore{Importance: 0.8})

	// Lookup with different content — cache miss
	_, ok := cache.Lookup("%1", "new content")
	if ok {
		t.Error("expected cache miss when content changed, got hit")
	}
}

func TestScoreCache_TTLExpiry(t *testing.T) {
	cache := NewScoreCache(1 * time.Millisecond)

	cache.Store("%1", "content", model.ExternalScore{Importance: 0.8})

	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Lookup("%1", "content")
	if ok {
		t.Error("expected cache miss after TTL expiry, got hit")
	}
}

func TestScoreCache_Invalidate(t *testing.T) {
	cache := NewScoreCache(5 * time.Minute)

	cache.Store("%1", "content", model.ExternalScore{Importance: 0.8})

	if _, ok := cache.Lookup("%1", "content"); !ok {
		t.Fatal("expected cache hit before invalidation")
	}

	cache.Invalidate("%1")

	if _, ok := cache.Lookup("%1", "content"); ok {
		t.Error("expected cache miss after invalidation, got hit")
	}
}

func TestScoreCache_ZeroTTLDisables(t *testing.T) {
	cache := NewScoreCache(0)

	cache.Store("%1", "content", model.ExternalScore{Importance: 0.8})

	if _, ok := cache.Lookup("%1", "content"); ok {
		t.Error("expected cache miss with zero TTL, got hit")
	}
}

func TestScoreCache_MultiplePanes(t *testing.T) {
	cache := NewScoreCache(5 * time.Minute)

	cache.Store("%1", "content-a", model.ExternalScore{Summary: "build"})
	cache.Store("%2", "content-b", model.ExternalScore{Summary: "logs"})

	got1, ok1 := cache.Lookup("%1", "content-a")
	got2, ok2 := cache.Lookup("%2", "content-b")

	if !ok1 || !ok2 {
		t.Fatalf("expected both cache hits: ok1=%v ok2=%v", ok1, ok2)
	}
	if got1.Summary != "build" || got2.Summary != "logs" {
		t.Errorf("got %q and %q, want build and logs", got1.Summary, got2.Summary)
	}
}

func TestScoreCache_ConcurrentAccess(t *testing.T) {
	cache := NewScoreCache(5 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("%%%d", n)
			for j := 0; j < 100; j++ {
				cache.Store(id, "content", model.ExternalScore{Importance: 0.5})
				cache.Lookup(id, "content")
				if j%10 == 0 {
					cache.Invalidate(id)
				}
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() > 10 {
		t.Errorf("cache has %d entries, want at most 10", cache.Len())
	}
}

func TestHashContent(t *testing.T) {
	h1 := hashContent("hello world")
	h2 := hashContent("hello world")
	if h1 != h2 {
		t.Error("same content should produce same hash")
	}
	if h1 == hashContent("other content") {
		t.Error("different content should produce different hashes")
	}
}
