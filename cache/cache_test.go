package cache

import (
	"testing"
	"time"

	"github.com/use-agent/harvest/models"
)

func TestKey_DependsOnConfig(t *testing.T) {
	all := models.DefaultExtractionConfig()
	emails := models.ExtractionConfig{Emails: true}

	if Key("https://acme.com", all) == Key("https://acme.com", emails) {
		t.Error("different configs produced the same key")
	}
	if Key("https://acme.com", all) != Key("https://acme.com", all) {
		t.Error("identical inputs produced different keys")
	}
	if Key("https://acme.com", all) == Key("https://acme.org", all) {
		t.Error("different urls produced the same key")
	}
}

func TestCache_GetRespectsMaxAge(t *testing.T) {
	c := New(10, time.Hour)
	defer c.Close()

	res := &models.ExtractionResult{URL: "https://acme.com"}
	c.Set("k", res)

	if _, ok := c.Get("k", 0); ok {
		t.Error("maxAge 0 should bypass the cache")
	}
	got, ok := c.Get("k", 60_000)
	if !ok || got != res {
		t.Errorf("Get = %v, %v; want cached result", got, ok)
	}

	c.mu.Lock()
	c.store["k"].createdAt = time.Now().Add(-2 * time.Minute)
	c.mu.Unlock()
	if _, ok := c.Get("k", 60_000); ok {
		t.Error("stale entry served")
	}
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := New(2, time.Hour)
	defer c.Close()

	c.Set("a", &models.ExtractionResult{})
	c.Set("b", &models.ExtractionResult{})
	c.Set("a", &models.ExtractionResult{})
	if c.Len() != 2 {
		t.Fatalf("Len = %d after overwrite, want 2", c.Len())
	}
	c.Set("c", &models.ExtractionResult{})
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCache_EvictBefore(t *testing.T) {
	c := New(10, time.Hour)
	defer c.Close()

	c.Set("old", &models.ExtractionResult{})
	c.mu.Lock()
	c.store["old"].createdAt = time.Now().Add(-2 * time.Hour)
	c.mu.Unlock()
	c.Set("new", &models.ExtractionResult{})

	c.evictBefore(time.Now().Add(-time.Hour))
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestNew_TinyTTL(t *testing.T) {
	c := New(10, time.Nanosecond)
	defer c.Close()

	c.Set("k", &models.ExtractionResult{URL: "https://acme.com"})
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
