package cache_test

import (
	"testing"
	"time"

	"github.com/0xnicolas/safe-yield-bot/internal/cache"
)

func TestCache_GetSet(t *testing.T) {
	c := cache.New[string, int](time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("expected (1, true), got (%d, %v)", v, ok)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := cache.New[string, int](time.Minute)

	c.SetWithTTL("a", 1, -time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string, int](time.Minute)

	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after delete")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}
