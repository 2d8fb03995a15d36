package cache

import (
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := NewTTLCache[int](time.Second)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("get = %v, %v", v, ok)
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry returned")
	}
	if c.Len() != 0 {
		t.Fatalf("len = %d after expiry", c.Len())
	}
}

func TestTTLCacheNoExpiry(t *testing.T) {
	c := NewTTLCache[string](0)
	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("get = %q, %v", v, ok)
	}
}
