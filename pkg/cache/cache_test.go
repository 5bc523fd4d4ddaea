package cache

import (
	"errors"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestSetAndGet(t *testing.T) {
	c := New[string]()
	c.Set("key1", "value1", time.Second)
	val, ok := c.Get("key1")
	if !ok || val != "value1" {
		t.Fatalf("expected value1, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	clk := &clock{t: time.Unix(0, 0)}
	c := New[int](WithClock(clk.now))
	c.Set("key1", 1, 100*time.Millisecond)

	clk.t = clk.t.Add(100 * time.Millisecond)
	if _, ok := c.Get("key1"); ok {
		t.Fatalf("expected expired key to return false")
	}
	if n := c.Len(); n != 0 {
		t.Fatalf("expected expired entry to be dropped, got %d", n)
	}
}

func TestGetOrLoad(t *testing.T) {
	c := New[[]byte]()
	loads := 0
	load := func() ([]byte, error) {
		loads++
		return []byte("report"), nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("report:csv", time.Minute, load)
		if err != nil || string(v) != "report" {
			t.Fatalf("unexpected result %q, %v", v, err)
		}
	}
	if loads != 1 {
		t.Fatalf("expected one load, got %d", loads)
	}
}

func TestGetOrLoadErrorIsNotCached(t *testing.T) {
	c := New[string]()
	boom := errors.New("boom")

	if _, err := c.GetOrLoad("k", time.Minute, func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Fatalf("failed load must not be cached")
	}
}

func TestDeleteAndInvalidate(t *testing.T) {
	c := New[string]()
	c.Set("report:csv", "a", time.Minute)
	c.Set("report:pdf", "b", time.Minute)
	c.Set("other", "c", time.Minute)

	c.Delete("other")
	if _, ok := c.Get("other"); ok {
		t.Fatalf("expected deleted key to be gone")
	}

	c.Invalidate("report:")
	if n := c.Len(); n != 0 {
		t.Fatalf("expected empty cache, got %d", n)
	}
}
