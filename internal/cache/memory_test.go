package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemorySetGetEntry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Options{DefaultTTL: time.Hour})
	defer m.Close()

	in := Entry{URL: "https://example.com/font.ttf", ContentType: "font/ttf", Data: []byte{0, 1, 2}, FetchedAt: time.Unix(10, 0).UTC()}
	if err := m.Set(ctx, "font", in, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out Entry
	if err := m.Get(ctx, "font", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.ContentType != in.ContentType || string(out.Data) != string(in.Data) || !out.FetchedAt.Equal(in.FetchedAt) {
		t.Fatalf("got %+v want %+v", out, in)
	}

	var s string
	if err := m.Set(ctx, "s", "hello", 0); err != nil {
		t.Fatalf("Set string: %v", err)
	}
	if err := m.Get(ctx, "s", &s); err != nil || s != "hello" {
		t.Fatalf("Get string: %q %v", s, err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Unix(1000, 0)}
	m := NewMemory(Options{DefaultTTL: time.Minute})
	m.now = clk.Now
	defer m.Close()

	if err := m.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(ctx, "forever", []byte("v"), -1); err != nil {
		t.Fatal(err)
	}

	clk.Advance(2 * time.Minute)

	var b []byte
	if err := m.Get(ctx, "k", &b); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after ttl, got %v", err)
	}
	if err := m.Get(ctx, "forever", &b); err != nil {
		t.Fatalf("negative ttl should never expire: %v", err)
	}
}

func TestMemoryErrors(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(DefaultOptions())

	if err := m.Set(ctx, "", "v", 0); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if err := m.Set(ctx, "k", 42, 0); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	var n int
	_ = m.Set(ctx, "k", "v", 0)
	if err := m.Get(ctx, "k", &n); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for *int target, got %v", err)
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	var s string
	if err := m.Get(ctx, "k", &s); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cleared key to be gone, got %v", err)
	}

	_ = m.Close()
	if err := m.Set(ctx, "k", "v", 0); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("double close: %v", err)
	}
}
