package cache

import (
	"context"
	"sync"
	"time"
)

type memItem struct {
	raw     []byte
	expires time.Time
}

// Memory is an in-process Cache. Expired keys are dropped lazily on Get and
// by a background sweep every CleanupInterval.
type Memory struct {
	mu     sync.RWMutex
	items  map[string]memItem
	opts   Options
	now    func() time.Time
	stop   chan struct{}
	closed bool
}

func NewMemory(opts Options) *Memory {
	m := &Memory{
		items: make(map[string]memItem),
		opts:  opts,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go m.sweep(opts.CleanupInterval)
	}
	return m
}

func (m *Memory) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			now := m.now()
			m.mu.Lock()
			for k, it := range m.items {
				if !it.expires.IsZero() && now.After(it.expires) {
					delete(m.items, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *Memory) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	raw, err := Encode(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = m.opts.DefaultTTL
	}
	it := memItem{raw: append([]byte(nil), raw...)}
	if ttl > 0 {
		it.expires = m.now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.items[key] = it
	return nil
}

func (m *Memory) Get(ctx context.Context, key string, value interface{}) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	it, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if !it.expires.IsZero() && m.now().After(it.expires) {
		_ = m.Delete(ctx, key)
		return ErrNotFound
	}
	return Decode(it.raw, value)
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.items = make(map[string]memItem)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.stop)
	return nil
}
