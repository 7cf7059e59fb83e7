package dataset

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/ReyadGH/use-case-4-deployment/internal/cache"
	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	"github.com/ReyadGH/use-case-4-deployment/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Source downloads a URL. *fetch.Fetcher satisfies it.
type Source interface {
	Get(ctx context.Context, url string) (cache.Entry, error)
}

// Status describes the memoized dataset.
type Status struct {
	Loaded    bool      `json:"loaded"`
	Rows      int       `json:"rows"`
	Source    string    `json:"source"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Loader memoizes the dataset for the lifetime of the process. Concurrent
// first loads share one download; failed loads are not remembered, so the
// next call tries again.
type Loader struct {
	src  Source
	url  string
	cols config.Columns
	log  *zap.Logger

	group singleflight.Group

	mu      sync.RWMutex
	table   *domain.Table
	lastErr error
}

func NewLoader(src Source, url string, cols config.Columns, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{src: src, url: url, cols: cols, log: log}
}

// Load returns the memoized table, downloading it on first use.
func (l *Loader) Load(ctx context.Context) (*domain.Table, error) {
	l.mu.RLock()
	t := l.table
	l.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	v, err, _ := l.group.Do("load", func() (interface{}, error) {
		l.mu.RLock()
		t := l.table
		l.mu.RUnlock()
		if t != nil {
			return t, nil
		}
		return l.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Table), nil
}

// Reload downloads a fresh copy. On failure the previous table stays in place.
func (l *Loader) Reload(ctx context.Context) (*domain.Table, error) {
	v, err, _ := l.group.Do("reload", func() (interface{}, error) {
		return l.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Table), nil
}

// Invalidate forgets the memoized table.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.table = nil
	l.mu.Unlock()
}

func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st := Status{Source: l.url}
	if l.table != nil {
		st.Loaded = true
		st.Rows = l.table.Len()
		st.LoadedAt = l.table.LoadedAt
	}
	if l.lastErr != nil {
		st.LastError = l.lastErr.Error()
	}
	return st
}

func (l *Loader) fetch(ctx context.Context) (*domain.Table, error) {
	// shared by every waiter of the flight, so it must not die with one request
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	e, err := l.src.Get(ctx, l.url)
	if err == nil {
		var t *domain.Table
		t, err = Parse(bytes.NewReader(e.Data), l.cols)
		if err == nil {
			t.Source = l.url
			t.LoadedAt = e.FetchedAt
			if t.LoadedAt.IsZero() {
				t.LoadedAt = time.Now().UTC()
			}

			l.mu.Lock()
			l.table = t
			l.lastErr = nil
			l.mu.Unlock()

			l.log.Info("dataset loaded",
				zap.String("url", l.url),
				zap.Int("rows", t.Len()),
				zap.Int("bytes", len(e.Data)),
				zap.Duration("took", time.Since(start)),
			)
			return t, nil
		}
	}

	l.mu.Lock()
	l.lastErr = err
	l.mu.Unlock()
	l.log.Error("dataset load failed", zap.String("url", l.url), zap.Error(err))
	return nil, err
}
