package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ReyadGH/use-case-4-deployment/internal/cache"
	domainerrors "github.com/ReyadGH/use-case-4-deployment/internal/errors"
	"github.com/ReyadGH/use-case-4-deployment/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type Options struct {
	Timeout           time.Duration
	MaxBytes          int64
	CacheTTL          time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string

	// HostLimits overrides RequestsPerSecond/Burst for specific hosts.
	HostLimits map[string]Limit

	// WrapBody, when set, wraps every response body (progress reporting).
	WrapBody func(contentLength int64, body io.Reader) io.Reader
}

func DefaultOptions() Options {
	return Options{
		Timeout:           30 * time.Second,
		MaxBytes:          64 << 20,
		CacheTTL:          24 * time.Hour,
		RequestsPerSecond: 2,
		Burst:             2,
		UserAgent:         "jobmarket-dashboard/1.0",
	}
}

// Fetcher performs rate limited, size capped GETs and can keep the results
// in a cache.Cache keyed by URL.
type Fetcher struct {
	client  *http.Client
	limits  *hostLimits
	cache   cache.Cache
	opts    Options
	log     *zap.Logger
}

// New returns a Fetcher. c may be nil, in which case Cached behaves like Get.
func New(opts Options, c cache.Cache, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultOptions().RequestsPerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultOptions().Burst
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultOptions().MaxBytes
	}
	return &Fetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		limits:  newHostLimits(Limit{PerSecond: opts.RequestsPerSecond, Burst: opts.Burst}, opts.HostLimits),
		cache:   c,
		opts:    opts,
		log:     log,
	}
}

// Get downloads raw without consulting the cache.
func (f *Fetcher) Get(ctx context.Context, raw string) (cache.Entry, error) {
	ctx, span := otel.Tracer("dashboard/fetch").Start(ctx, "fetch.Get")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", raw))

	e, err := f.get(ctx, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return e, err
	}
	span.SetAttributes(attribute.Int("http.response_size", len(e.Data)))
	return e, nil
}

func (f *Fetcher) get(ctx context.Context, raw string) (cache.Entry, error) {
	start := time.Now()
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return cache.Entry{}, domainerrors.InvalidInput("fetch "+raw+": not an http(s) URL", err)
	}
	if err := f.limits.wait(ctx, u); err != nil {
		return cache.Entry{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return cache.Entry{}, domainerrors.InvalidInput("build request for "+raw, err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return cache.Entry{}, domainerrors.Unavailable("fetch "+raw, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		f.log.Warn("upstream returned non-2xx",
			zap.String("url", raw),
			zap.Int("status", resp.StatusCode),
			zap.String("body", strings.TrimSpace(string(b))),
		)
		return cache.Entry{}, domainerrors.Unavailable(fmt.Sprintf("fetch %s", raw), fmt.Errorf("upstream status: %s", resp.Status))
	}

	var body io.Reader = resp.Body
	if f.opts.WrapBody != nil {
		body = f.opts.WrapBody(resp.ContentLength, body)
	}

	limit := f.opts.MaxBytes
	b, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return cache.Entry{}, domainerrors.Unavailable("read body of "+raw, err)
	}
	if int64(len(b)) > limit {
		return cache.Entry{}, domainerrors.InvalidInput(fmt.Sprintf("%s exceeds %d bytes", raw, limit), nil)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(b)
	}

	f.log.Debug("fetched",
		zap.String("url", raw),
		zap.Int("bytes", len(b)),
		zap.Duration("took", time.Since(start)),
	)
	return cache.Entry{URL: raw, ContentType: ct, Data: b, FetchedAt: time.Now().UTC()}, nil
}

// Cached returns the cached copy of raw when present, otherwise fetches and
// stores it. Cache failures are logged and never fail the fetch.
func (f *Fetcher) Cached(ctx context.Context, raw string) (cache.Entry, error) {
	if f.cache == nil {
		return f.Get(ctx, raw)
	}
	key := store.KeyFromURL(raw)

	var e cache.Entry
	err := f.cache.Get(ctx, key, &e)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		f.log.Warn("asset cache read failed", zap.String("url", raw), zap.Error(err))
	}

	e, err = f.Get(ctx, raw)
	if err != nil {
		return e, err
	}
	if err := f.cache.Set(ctx, key, e, f.opts.CacheTTL); err != nil {
		f.log.Warn("asset cache write failed", zap.String("url", raw), zap.Error(err))
	}
	return e, nil
}

// Forget drops raw from the cache.
func (f *Fetcher) Forget(ctx context.Context, raw string) error {
	if f.cache == nil {
		return nil
	}
	return f.cache.Delete(ctx, store.KeyFromURL(raw))
}
