package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ReyadGH/use-case-4-deployment/internal/cache"
	rediscache "github.com/ReyadGH/use-case-4-deployment/internal/cache/redis"
	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	"github.com/ReyadGH/use-case-4-deployment/internal/dataset"
	"github.com/ReyadGH/use-case-4-deployment/internal/events"
	"github.com/ReyadGH/use-case-4-deployment/internal/fetch"
	"github.com/ReyadGH/use-case-4-deployment/internal/httpapi"
	"github.com/ReyadGH/use-case-4-deployment/internal/page"
	"github.com/ReyadGH/use-case-4-deployment/internal/scheduler"
	"github.com/ReyadGH/use-case-4-deployment/internal/secrets"
	"github.com/ReyadGH/use-case-4-deployment/internal/store"
	"github.com/ReyadGH/use-case-4-deployment/internal/telemetry"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const version = "1.0.0"

func newCache(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (cache.Cache, error) {
	opts := cache.DefaultOptions()
	opts.DefaultTTL = cfg.Assets.CacheTTL

	var c cache.Cache
	switch cfg.Cache.Backend {
	case "redis":
		opts.RedisURL = cfg.Cache.Redis.Addr
		opts.RedisPassword = cfg.Cache.Redis.Password
		opts.RedisDB = cfg.Cache.Redis.DB
		rc := rediscache.New(opts)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := rc.Ping(ctx); err != nil {
					return fmt.Errorf("redis %s: %w", opts.RedisURL, err)
				}
				return nil
			},
		})
		c = rc
	case "sqlite":
		path := filepath.Join(cfg.App.DataDir, "assets.db")
		db, err := store.Open(context.Background(), path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		c = store.NewAssetCache(db, opts)
	default:
		c = cache.NewMemory(opts)
	}

	log.Info("asset cache ready", zap.String("backend", cfg.Cache.Backend))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return c.Close() },
	})
	return c, nil
}

func newFetcher(cfg config.Config, c cache.Cache, log *zap.Logger) *fetch.Fetcher {
	opts := fetch.DefaultOptions()
	opts.Timeout = cfg.Dataset.FetchTimeout
	opts.MaxBytes = cfg.Dataset.MaxBytes
	opts.CacheTTL = cfg.Assets.CacheTTL
	opts.RequestsPerSecond = cfg.Assets.RequestsPerSecond
	opts.Burst = cfg.Assets.Burst
	if host := fetch.HostOf(cfg.Dataset.URL); host != "" && cfg.Dataset.RequestsPerSecond > 0 {
		opts.HostLimits = map[string]fetch.Limit{
			host: {PerSecond: cfg.Dataset.RequestsPerSecond, Burst: cfg.Dataset.Burst},
		}
	}
	return fetch.New(opts, c, log.Named("fetch"))
}

func newLoader(cfg config.Config, f *fetch.Fetcher, log *zap.Logger) *dataset.Loader {
	return dataset.NewLoader(f, cfg.Dataset.URL, cfg.Dataset.Columns, log.Named("dataset"))
}

func newHub(log *zap.Logger) *events.Hub {
	return events.NewHub(log.Named("events"))
}

func newBuilder(cfg config.Config, l *dataset.Loader, f *fetch.Fetcher, log *zap.Logger) (*page.Builder, error) {
	return page.NewBuilder(l, f, cfg, log.Named("page"))
}

func newDeps(cfg config.Config, log *zap.Logger, hub *events.Hub, l *dataset.Loader, f *fetch.Fetcher, b *page.Builder, c cache.Cache) httpapi.Deps {
	return httpapi.Deps{
		Cfg:          cfg,
		Log:          log.Named("http"),
		Hub:          hub,
		Data:         l,
		Assets:       f,
		Pages:        b,
		Cache:        c,
		AdminToken:   func() (string, error) { return secrets.AdminToken(cfg) },
		ReloadStatus: &atomic.Value{},
	}
}

type serverHandle struct {
	srv *http.Server
}

func newServer(lc fx.Lifecycle, cfg config.Config, d httpapi.Deps, log *zap.Logger) *serverHandle {
	// cancelled on stop so open event streams end and Shutdown can finish
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              cfg.App.Addr,
		Handler:           httpapi.NewHandler(d),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("dashboard listening", zap.String("url", "http://"+ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return srv.Shutdown(ctx)
		},
	})
	return &serverHandle{srv: srv}
}

func startTracing(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) {
	var shutdown func(context.Context)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			shutdown, err = telemetry.InitTracer(ctx, log.Named("telemetry"), cfg.Telemetry.ServiceName, version, cfg.Telemetry.OTLPEndpoint)
			return err
		},
		OnStop: func(ctx context.Context) error {
			if shutdown != nil {
				shutdown(ctx)
			}
			return nil
		},
	})
}

type pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// startRefresh schedules the periodic dataset reload and, for the sqlite
// cache, expiry of stale assets.
func startRefresh(lc fx.Lifecycle, cfg config.Config, d httpapi.Deps, c cache.Cache, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if iv := cfg.Dataset.RefreshInterval; iv > 0 {
				rh := httpapi.NewReloadHandler(d)
				go scheduler.Every(ctx, log.Named("scheduler"), iv, "dataset-refresh", false, rh.Reload)
			}
			if p, ok := c.(pruner); ok {
				go scheduler.Every(ctx, log.Named("scheduler"), time.Hour, "asset-prune", true, func(ctx context.Context) error {
					n, err := p.Prune(ctx)
					if n > 0 {
						log.Info("pruned expired assets", zap.Int64("rows", n))
					}
					return err
				})
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

// warmUp loads the dataset and the configured assets in the background so
// the first visitor does not wait for the downloads.
func warmUp(lc fx.Lifecycle, cfg config.Config, l *dataset.Loader, f *fetch.Fetcher, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if _, err := l.Load(ctx); err != nil {
					log.Warn("dataset warm-up failed, will retry on first request", zap.Error(err))
				}
				for _, u := range []string{cfg.Assets.GeoJSONURL, cfg.Assets.FontURL} {
					if u == "" {
						continue
					}
					if _, err := f.Cached(ctx, u); err != nil {
						log.Warn("asset warm-up failed", zap.String("url", u), zap.Error(err))
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
