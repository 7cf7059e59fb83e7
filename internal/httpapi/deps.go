package httpapi

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/ReyadGH/use-case-4-deployment/internal/cache"
	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	"github.com/ReyadGH/use-case-4-deployment/internal/dataset"
	"github.com/ReyadGH/use-case-4-deployment/internal/domain"
	"github.com/ReyadGH/use-case-4-deployment/internal/events"
	"github.com/ReyadGH/use-case-4-deployment/internal/page"

	"go.uber.org/zap"
)

// DataSource is the memoized dataset. *dataset.Loader satisfies it.
type DataSource interface {
	Load(ctx context.Context) (*domain.Table, error)
	Reload(ctx context.Context) (*domain.Table, error)
	Status() dataset.Status
}

// AssetSource serves cached assets. *fetch.Fetcher satisfies it.
type AssetSource interface {
	Cached(ctx context.Context, url string) (cache.Entry, error)
	Forget(ctx context.Context, url string) error
}

// Pages builds and renders the dashboard. *page.Builder satisfies it.
type Pages interface {
	Build(ctx context.Context, req page.Request) (*page.View, error)
	Render(w io.Writer, v *page.View) error
	RenderError(w io.Writer, cause error) error
	Reset()
}

type Deps struct {
	Cfg config.Config
	Log *zap.Logger

	Hub    *events.Hub
	Data   DataSource
	Assets AssetSource
	Pages  Pages
	// Cache is the asset cache behind Assets; may be nil.
	Cache cache.Cache

	// AdminToken resolves the token guarding admin endpoints.
	AdminToken func() (string, error)

	ReloadStatus *atomic.Value // stores httpapi.ReloadStatus
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Hub == nil {
		d.Hub = events.NewHub(d.Log)
	}
	if d.ReloadStatus == nil {
		d.ReloadStatus = &atomic.Value{}
	}
	if d.ReloadStatus.Load() == nil {
		d.ReloadStatus.Store(ReloadStatus{})
	}
	return d
}
