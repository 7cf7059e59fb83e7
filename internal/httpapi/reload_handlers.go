package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ReyadGH/use-case-4-deployment/internal/cache"
	"github.com/ReyadGH/use-case-4-deployment/internal/events"

	"go.uber.org/zap"
)

const adminTokenHeader = "X-Admin-Token"

// requireAdmin checks the admin token header in constant time. It writes
// the error response and returns false when the request may not proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request, token func() (string, error)) bool {
	if token == nil {
		WriteError(w, r, http.StatusForbidden, "forbidden", "admin endpoints are disabled")
		return false
	}
	want, err := token()
	if err != nil || want == "" {
		WriteError(w, r, http.StatusForbidden, "forbidden", "admin token not configured")
		return false
	}
	got := r.Header.Get(adminTokenHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "invalid admin token")
		return false
	}
	return true
}

// ReloadHandler refetches the dataset in the background and announces the
// outcome on the hub.
type ReloadHandler struct {
	Data         DataSource
	Assets       AssetSource
	Pages        Pages
	AssetURLs    []string
	ReloadStatus *atomic.Value // httpapi.ReloadStatus
	Hub          *events.Hub
	AdminToken   func() (string, error)
	Log          *zap.Logger
}

func (h ReloadHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.ReloadStatus.Load().(ReloadStatus)
	writeJSON(w, st)
}

func (h ReloadHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.AdminToken) {
		return
	}

	if !h.begin() {
		WriteJSON(w, http.StatusConflict, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	reqID := RequestIDFrom(r.Context())
	ctx := context.WithoutCancel(r.Context())
	go h.reload(ctx, reqID)

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

// begin marks a reload as running. It reports false when one already is.
func (h ReloadHandler) begin() bool {
	st := h.ReloadStatus.Load().(ReloadStatus)
	if st.Running {
		return false
	}
	next := ReloadStatus{
		LastRunAt: time.Now().Format(time.RFC3339),
		Running:   true,
		LastOkAt:  st.LastOkAt,
	}
	return h.ReloadStatus.CompareAndSwap(st, next)
}

// Reload runs a reload synchronously. The scheduler uses it for periodic
// refreshes; a tick that lands while another reload runs is skipped.
func (h ReloadHandler) Reload(ctx context.Context) error {
	if !h.begin() {
		h.Log.Info("dataset refresh skipped, reload already running")
		return nil
	}
	return h.reload(ctx, "")
}

func (h ReloadHandler) reload(ctx context.Context, reqID string) error {
	for _, u := range h.AssetURLs {
		if u == "" {
			continue
		}
		if err := h.Assets.Forget(ctx, u); err != nil {
			h.Log.Warn("asset cache forget failed", zap.String("url", u), zap.Error(err))
		}
	}
	if h.Pages != nil {
		h.Pages.Reset()
	}

	t, err := h.Data.Reload(ctx)

	now := time.Now().Format(time.RFC3339)
	next := h.ReloadStatus.Load().(ReloadStatus)
	next.Running = false
	next.LastRunAt = now
	if err != nil {
		next.LastError = err.Error()
		next.LastRows = 0
		h.ReloadStatus.Store(next)
		h.Log.Error("dataset reload failed", zap.String("request_id", reqID), zap.Error(err))
		h.Hub.Emit(reqID, events.TypeDatasetReloadFailed, events.ReloadFailed{Error: err.Error()})
		return err
	}
	next.LastError = ""
	next.LastOkAt = now
	next.LastRows = t.Len()
	h.ReloadStatus.Store(next)
	h.Log.Info("dataset reloaded", zap.String("request_id", reqID), zap.Int("rows", t.Len()))
	h.Hub.Emit(reqID, events.TypeDatasetReloaded, events.Reloaded{Rows: t.Len(), LoadedAt: t.LoadedAt})
	return nil
}

// CacheHandler empties the asset cache.
type CacheHandler struct {
	Cache      cache.Cache
	AdminToken func() (string, error)
	Log        *zap.Logger
}

func (h CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.AdminToken) {
		return
	}
	if h.Cache == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.Cache.Clear(r.Context()); err != nil {
		h.Log.Error("asset cache clear failed", zap.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "cache_error", "clear failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
