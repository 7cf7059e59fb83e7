package httpapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/ReyadGH/use-case-4-deployment/internal/page"

	"go.uber.org/zap"
)

// PageHandler serves the dashboard. Every request reruns the whole
// pipeline; any failure, panics included, renders the error page.
type PageHandler struct {
	Pages Pages
	Log   *zap.Logger
}

func (h PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, r, http.StatusNotFound, "not_found", "no such page")
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.fail(w, r, fmt.Errorf("panic: %v", rec))
		}
	}()

	v, err := h.Pages.Build(r.Context(), page.Request{Regions: regionsFrom(r)})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.Pages.Render(&buf, v); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h PageHandler) fail(w http.ResponseWriter, r *http.Request, cause error) {
	h.Log.Error("page render failed",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Strings("regions", regionsFrom(r)),
		zap.Error(cause),
	)

	var buf bytes.Buffer
	if err := h.Pages.RenderError(&buf, cause); err != nil {
		h.Log.Error("error page render failed", zap.Error(err))
		http.Error(w, page.ErrorMessage, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = buf.WriteTo(w)
}
