package httpapi

import (
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
)

// AssetsHandler serves the cached font and boundary files so the browser
// does not hit their origins.
type AssetsHandler struct {
	Assets  AssetSource
	FontURL string
	GeoURL  string
	MaxAge  time.Duration
}

func (h AssetsHandler) Font(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.FontURL, "font/ttf")
}

func (h AssetsHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.GeoURL, "application/geo+json")
}

func (h AssetsHandler) serve(w http.ResponseWriter, r *http.Request, url, fallbackType string) {
	if url == "" {
		WriteError(w, r, http.StatusNotFound, "not_found", "asset not configured")
		return
	}
	e, err := h.Assets.Cached(r.Context(), url)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	ct := e.ContentType
	if ct == "" || ct == "application/octet-stream" || ct == "text/plain; charset=utf-8" {
		ct = fallbackType
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(e.Data)))
	if h.MaxAge > 0 {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(h.MaxAge.Seconds())))
	}
	w.Header().Set("Content-Disposition", `inline; filename="`+strings.ReplaceAll(path.Base(url), `"`, "")+`"`)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(e.Data)
	}
}
