package httpapi

import (
	"net/http"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"
)

// NewMux registers every route on a fresh mux.
func NewMux(d Deps) *http.ServeMux {
	d = d.withDefaults()
	mux := http.NewServeMux()

	// Dashboard
	ph := PageHandler{Pages: d.Pages, Log: d.Log}
	mux.HandleFunc("/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Index,
	}))

	hh := HealthHandler{Data: d.Data, Hub: d.Hub}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// JSON API
	sh := SummaryHandler{Data: d.Data, Cfg: d.Cfg, Tagger: analysis.NewSkillTagger(d.Cfg.Skills)}
	mux.HandleFunc("/api/summary", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Summary,
	}))
	mux.HandleFunc("/api/regions", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Regions,
	}))

	ch := ConfigHandler{Cfg: d.Cfg}
	mux.HandleFunc("/api/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/api/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Assets
	ah := AssetsHandler{
		Assets:  d.Assets,
		FontURL: d.Cfg.Assets.FontURL,
		GeoURL:  d.Cfg.Assets.GeoJSONURL,
		MaxAge:  d.Cfg.Assets.CacheTTL,
	}
	mux.HandleFunc("/assets/font", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Font,
	}))
	mux.HandleFunc("/assets/geojson", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.GeoJSON,
	}))

	// Admin
	rh := NewReloadHandler(d)
	mux.HandleFunc("/api/reload", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Run,
	}))
	mux.HandleFunc("/api/reload/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Status,
	}))
	cc := CacheHandler{Cache: d.Cache, AdminToken: d.AdminToken, Log: d.Log}
	mux.HandleFunc("/api/cache/clear", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: cc.Clear,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}

// NewReloadHandler builds the reload handler shared by the admin route and
// the refresh scheduler.
func NewReloadHandler(d Deps) ReloadHandler {
	d = d.withDefaults()
	return ReloadHandler{
		Data:         d.Data,
		Assets:       d.Assets,
		Pages:        d.Pages,
		AssetURLs:    []string{d.Cfg.Assets.GeoJSONURL, d.Cfg.Assets.FontURL},
		ReloadStatus: d.ReloadStatus,
		Hub:          d.Hub,
		AdminToken:   d.AdminToken,
		Log:          d.Log,
	}
}

// NewHandler wraps the mux in the standard middleware stack.
func NewHandler(d Deps) http.Handler {
	d = d.withDefaults()
	return Chain(NewMux(d),
		RequestID,
		AccessLog(d.Log),
		Trace,
		Recover(d.Log),
	)
}
