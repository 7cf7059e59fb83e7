package httpapi

import (
	"net/http"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"
	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	"github.com/ReyadGH/use-case-4-deployment/internal/events"
)

type HealthHandler struct {
	Data DataSource
	Hub  *events.Hub
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{OK: true, Status: h.Data.Status()}
	if h.Hub != nil {
		resp.Subscribers = h.Hub.Subscribers()
	}
	writeJSON(w, resp)
}

// SummaryHandler exposes the page aggregates as JSON.
type SummaryHandler struct {
	Data   DataSource
	Cfg    config.Config
	Tagger analysis.SkillTagger
}

type summaryResponse struct {
	Regions []string `json:"regions"`
	analysis.Report
}

func (h SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	t, err := h.Data.Load(r.Context())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	regions := regionsFrom(r)
	rows := analysis.FilterRegions(t, regions).Rows
	if regions == nil {
		regions = []string{}
	}
	writeJSON(w, summaryResponse{
		Regions: regions,
		Report: analysis.NewReport(rows, analysis.ReportOptions{
			TopN:   h.Cfg.Page.TopN,
			Words:  h.Cfg.Page.WordCloudWords,
			Tagger: h.Tagger,
		}),
	})
}

func (h SummaryHandler) Regions(w http.ResponseWriter, r *http.Request) {
	t, err := h.Data.Load(r.Context())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"regions": analysis.Regions(t)})
}

// ConfigHandler shows the running configuration. Secrets are excluded by
// their json tags.
type ConfigHandler struct {
	Cfg config.Config
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Cfg)
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.Cfg)
	writeJSON(w, vr)
}
