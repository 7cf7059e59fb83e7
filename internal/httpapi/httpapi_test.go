package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ReyadGH/use-case-4-deployment/internal/cache"
	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	"github.com/ReyadGH/use-case-4-deployment/internal/dataset"
	"github.com/ReyadGH/use-case-4-deployment/internal/domain"
	domainerrors "github.com/ReyadGH/use-case-4-deployment/internal/errors"
	"github.com/ReyadGH/use-case-4-deployment/internal/events"
	"github.com/ReyadGH/use-case-4-deployment/internal/page"

	"github.com/PuerkitoBio/goquery"
)

type fakeData struct {
	mu      sync.Mutex
	table   *domain.Table
	err     error
	reloads int
}

func (f *fakeData) Load(ctx context.Context) (*domain.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

func (f *fakeData) Reload(ctx context.Context) (*domain.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

func (f *fakeData) Status() dataset.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return dataset.Status{Loaded: f.table != nil, Rows: f.table.Len(), Source: "mem://clean.csv"}
}

type fakeAssets struct {
	mu      sync.Mutex
	files   map[string][]byte
	forgets []string
}

func (f *fakeAssets) Cached(ctx context.Context, url string) (cache.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.files[url]
	if !ok {
		return cache.Entry{}, domainerrors.Unavailable("fetch "+url, errors.New("connection refused"))
	}
	return cache.Entry{URL: url, Data: b, ContentType: "application/octet-stream"}, nil
}

func (f *fakeAssets) Forget(ctx context.Context, url string) error {
	f.mu.Lock()
	f.forgets = append(f.forgets, url)
	f.mu.Unlock()
	return nil
}

// panicPages blows up while building to exercise the catch-all.
type panicPages struct{ *page.Builder }

func (p panicPages) Build(ctx context.Context, req page.Request) (*page.View, error) {
	panic("chart exploded")
}

const geoURL = "https://example.test/regions.geojson"

func testTable() *domain.Table {
	return &domain.Table{
		LoadedAt: time.Now(),
		Rows: []domain.Listing{
			{Title: "Accountant", Description: "محاسب Excel", Salary: 6000, Region: "Riyadh", City: "Riyadh", Experience: 2, Gender: "M"},
			{Title: "Accountant", Description: "accounting", Salary: 8000, Region: "Riyadh", City: "Riyadh", Experience: 5, Gender: "F"},
			{Title: "Sales Rep", Description: "sales", Salary: 4000, Region: "Makkah", City: "Jeddah", Experience: math.NaN(), Gender: "M"},
		},
	}
}

type testEnv struct {
	deps   Deps
	data   *fakeData
	assets *fakeAssets
	h      http.Handler
}

func newEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.FontURL = ""
	cfg.Assets.GeoJSONURL = geoURL
	cfg.Admin.Token = "s3cret"
	if mutate != nil {
		mutate(&cfg)
	}

	data := &fakeData{table: testTable()}
	assets := &fakeAssets{files: map[string][]byte{geoURL: []byte(`{"type":"FeatureCollection","features":[]}`)}}
	b, err := page.NewBuilder(data, assets, cfg, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	d := Deps{
		Cfg:          cfg,
		Hub:          events.NewHub(nil),
		Data:         data,
		Assets:       assets,
		Pages:        b,
		Cache:        cache.NewMemory(cache.DefaultOptions()),
		AdminToken:   func() (string, error) { return cfg.Admin.Token, nil },
		ReloadStatus: &atomic.Value{},
	}
	t.Cleanup(func() { _ = d.Cache.Close() })
	return &testEnv{deps: d, data: data, assets: assets, h: NewHandler(d)}
}

func (e *testEnv) do(method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersDashboard(t *testing.T) {
	env := newEnv(t, nil)
	rec := env.do(http.MethodGet, "/?region=Riyadh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content-type=%q", ct)
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find("h1").First().Text() != env.deps.Cfg.Page.Title {
		t.Fatalf("title=%q", doc.Find("h1").First().Text())
	}
	if _, ok := doc.Find(`#region option[value="Riyadh"]`).Attr("selected"); !ok {
		t.Fatalf("selected region should be preselected")
	}
	if strings.Contains(doc.Find("#top-titles").Text(), "Sales Rep") {
		t.Fatalf("filter not applied to charts")
	}
}

func TestIndexErrorPage(t *testing.T) {
	cases := []struct {
		name       string
		showDetail bool
		broken     func(*testEnv)
		wantDetail string
	}{
		{
			name:       "dataset failure",
			showDetail: true,
			broken: func(e *testEnv) {
				e.data.err = domainerrors.InvalidInput("missing columns [salary]", nil)
			},
			wantDetail: "missing columns [salary]",
		},
		{
			name:       "boundary failure without detail",
			showDetail: false,
			broken: func(e *testEnv) {
				delete(e.assets.files, geoURL)
			},
		},
		{
			name:       "panic",
			showDetail: true,
			broken: func(e *testEnv) {
				e.deps.Pages = panicPages{e.deps.Pages.(*page.Builder)}
				e.h = NewHandler(e.deps)
			},
			wantDetail: "chart exploded",
		},
	}

	for _, tc := range cases {
		env := newEnv(t, func(c *config.Config) { c.Page.ShowErrorDetail = tc.showDetail })
		tc.broken(env)

		rec := env.do(http.MethodGet, "/", nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s: status=%d", tc.name, rec.Code)
		}
		doc, err := goquery.NewDocumentFromReader(rec.Body)
		if err != nil {
			t.Fatal(err)
		}
		if doc.Find("h1").Text() != page.ErrorTitle {
			t.Fatalf("%s: title=%q", tc.name, doc.Find("h1").Text())
		}
		if doc.Find("p").First().Text() != page.ErrorMessage {
			t.Fatalf("%s: message=%q", tc.name, doc.Find("p").First().Text())
		}
		detail := doc.Find(".error-detail").Text()
		if tc.wantDetail != "" && !strings.Contains(detail, tc.wantDetail) {
			t.Fatalf("%s: detail=%q", tc.name, detail)
		}
		if !tc.showDetail && detail != "" {
			t.Fatalf("%s: detail should be hidden, got %q", tc.name, detail)
		}
		if doc.Find("figure").Length() != 0 {
			t.Fatalf("%s: no partial page may be rendered", tc.name)
		}
	}
}

func TestUnknownPathAndMethod(t *testing.T) {
	env := newEnv(t, nil)
	if rec := env.do(http.MethodGet, "/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d", rec.Code)
	}
	if rec := env.do(http.MethodDelete, "/health", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method status=%d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newEnv(t, nil)
	rec := env.do(http.MethodGet, "/health", map[string]string{"X-Request-ID": "abc-123"})
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("request id not echoed: %q", got)
	}
	rec = env.do(http.MethodGet, "/health", nil)
	if len(rec.Header().Get("X-Request-ID")) != 36 {
		t.Fatalf("expected a generated uuid, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestHealthAndSummary(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.do(http.MethodGet, "/health", nil)
	var health map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("health json: %v", err)
	}
	if health["ok"] != true || health["loaded"] != true || health["rows"] != float64(3) {
		t.Fatalf("health=%v", health)
	}

	rec = env.do(http.MethodGet, "/api/summary?region=riyadh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status=%d body=%s", rec.Code, rec.Body.String())
	}
	var sum struct {
		Regions []string `json:"regions"`
		Summary struct {
			Listings   int     `json:"listings"`
			MeanSalary float64 `json:"mean_salary"`
		} `json:"summary"`
		TopTitles []struct {
			Value   string  `json:"value"`
			Percent float64 `json:"percent"`
		} `json:"top_titles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("summary json: %v", err)
	}
	if sum.Summary.Listings != 2 || sum.Summary.MeanSalary != 7000 {
		t.Fatalf("summary=%+v", sum.Summary)
	}
	if len(sum.TopTitles) != 1 || sum.TopTitles[0].Percent != 100 {
		t.Fatalf("top titles=%+v", sum.TopTitles)
	}

	rec = env.do(http.MethodGet, "/api/regions", nil)
	if !strings.Contains(rec.Body.String(), `"regions":["Makkah","Riyadh"]`) {
		t.Fatalf("regions=%s", rec.Body.String())
	}

	env.data.err = domainerrors.Unavailable("fetch dataset", errors.New("timeout"))
	rec = env.do(http.MethodGet, "/api/summary", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("upstream failure status=%d", rec.Code)
	}
	var apiErr APIError
	_ = json.Unmarshal(rec.Body.Bytes(), &apiErr)
	if apiErr.Error.Code != "unavailable" || apiErr.Error.RequestID == "" {
		t.Fatalf("error envelope=%+v", apiErr)
	}
}

func TestConfigHidesSecrets(t *testing.T) {
	env := newEnv(t, func(c *config.Config) { c.Cache.Redis.Password = "hunter2" })
	rec := env.do(http.MethodGet, "/api/config", nil)
	body := rec.Body.String()
	if strings.Contains(body, "s3cret") || strings.Contains(body, "hunter2") {
		t.Fatalf("secrets leaked: %s", body)
	}
	if !strings.Contains(body, `"top_n":10`) {
		t.Fatalf("config body=%s", body)
	}
	rec = env.do(http.MethodGet, "/api/config/validate", nil)
	if !strings.Contains(rec.Body.String(), "errors") {
		t.Fatalf("validate body=%s", rec.Body.String())
	}
}

func TestAssets(t *testing.T) {
	env := newEnv(t, nil)
	if rec := env.do(http.MethodGet, "/assets/font", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unconfigured font status=%d", rec.Code)
	}
	rec := env.do(http.MethodGet, "/assets/geojson", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("geojson status=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Fatalf("content-type=%q", ct)
	}
	if !strings.Contains(rec.Body.String(), "FeatureCollection") {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestReloadRequiresToken(t *testing.T) {
	env := newEnv(t, nil)
	if rec := env.do(http.MethodPost, "/api/reload", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status=%d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/api/reload", map[string]string{adminTokenHeader: "nope"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token status=%d", rec.Code)
	}

	disabled := newEnv(t, func(c *config.Config) { c.Admin.Token = "" })
	if rec := disabled.do(http.MethodPost, "/api/reload", map[string]string{adminTokenHeader: ""}); rec.Code != http.StatusForbidden {
		t.Fatalf("unconfigured token status=%d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/api/cache/clear", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("cache clear without token status=%d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/api/cache/clear", map[string]string{adminTokenHeader: "s3cret"}); rec.Code != http.StatusNoContent {
		t.Fatalf("cache clear status=%d", rec.Code)
	}
}

func waitIdle(t *testing.T, env *testEnv) ReloadStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec := env.do(http.MethodGet, "/api/reload/status", nil)
		var st ReloadStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
			t.Fatalf("status json: %v", err)
		}
		if !st.Running && st.LastRunAt != "" {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("reload did not finish")
	return ReloadStatus{}
}

func TestReloadPublishesOutcome(t *testing.T) {
	env := newEnv(t, nil)
	sub := env.deps.Hub.Subscribe()
	defer env.deps.Hub.Unsubscribe(sub)

	rec := env.do(http.MethodPost, "/api/reload", map[string]string{adminTokenHeader: "s3cret"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	st := waitIdle(t, env)
	if st.LastError != "" || st.LastRows != 3 || st.LastOkAt == "" {
		t.Fatalf("status=%+v", st)
	}

	select {
	case msg := <-sub:
		var e events.Event
		_ = json.Unmarshal([]byte(msg), &e)
		if e.Type != events.TypeDatasetReloaded {
			t.Fatalf("event=%s", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("no reload event")
	}

	env.assets.mu.Lock()
	forgot := strings.Join(env.assets.forgets, ",")
	env.assets.mu.Unlock()
	if !strings.Contains(forgot, geoURL) {
		t.Fatalf("asset cache not dropped: %q", forgot)
	}

	env.data.mu.Lock()
	env.data.err = errors.New("upstream 500")
	env.data.mu.Unlock()
	env.do(http.MethodPost, "/api/reload", map[string]string{adminTokenHeader: "s3cret"})
	st = waitIdle(t, env)
	if st.LastError == "" {
		t.Fatalf("failed reload should be reported: %+v", st)
	}
	select {
	case msg := <-sub:
		if !strings.Contains(msg, events.TypeDatasetReloadFailed) {
			t.Fatalf("event=%s", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("no failure event")
	}
}

func TestEventsStream(t *testing.T) {
	env := newEnv(t, nil)
	srv := httptest.NewServer(env.h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type=%q", ct)
	}

	br := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					t.Fatalf("stream closed")
				}
				t.Fatalf("read: %v", err)
			}
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}

	if first := readData(); !strings.Contains(first, `"type":"ping"`) {
		t.Fatalf("first frame=%s", first)
	}

	// the subscription is registered before the ping is flushed
	env.deps.Hub.Emit("", events.TypeDatasetReloaded, nil)
	if got := readData(); !strings.Contains(got, events.TypeDatasetReloaded) {
		t.Fatalf("frame=%s", got)
	}
}

func TestScheduledReloadSkipsWhileRunning(t *testing.T) {
	env := newEnv(t, nil)
	rh := NewReloadHandler(env.deps)

	env.deps.ReloadStatus.Store(ReloadStatus{Running: true, LastRunAt: "earlier"})
	if err := rh.Reload(context.Background()); err != nil {
		t.Fatalf("skipped tick should not fail: %v", err)
	}
	env.data.mu.Lock()
	reloads := env.data.reloads
	env.data.mu.Unlock()
	if reloads != 0 {
		t.Fatalf("tick ran during another reload")
	}
	if st := env.deps.ReloadStatus.Load().(ReloadStatus); !st.Running {
		t.Fatalf("tick cleared the running flag: %+v", st)
	}
	rec := env.do(http.MethodPost, "/api/reload", map[string]string{adminTokenHeader: "s3cret"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("admin reload during a running reload: status=%d", rec.Code)
	}

	env.deps.ReloadStatus.Store(ReloadStatus{})
	if err := rh.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	st := env.deps.ReloadStatus.Load().(ReloadStatus)
	if st.Running || st.LastOkAt == "" || st.LastRows != 3 {
		t.Fatalf("status after scheduled reload=%+v", st)
	}
}
