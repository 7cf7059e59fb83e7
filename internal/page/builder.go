// Package page assembles the dashboard: narrative blocks interleaved with
// charts computed from the memoized dataset.
package page

import (
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"
	"github.com/ReyadGH/use-case-4-deployment/internal/cache"
	"github.com/ReyadGH/use-case-4-deployment/internal/charts"
	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	"github.com/ReyadGH/use-case-4-deployment/internal/domain"
	domainerrors "github.com/ReyadGH/use-case-4-deployment/internal/errors"

	"github.com/golang/freetype/truetype"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Tables yields the memoized dataset. *dataset.Loader satisfies it.
type Tables interface {
	Load(ctx context.Context) (*domain.Table, error)
}

// Assets yields cached asset bytes. *fetch.Fetcher satisfies it.
type Assets interface {
	Cached(ctx context.Context, url string) (cache.Entry, error)
}

// Request carries the page controls.
type Request struct {
	Regions []string
}

// Charts are the rendered figures of one page view.
type Charts struct {
	TopTitles    template.HTML
	WordCloud    template.HTML
	Map          template.HTML
	RegionSalary template.HTML
	CitySalary   template.HTML
	Scatter      template.HTML
	Gender       template.HTML
	Skills       template.HTML
}

// View is everything the page template needs.
type View struct {
	Title     string
	Narrative *Narrative
	Regions   []string
	Selected  map[string]bool
	Summary   analysis.Summary
	Charts    Charts
	ShowMap   bool
	TopN      int
	Currency  string
	// FontFamily is set when the Arabic font was fetched and parsed.
	FontFamily string
	LoadedAt   time.Time
}

// Builder runs load, filter, aggregate and render for one request.
type Builder struct {
	data      Tables
	assets    Assets
	cfg       config.Config
	narrative *Narrative
	tagger    analysis.SkillTagger
	tmpl      *template.Template
	log       *zap.Logger

	mu   sync.Mutex
	geo  *geojson.FeatureCollection
	font *truetype.Font
}

func NewBuilder(data Tables, assets Assets, cfg config.Config, log *zap.Logger) (*Builder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	n, err := LoadNarrative()
	if err != nil {
		return nil, err
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Builder{
		data:      data,
		assets:    assets,
		cfg:       cfg,
		narrative: n,
		tagger:    analysis.NewSkillTagger(cfg.Skills),
		tmpl:      tmpl,
		log:       log,
	}, nil
}

// Reset forgets the parsed boundary and font so the next build re-reads them.
func (b *Builder) Reset() {
	b.mu.Lock()
	b.geo, b.font = nil, nil
	b.mu.Unlock()
}

// guard turns a panic inside an errgroup task into an error.
func guard(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = domainerrors.Internal("panic in "+name, fmt.Errorf("%v", rec))
			}
		}()
		return fn()
	}
}

type loaded struct {
	table *domain.Table
	geo   *geojson.FeatureCollection
	font  *truetype.Font
}

func (b *Builder) load(ctx context.Context) (loaded, error) {
	var out loaded
	g, gctx := errgroup.WithContext(ctx)

	g.Go(guard("dataset", func() error {
		t, err := b.data.Load(gctx)
		out.table = t
		return err
	}))

	if url := b.cfg.Assets.GeoJSONURL; url != "" {
		g.Go(guard("geojson", func() error {
			fc, err := b.geojson(gctx, url)
			out.geo = fc
			return err
		}))
	}

	// the font is cosmetic; a failure falls back to the browser default
	if url := b.cfg.Assets.FontURL; url != "" {
		g.Go(guard("font", func() error {
			f, err := b.fontFor(gctx, url)
			if err != nil {
				b.log.Warn("font unavailable", zap.String("url", url), zap.Error(err))
				return nil
			}
			out.font = f
			return nil
		}))
	}

	if err := g.Wait(); err != nil {
		return loaded{}, err
	}
	return out, nil
}

func (b *Builder) geojson(ctx context.Context, url string) (*geojson.FeatureCollection, error) {
	b.mu.Lock()
	fc := b.geo
	b.mu.Unlock()
	if fc != nil {
		return fc, nil
	}

	e, err := b.assets.Cached(ctx, url)
	if err != nil {
		return nil, err
	}
	fc, err = charts.ParseGeoJSON(e.Data)
	if err != nil {
		return nil, domainerrors.InvalidInput("region boundaries", err)
	}
	b.mu.Lock()
	b.geo = fc
	b.mu.Unlock()
	return fc, nil
}

func (b *Builder) fontFor(ctx context.Context, url string) (*truetype.Font, error) {
	b.mu.Lock()
	f := b.font
	b.mu.Unlock()
	if f != nil {
		return f, nil
	}

	e, err := b.assets.Cached(ctx, url)
	if err != nil {
		return nil, err
	}
	f, err = charts.ParseFont(e.Data)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.font = f
	b.mu.Unlock()
	return f, nil
}

// Build loads everything the page needs and renders every chart. Any
// failure aborts the whole view.
func (b *Builder) Build(ctx context.Context, req Request) (*View, error) {
	ctx, span := otel.Tracer("dashboard/page").Start(ctx, "page.Build")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("page.regions", req.Regions))

	in, err := b.load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rows := analysis.FilterRegions(in.table, req.Regions).Rows
	opts := charts.Options{Font: in.font}
	cur := b.cfg.Page.Currency

	v := &View{
		Title:      b.cfg.Page.Title,
		Narrative:  b.narrative,
		Regions:    analysis.Regions(in.table),
		Selected:   make(map[string]bool, len(req.Regions)),
		Summary:    analysis.Summarize(rows),
		ShowMap:    in.geo != nil,
		TopN:       b.cfg.Page.TopN,
		Currency:   cur,
		FontFamily: charts.FontFamily(in.font),
		LoadedAt:   in.table.LoadedAt,
	}
	for _, r := range analysis.Canonical(v.Regions, req.Regions) {
		v.Selected[r] = true
	}

	titles := analysis.TopN(analysis.ValueCounts(analysis.Column(rows, analysis.ByTitle)), b.cfg.Page.TopN)
	if v.Charts.TopTitles, err = charts.TopTitles(titles, opts); err != nil {
		return nil, fmt.Errorf("top titles chart: %w", err)
	}

	words := analysis.WordFrequencies(analysis.Column(rows, analysis.ByDescription),
		analysis.WordOptions{Limit: b.cfg.Page.WordCloudWords})
	v.Charts.WordCloud = charts.WordCloud(words, charts.CloudOptions{FontFamily: v.FontFamily})

	byRegion := analysis.GroupByMean(rows, analysis.ByRegion, analysis.Salary)
	if in.geo != nil {
		values := make([]charts.RegionValue, 0, len(byRegion))
		for _, m := range byRegion {
			values = append(values, charts.RegionValue{Name: m.Key, Value: m.Mean, Count: m.Count})
		}
		v.Charts.Map, err = charts.Choropleth(in.geo, values, charts.MapOptions{
			Options:      opts,
			NameProperty: b.cfg.Assets.GeoJSONNameProperty,
			Aliases:      b.cfg.Regions.Aliases,
			Format:       func(x float64) string { return charts.Money(x, cur) },
		})
		if err != nil {
			return nil, fmt.Errorf("region map: %w", err)
		}
	}
	if v.Charts.RegionSalary, err = charts.MeanBars(byRegion, 0, cur, opts); err != nil {
		return nil, fmt.Errorf("region salary chart: %w", err)
	}

	byCity := analysis.GroupByMean(rows, analysis.ByCity, analysis.Salary)
	if v.Charts.CitySalary, err = charts.MeanBars(byCity, b.cfg.Page.TopN, cur, opts); err != nil {
		return nil, fmt.Errorf("city salary chart: %w", err)
	}

	yName := "Salary"
	if cur != "" {
		yName += " (" + cur + ")"
	}
	points := analysis.ExperienceSalaryPoints(rows)
	if v.Charts.Scatter, err = charts.Scatter(points, "Years of experience", yName, cur, opts); err != nil {
		return nil, fmt.Errorf("scatter chart: %w", err)
	}

	gender := analysis.ValueCounts(analysis.Column(rows, analysis.ByGender))
	if v.Charts.Gender, err = charts.Pie(gender, opts); err != nil {
		return nil, fmt.Errorf("gender chart: %w", err)
	}

	if v.Charts.Skills, err = charts.SkillBars(b.tagger.Stats(rows), cur, opts); err != nil {
		return nil, fmt.Errorf("skills chart: %w", err)
	}

	span.SetAttributes(attribute.Int("page.rows", len(rows)))
	return v, nil
}
