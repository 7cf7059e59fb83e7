package charts

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ParseGeoJSON decodes a boundary FeatureCollection.
func ParseGeoJSON(b []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	return fc, nil
}

type RegionValue struct {
	Name  string
	Value float64
	// Count weights the value when several names share a boundary.
	// Zero counts as one.
	Count int
}

type MapOptions struct {
	Options
	// NameProperty is the feature property holding the region name.
	NameProperty string
	// Aliases maps dataset region names onto boundary names.
	Aliases map[string]string
	Format  func(float64) string
}

var (
	rampLow   = drawing.ColorFromHex("deebf7")
	rampHigh  = drawing.ColorFromHex("08519c")
	noData    = drawing.ColorFromHex("e0e0e0")
	mapStroke = drawing.ColorFromHex("ffffff")
)

// ramp interpolates linearly between rampLow and rampHigh, t in [0,1].
func ramp(t float64) drawing.Color {
	t = math.Max(0, math.Min(1, t))
	lerp := func(a, b uint8) uint8 { return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t)) }
	return drawing.Color{
		R: lerp(rampLow.R, rampHigh.R),
		G: lerp(rampLow.G, rampHigh.G),
		B: lerp(rampLow.B, rampHigh.B),
		A: 255,
	}
}

func normName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// projector maps lon/lat onto the canvas with an equirectangular projection
// that preserves the aspect ratio of bound.
type projector struct {
	bound         orb.Bound
	scale, ox, oy float64
}

func newProjector(bound orb.Bound, w, h, pad int) projector {
	dx := bound.Max.X() - bound.Min.X()
	dy := bound.Max.Y() - bound.Min.Y()
	if dx <= 0 {
		dx = 1
	}
	if dy <= 0 {
		dy = 1
	}
	aw, ah := float64(w-2*pad), float64(h-2*pad)
	scale := math.Min(aw/dx, ah/dy)
	return projector{
		bound: bound,
		scale: scale,
		ox:    float64(pad) + (aw-dx*scale)/2,
		oy:    float64(pad) + (ah-dy*scale)/2,
	}
}

func (p projector) xy(pt orb.Point) (int, int) {
	x := p.ox + (pt.X()-p.bound.Min.X())*p.scale
	y := p.oy + (p.bound.Max.Y()-pt.Y())*p.scale
	return int(math.Round(x)), int(math.Round(y))
}

func polygonsOf(g orb.Geometry) []orb.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{v}
	case orb.MultiPolygon:
		return v
	case orb.Collection:
		var out []orb.Polygon
		for _, sub := range v {
			out = append(out, polygonsOf(sub)...)
		}
		return out
	}
	return nil
}

type legendRow struct {
	name  string
	value float64
	color drawing.Color
	onMap  bool
	weight float64
}

// Choropleth fills each region polygon by its value and appends an HTML
// legend. Regions without a value are grey; values without a region are
// listed as not on the map.
func Choropleth(fc *geojson.FeatureCollection, values []RegionValue, opts MapOptions) (template.HTML, error) {
	if fc == nil || len(fc.Features) == 0 || len(values) == 0 {
		return Placeholder(""), nil
	}
	if opts.NameProperty == "" {
		opts.NameProperty = "name"
	}
	if opts.Format == nil {
		opts.Format = func(v float64) string { return Money(v, "") }
	}

	aliases := make(map[string]string, len(opts.Aliases))
	for k, v := range opts.Aliases {
		aliases[normName(k)] = normName(v)
	}

	// names aliased onto the same boundary share one row
	byName := map[string]*legendRow{}
	var rows []*legendRow
	for _, v := range values {
		if math.IsNaN(v.Value) {
			continue
		}
		key := normName(v.Name)
		if a, ok := aliases[key]; ok {
			key = a
		}
		w := float64(max(v.Count, 1))
		if row, ok := byName[key]; ok {
			row.name += ", " + v.Name
			row.value = (row.value*row.weight + v.Value*w) / (row.weight + w)
			row.weight += w
			continue
		}
		row := &legendRow{name: v.Name, value: v.Value, weight: w}
		byName[key] = row
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return Placeholder(""), nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		lo, hi = math.Min(lo, r.value), math.Max(hi, r.value)
	}
	colorFor := func(x float64) drawing.Color {
		if hi == lo {
			return ramp(1)
		}
		return ramp((x - lo) / (hi - lo))
	}
	for _, r := range rows {
		r.color = colorFor(r.value)
	}

	var bound orb.Bound
	first := true
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		if first {
			bound = f.Geometry.Bound()
			first = false
		} else {
			bound = bound.Union(f.Geometry.Bound())
		}
	}
	if first {
		return Placeholder(""), nil
	}

	w, h := opts.size(720, 560)
	r, err := chart.SVG(w, h)
	if err != nil {
		return "", err
	}
	proj := newProjector(bound, w, h, 10)

	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		fill := noData
		if row, ok := byName[normName(f.Properties.MustString(opts.NameProperty, ""))]; ok {
			fill = row.color
			row.onMap = true
		}

		r.SetFillColor(fill)
		r.SetStrokeColor(mapStroke)
		r.SetStrokeWidth(1)
		drew := false
		for _, poly := range polygonsOf(f.Geometry) {
			for _, ring := range poly {
				if len(ring) < 3 {
					continue
				}
				x, y := proj.xy(ring[0])
				r.MoveTo(x, y)
				for _, pt := range ring[1:] {
					x, y = proj.xy(pt)
					r.LineTo(x, y)
				}
				r.Close()
				drew = true
			}
		}
		if drew {
			r.FillStroke()
		}
	}

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return "", err
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].value > rows[j].value })
	buf.WriteString(`<ul class="map-legend">`)
	for _, row := range rows {
		note := ""
		if !row.onMap {
			note = ` <em>(not on map)</em>`
		}
		fmt.Fprintf(&buf, `<li><span class="swatch" style="background:%s"></span>%s: %s%s</li>`,
			row.color.String(), html.EscapeString(row.name), html.EscapeString(opts.Format(row.value)), note)
	}
	buf.WriteString(`</ul>`)
	return template.HTML(buf.String()), nil
}
