package charts

import (
	"html/template"
	"math"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col.WithAlpha(160),
	}
}

// padRange widens a degenerate range so the chart has a non-zero span.
func padRange(lo, hi float64) (float64, float64) {
	if hi-lo == 0 {
		pad := math.Max(1, math.Abs(lo)*0.1)
		return lo - pad, hi + pad
	}
	return lo, hi
}

// Scatter draws experience (x) against salary (y).
func Scatter(points []analysis.Point, xName, yName, currency string, opts Options) (template.HTML, error) {
	if len(points) == 0 {
		return Placeholder(""), nil
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
		xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
		ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
	}
	xmin, xmax = padRange(xmin, xmax)
	ymin, ymax = padRange(ymin, ymax)

	w, h := opts.size(960, 480)
	c := chart.Chart{
		Width:      w,
		Height:     h,
		Font:       opts.Font,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:           label(xName),
			Range:          &chart.ContinuousRange{Min: xmin, Max: xmax},
			ValueFormatter: tickFormatter(func(v float64) string { return Count(v) }),
		},
		YAxis: chart.YAxis{
			Name:           label(yName),
			Range:          &chart.ContinuousRange{Min: ymin, Max: ymax},
			ValueFormatter: tickFormatter(func(v float64) string { return Money(v, currency) }),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    label(yName),
				Style:   pointStyle(paletteColor(0)),
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return renderSVG(c)
}
