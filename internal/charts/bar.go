package charts

import (
	"html/template"
	"math"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"

	"github.com/wcharczuk/go-chart/v2"
)

type Bar struct {
	Label string
	Value float64
}

// BarChart draws one vertical bar per entry in the given order. yFormat
// labels the value axis.
func BarChart(bars []Bar, yFormat func(float64) string, opts Options) (template.HTML, error) {
	values := make([]chart.Value, 0, len(bars))
	peak := 0.0
	for i, b := range bars {
		if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) {
			continue
		}
		values = append(values, chart.Value{
			Label: label(b.Label),
			Value: b.Value,
			Style: chart.Style{
				FillColor:   paletteColor(i),
				StrokeColor: paletteColor(i),
				StrokeWidth: 1,
			},
		})
		peak = math.Max(peak, b.Value)
	}
	if len(values) == 0 {
		return Placeholder(""), nil
	}
	if peak <= 0 {
		peak = 1
	}
	if yFormat == nil {
		yFormat = Count
	}

	w, h := opts.size(960, 480)
	bc := chart.BarChart{
		Width:      w,
		Height:     h,
		Font:       opts.Font,
		BarSpacing: 12,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			ValueFormatter: tickFormatter(yFormat),
			// bars start at zero rather than at the smallest value
			Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
		},
		Bars: values,
	}
	if n := len(values); n > 0 {
		bc.BarWidth = max(16, (w-80)/n-bc.BarSpacing)
	}
	return renderSVG(bc)
}

// TopTitles renders the top-N share as "Title (12.34%)" bars.
func TopTitles(shares []analysis.Share, opts Options) (template.HTML, error) {
	bars := make([]Bar, 0, len(shares))
	for _, s := range shares {
		bars = append(bars, Bar{Label: s.Value + " (" + Percent(s.Percent) + ")", Value: float64(s.Count)})
	}
	return BarChart(bars, Count, opts)
}

// MeanBars renders group means, e.g. average salary per region.
func MeanBars(means []analysis.GroupMean, limit int, currency string, opts Options) (template.HTML, error) {
	if limit > 0 && len(means) > limit {
		means = means[:limit]
	}
	bars := make([]Bar, 0, len(means))
	for _, m := range means {
		bars = append(bars, Bar{Label: m.Key, Value: m.Mean})
	}
	return BarChart(bars, func(v float64) string { return Money(v, currency) }, opts)
}

// SkillBars renders mean salary per skill.
func SkillBars(stats []analysis.SkillStat, currency string, opts Options) (template.HTML, error) {
	bars := make([]Bar, 0, len(stats))
	for _, s := range stats {
		if !s.MeanSalary.Valid() {
			continue
		}
		bars = append(bars, Bar{Label: s.Skill, Value: float64(s.MeanSalary)})
	}
	return BarChart(bars, func(v float64) string { return Money(v, currency) }, opts)
}
