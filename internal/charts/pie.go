package charts

import (
	"html/template"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"

	"github.com/wcharczuk/go-chart/v2"
)

// Pie draws category shares, labelled "value (percent)".
func Pie(counts []analysis.CategoryCount, opts Options) (template.HTML, error) {
	shares := analysis.TopN(counts, 0)
	values := make([]chart.Value, 0, len(shares))
	for i, s := range shares {
		if s.Count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: label(s.Value + " (" + Percent(s.Percent) + ")"),
			Value: float64(s.Count),
			Style: chart.Style{FillColor: paletteColor(i)},
		})
	}
	if len(values) == 0 {
		return Placeholder(""), nil
	}

	w, h := opts.size(480, 480)
	pc := chart.PieChart{
		Width:  w,
		Height: h,
		Font:   opts.Font,
		Values: values,
	}
	return renderSVG(pc)
}
