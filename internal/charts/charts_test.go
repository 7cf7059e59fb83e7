package charts

import (
	"math"
	"strings"
	"testing"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"

	"github.com/PuerkitoBio/goquery"
)

func doc(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	return d
}

func TestTopTitlesBarLabelsAndEscaping(t *testing.T) {
	shares := analysis.TopN([]analysis.CategoryCount{
		{Value: "R&D Engineer", Count: 3},
		{Value: "Accountant", Count: 1},
	}, 10)

	out, err := TopTitles(shares, Options{})
	if err != nil {
		t.Fatalf("TopTitles: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "<svg") {
		t.Fatalf("expected inline svg, got %.60q", s)
	}
	if strings.Contains(s, "R&D") {
		t.Fatalf("raw ampersand leaked into svg")
	}
	if !strings.Contains(s, "75.00%") || !strings.Contains(s, "25.00%") {
		t.Fatalf("percent labels missing")
	}
}

func TestBarChartEqualValuesAndEmpty(t *testing.T) {
	if _, err := BarChart([]Bar{{"a", 5}, {"b", 5}}, nil, Options{}); err != nil {
		t.Fatalf("equal bars should render: %v", err)
	}
	if _, err := BarChart([]Bar{{"a", 0}}, nil, Options{}); err != nil {
		t.Fatalf("zero bar should render: %v", err)
	}

	out, err := BarChart([]Bar{{"a", math.NaN()}}, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if doc(t, string(out)).Find(".chart-empty").Length() != 1 {
		t.Fatalf("expected placeholder, got %s", out)
	}

	out, err = MeanBars(nil, 10, "SAR", Options{})
	if err != nil || !strings.Contains(string(out), emptyMessage) {
		t.Fatalf("empty means: %v %s", err, out)
	}
}

func TestMeanBarsLimit(t *testing.T) {
	means := []analysis.GroupMean{{Key: "Riyadh", Mean: 9000}, {Key: "Jeddah", Mean: 8000}, {Key: "Abha", Mean: 1000}}
	out, err := MeanBars(means, 2, "SAR", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "Abha") {
		t.Fatalf("limit not applied")
	}
	if !strings.Contains(string(out), "SAR") {
		t.Fatalf("currency ticks missing")
	}
}

func TestPieAndScatter(t *testing.T) {
	out, err := Pie([]analysis.CategoryCount{{Value: "M", Count: 3}, {Value: "F", Count: 1}}, Options{})
	if err != nil {
		t.Fatalf("Pie: %v", err)
	}
	if !strings.Contains(string(out), "M (75.00%)") {
		t.Fatalf("pie labels missing")
	}
	if out, _ := Pie(nil, Options{}); !strings.Contains(string(out), emptyMessage) {
		t.Fatalf("empty pie should be a placeholder")
	}

	// a single point has zero span on both axes
	out, err = Scatter([]analysis.Point{{X: 2, Y: 5000}}, "Years of experience", "Salary", "SAR", Options{})
	if err != nil {
		t.Fatalf("single point scatter: %v", err)
	}
	if !strings.Contains(string(out), "<svg") {
		t.Fatalf("expected svg")
	}
	if out, _ := Scatter(nil, "x", "y", "", Options{}); !strings.Contains(string(out), emptyMessage) {
		t.Fatalf("empty scatter should be a placeholder")
	}
}

const regionsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Ar Riyad"},
     "geometry": {"type": "Polygon", "coordinates": [[[44,22],[48,22],[48,26],[44,26],[44,22]]]}},
    {"type": "Feature", "properties": {"name": "Makkah"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[39,20],[42,20],[42,23],[39,23],[39,20]]]]}},
    {"type": "Feature", "properties": {"name": "Tabuk"},
     "geometry": {"type": "Polygon", "coordinates": [[[35,27],[38,27],[38,29],[35,29],[35,27]]]}}
  ]
}`

func TestChoropleth(t *testing.T) {
	fc, err := ParseGeoJSON([]byte(regionsGeoJSON))
	if err != nil {
		t.Fatalf("ParseGeoJSON: %v", err)
	}

	out, err := Choropleth(fc, []RegionValue{
		{Name: "Riyadh", Value: 9000},
		{Name: "makkah", Value: 5000},
		{Name: "Atlantis", Value: 1},
	}, MapOptions{Aliases: map[string]string{"Riyadh": "Ar Riyad"}})
	if err != nil {
		t.Fatalf("Choropleth: %v", err)
	}

	s := string(out)
	if n := strings.Count(s, "<path"); n < 3 {
		t.Fatalf("expected a path per feature, got %d", n)
	}
	if !strings.Contains(s, ramp(1).String()) {
		t.Fatalf("highest region should use the dark end of the ramp")
	}
	if !strings.Contains(s, noData.String()) {
		t.Fatalf("region without data should be grey")
	}

	d := doc(t, s)
	items := d.Find(".map-legend li")
	if items.Length() != 3 {
		t.Fatalf("legend rows=%d", items.Length())
	}
	if !strings.HasPrefix(items.First().Text(), "Riyadh") {
		t.Fatalf("legend should be ordered by value: %q", items.First().Text())
	}
	if !strings.Contains(items.Last().Text(), "not on map") {
		t.Fatalf("unmatched region should be flagged: %q", items.Last().Text())
	}

	if _, err := ParseGeoJSON([]byte("{")); err == nil {
		t.Fatalf("expected parse error")
	}
	if out, _ := Choropleth(fc, nil, MapOptions{}); !strings.Contains(string(out), emptyMessage) {
		t.Fatalf("no values should give a placeholder")
	}
}

func TestWordCloud(t *testing.T) {
	words := []analysis.WordCount{
		{Word: "محاسب", Count: 10, RTL: true},
		{Word: "sales", Count: 5},
		{Word: "<b>", Count: 1},
	}
	out := WordCloud(words, CloudOptions{FontFamily: "Amiri", MinPx: 10, MaxPx: 50})
	d := doc(t, string(out))

	spans := d.Find(".word-cloud .word")
	if spans.Length() != 3 {
		t.Fatalf("words=%d", spans.Length())
	}
	rtl := d.Find(`.word[dir="rtl"]`)
	if rtl.Length() != 1 || rtl.Text() != "محاسب" {
		t.Fatalf("rtl word not marked: %q", rtl.Text())
	}
	style, _ := rtl.Attr("style")
	if !strings.Contains(style, "font-size:50.0px") {
		t.Fatalf("most frequent word should be largest: %q", style)
	}
	if d.Find(".word-cloud b").Length() != 0 {
		t.Fatalf("word text must be escaped")
	}
	cloudStyle, _ := d.Find(".word-cloud").Attr("style")
	if !strings.Contains(cloudStyle, "Amiri") {
		t.Fatalf("font family missing: %q", cloudStyle)
	}

	if !strings.Contains(string(WordCloud(nil, CloudOptions{})), emptyMessage) {
		t.Fatalf("empty cloud should be a placeholder")
	}
}

func TestFormatting(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{Money(5666.67, "SAR"), "5,667 SAR"},
		{Money(1000, ""), "1,000"},
		{Money(math.NaN(), "SAR"), "n/a"},
		{Count(12345.2), "12,345"},
		{Percent(33.3333), "33.33%"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("got %q want %q", tc.got, tc.want)
		}
	}
}

func TestChoroplethMergesAliasedRegions(t *testing.T) {
	fc, err := ParseGeoJSON([]byte(regionsGeoJSON))
	if err != nil {
		t.Fatalf("ParseGeoJSON: %v", err)
	}

	out, err := Choropleth(fc, []RegionValue{
		{Name: "Eastern Province", Value: 9000, Count: 1},
		{Name: "Eastern", Value: 3000, Count: 3},
		{Name: "Makkah", Value: 1000, Count: 2},
	}, MapOptions{Aliases: map[string]string{"Eastern Province": "Tabuk", "Eastern": "tabuk"}})
	if err != nil {
		t.Fatalf("Choropleth: %v", err)
	}

	d := doc(t, string(out))
	items := d.Find(".map-legend li")
	if items.Length() != 2 {
		t.Fatalf("legend rows=%d want 2", items.Length())
	}
	first := items.First().Text()
	if first != "Eastern Province, Eastern: 4,500" {
		t.Fatalf("merged row=%q", first)
	}
	if strings.Contains(d.Find(".map-legend").Text(), "not on map") {
		t.Fatalf("aliased regions are on the map")
	}
	if !strings.Contains(string(out), ramp(1).String()) {
		t.Fatalf("merged region should carry the highest colour")
	}
}

func TestWrappedLabelsKeepEntitiesIntact(t *testing.T) {
	out, err := BarChart([]Bar{
		{"Research&Development&Operations&Maintenance<Lead>", 5},
		{`"Quoted" O'Brien & Sons`, 3},
	}, nil, Options{Width: 220, Height: 220})
	if err != nil {
		t.Fatalf("BarChart: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "&amp;") {
		t.Fatalf("ampersand should be escaped")
	}
	if strings.ContainsAny(s, "\uE000\uE001\uE002\uE003\uE004") {
		t.Fatalf("placeholder runes leaked into svg")
	}
	rest := strings.NewReplacer("&amp;", "", "&lt;", "", "&gt;", "", "&#34;", "", "&#39;", "").Replace(s)
	if strings.Contains(rest, "&") {
		t.Fatalf("broken entity in svg: %s", s)
	}
	if strings.Contains(s, "<Lead>") {
		t.Fatalf("raw markup leaked into svg")
	}
}
