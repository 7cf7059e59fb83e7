// Package charts renders dashboard figures as inline SVG or HTML fragments.
package charts

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const emptyMessage = "No data for the current selection"

// Options are shared by every renderer.
type Options struct {
	Width  int
	Height int
	// Font is used to measure and label text; nil means the chart default.
	Font *truetype.Font
}

func (o Options) size(w, h int) (int, int) {
	if o.Width > 0 {
		w = o.Width
	}
	if o.Height > 0 {
		h = o.Height
	}
	return w, h
}

// Placeholder is rendered in place of a chart that has nothing to show.
func Placeholder(msg string) template.HTML {
	if msg == "" {
		msg = emptyMessage
	}
	return template.HTML(`<div class="chart-empty">` + html.EscapeString(msg) + `</div>`)
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderSVG(c renderable) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.SVG, &buf); err != nil {
		return "", err
	}
	return template.HTML(labelUnmask.Replace(buf.String())), nil
}

// The SVG writer emits text verbatim, but go-chart measures and wraps labels
// first, so an entity could be split across lines. Markup characters are
// swapped for single private-use runes until the SVG is written.
var (
	labelMask = strings.NewReplacer(
		"&", "\uE000", "<", "\uE001", ">", "\uE002", `"`, "\uE003", "'", "\uE004")
	labelUnmask = strings.NewReplacer(
		"\uE000", "&amp;", "\uE001", "&lt;", "\uE002", "&gt;", "\uE003", "&#34;", "\uE004", "&#39;")
)

func label(s string) string { return labelMask.Replace(s) }

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

func paletteColor(i int) drawing.Color { return palette[i%len(palette)] }

// ParseFont parses TrueType bytes, such as the downloaded Amiri font.
func ParseFont(b []byte) (*truetype.Font, error) {
	f, err := truetype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

// FontFamily returns the family name embedded in f.
func FontFamily(f *truetype.Font) string {
	if f == nil {
		return ""
	}
	return f.Name(truetype.NameIDFontFamily)
}

// Count formats an integer-valued axis tick.
func Count(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// Money formats an amount with thousands separators and a currency suffix.
func Money(v float64, currency string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	s := humanize.FormatFloat("#,###.", math.Round(v))
	if currency == "" {
		return s
	}
	return s + " " + currency
}

func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

func tickFormatter(f func(float64) string) chart.ValueFormatter {
	return func(v interface{}) string {
		if fv, ok := v.(float64); ok {
			return f(fv)
		}
		return fmt.Sprintf("%v", v)
	}
}
