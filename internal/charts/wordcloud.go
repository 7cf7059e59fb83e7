package charts

import (
	"fmt"
	"html"
	"html/template"
	"sort"
	"strings"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"
)

type CloudOptions struct {
	// FontFamily is the CSS family used for the words, typically the
	// downloaded Arabic font.
	FontFamily string
	MinPx      float64
	MaxPx      float64
}

// WordCloud renders words as a tag cloud: each word's font size grows
// linearly with its count, right-to-left words carry dir="rtl", and the
// browser lays the words out.
func WordCloud(words []analysis.WordCount, opts CloudOptions) template.HTML {
	if len(words) == 0 {
		return Placeholder("")
	}
	if opts.MinPx <= 0 {
		opts.MinPx = 14
	}
	if opts.MaxPx <= opts.MinPx {
		opts.MaxPx = 64
	}

	lo, hi := words[0].Count, words[0].Count
	for _, w := range words {
		lo = min(lo, w.Count)
		hi = max(hi, w.Count)
	}

	// colour follows frequency rank; placement is alphabetical so sizes mix
	rank := make(map[string]int, len(words))
	for i, w := range words {
		rank[w.Word] = i
	}
	sorted := append([]analysis.WordCount(nil), words...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Word < sorted[j].Word })

	var b strings.Builder
	b.WriteString(`<div class="word-cloud"`)
	if opts.FontFamily != "" {
		fmt.Fprintf(&b, ` style="font-family:'%s', serif"`, html.EscapeString(opts.FontFamily))
	}
	b.WriteString(`>`)
	for _, w := range sorted {
		var size float64
		if hi > lo {
			size = opts.MinPx + (opts.MaxPx-opts.MinPx)*float64(w.Count-lo)/float64(hi-lo)
		} else {
			size = (opts.MinPx + opts.MaxPx) / 2
		}
		dir := "ltr"
		if w.RTL {
			dir = "rtl"
		}
		fmt.Fprintf(&b, `<span class="word" dir="%s" title="%d" style="font-size:%.1fpx;color:%s">%s</span> `,
			dir, w.Count, size, paletteColor(rank[w.Word]).String(), html.EscapeString(w.Word))
	}
	b.WriteString(`</div>`)
	return template.HTML(b.String())
}
