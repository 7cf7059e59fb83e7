package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

//go:embed content/*.md
var contentFS embed.FS

// sectionOrder is the reading order of the narrative blocks.
var sectionOrder = []string{"intro", "hottest", "regions", "salaries", "skills", "conclusion"}

type Heading struct {
	ID    string
	Text  string
	Level int
}

// Narrative holds the rendered markdown blocks of the page.
type Narrative struct {
	Sections map[string]template.HTML
	TOC      []Heading
}

// Section returns the named block, or an empty fragment.
func (n *Narrative) Section(name string) template.HTML {
	if n == nil {
		return ""
	}
	return n.Sections[name]
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// LoadNarrative renders the embedded markdown and collects its headings
// into a table of contents.
func LoadNarrative() (*Narrative, error) {
	md := newMarkdown()
	n := &Narrative{Sections: make(map[string]template.HTML, len(sectionOrder))}

	var all strings.Builder
	for _, name := range sectionOrder {
		src, err := contentFS.ReadFile("content/" + name + ".md")
		if err != nil {
			return nil, fmt.Errorf("read section %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := md.Convert(src, &buf); err != nil {
			return nil, fmt.Errorf("render section %s: %w", name, err)
		}
		n.Sections[name] = template.HTML(buf.String())
		all.Write(buf.Bytes())
	}

	toc, err := headings(all.String())
	if err != nil {
		return nil, err
	}
	n.TOC = toc
	return n, nil
}

func headings(fragment string) ([]Heading, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse narrative: %w", err)
	}
	var out []Heading
	doc.Find("h2[id], h3[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		level := 2
		if goquery.NodeName(s) == "h3" {
			level = 3
		}
		out = append(out, Heading{ID: id, Text: strings.TrimSpace(s.Text()), Level: level})
	})
	return out, nil
}
