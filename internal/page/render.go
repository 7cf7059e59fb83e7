package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"
	"github.com/ReyadGH/use-case-4-deployment/internal/charts"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	ErrorTitle   = "Error loading the page 🤕"
	ErrorMessage = "Something went wrong"
)

var funcs = template.FuncMap{
	"money": func(n analysis.Number, currency string) string {
		return charts.Money(float64(n), currency)
	},
	"years": func(n analysis.Number) string {
		if !n.Valid() {
			return "n/a"
		}
		return fmt.Sprintf("%.1f", float64(n))
	},
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return humanize.Time(t)
	},
}

func parseTemplates() (*template.Template, error) {
	return template.New("page").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Render executes the page template into w. The output is buffered so a
// template failure never leaves a half written page behind.
func (b *Builder) Render(w io.Writer, v *View) error {
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, "page.html", v); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

type errorView struct {
	Title   string
	Message string
	Detail  string
}

// RenderError writes the catch-all error page. The error text is included
// when page.show_error_detail is on.
func (b *Builder) RenderError(w io.Writer, cause error) error {
	v := errorView{Title: ErrorTitle, Message: ErrorMessage}
	if cause != nil && b.cfg.Page.ShowErrorDetail {
		v.Detail = cause.Error()
	}
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, "error.html", v); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
