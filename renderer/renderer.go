// Package renderer turns liquidity reports into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/liquidity"
	"github.com/etnz/liquidity/date"
)

//go:embed templates/*.md
var templateFS embed.FS

// templates is the root of the embedded templates.
var templates, _ = fs.Sub(templateFS, "templates")

// Renderer renders reports with amounts formatted in one currency.
type Renderer struct {
	currency string
}

// New returns a renderer for the given ISO currency code, the default
// currency when empty.
func New(currency string) *Renderer {
	if currency == "" {
		currency = liquidity.DefaultCurrency
	}
	return &Renderer{currency: currency}
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"money":  func(m liquidity.Money) string { return m.Format(r.currency) },
		"signed": func(m liquidity.Money) string { return r.signed(m) },
		"points": func(p liquidity.Percent) string { return p.SignedString() },
		"day":    func(d date.Date) string { return day(d) },
		"cell":   cell,
		"join": func(lines []string) string {
			escaped := make([]string, len(lines))
			for i, l := range lines {
				escaped[i] = cell(l)
			}
			return strings.Join(escaped, "<br>")
		},
		"components": func(t liquidity.Timeline) []liquidity.ComponentBalance {
			if len(t.Records) == 0 {
				return nil
			}
			return t.Records[len(t.Records)-1].Components
		},
		"worst": func(negatives []liquidity.Negative) liquidity.Money {
			var worst liquidity.Money
			for _, n := range negatives {
				worst = liquidity.MaxMoney(worst, n.Shortfall)
			}
			return worst
		},
	}
}

func (r *Renderer) money(m liquidity.Money) string { return m.Format(r.currency) }

// signed formats m with an explicit sign, "-" for zero.
func (r *Renderer) signed(m liquidity.Money) string {
	switch {
	case m.IsZero():
		return "-"
	case m.IsPositive():
		return "+" + r.money(m)
	default:
		return r.money(m)
	}
}

// day formats d with its weekday, "-" for the zero date.
func day(d date.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("2006-01-02 Mon")
}

// Timeline renders the day by day effective cash.
func (r *Renderer) Timeline(t liquidity.Timeline) string {
	partials := map[string]string{
		"timeline_table":      "timeline_table.md",
		"timeline_components": "timeline_components.md",
	}
	return r.renderTemplate("timeline", "timeline.md", partials, t)
}

// Advice renders the request date suggestions with their timeline.
func (r *Renderer) Advice(a liquidity.Advice) string {
	partials := map[string]string{
		"advice_suggestions": "advice_suggestions.md",
		"timeline_table":     "timeline_table.md",
	}
	return r.renderTemplate("advice", "advice.md", partials, a)
}

// Plan renders a rebalancing plan and its validation timeline.
func (r *Renderer) Plan(p liquidity.Plan) string {
	partials := map[string]string{
		"plan_entries":   "plan_entries.md",
		"plan_warnings":  "plan_warnings.md",
		"timeline_table": "timeline_table.md",
	}
	return r.renderTemplate("plan", "plan.md", partials, p)
}

// Adherence renders the gaps between the portfolio and its target model.
func (r *Renderer) Adherence(a liquidity.AdherenceReport) string {
	return r.renderTemplate("adherence", "adherence.md", nil, a)
}

// renderTemplate renders a main template that depends on several partials.
func (r *Renderer) renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(r.funcs()).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
