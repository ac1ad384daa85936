package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/liquidity"
)

// Projection renders the value and weight of each position through the
// settlement dates of the pending movements.
func (r *Renderer) Projection(p liquidity.Projection) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Position projection\n\n")
	if len(p.Dates) == 0 {
		fmt.Fprint(&b, "No pending movement to project.\n\n")
	}

	fmt.Fprint(&b, "| Code | Fund | Current |")
	for _, d := range p.Dates {
		fmt.Fprintf(&b, " %s |", d)
	}
	fmt.Fprint(&b, "\n|:---|:---|---:|")
	for range p.Dates {
		fmt.Fprint(&b, "---:|")
	}
	fmt.Fprintln(&b)

	row := func(w io.Writer, code, name, current string, values []string) {
		fmt.Fprintf(w, "| %s | %s | %s |", code, name, current)
		for _, v := range values {
			fmt.Fprintf(w, " %s |", v)
		}
		fmt.Fprintln(w)
	}
	for _, pr := range p.Rows {
		cells := make([]string, len(pr.Values))
		for j, v := range pr.Values {
			cells[j] = fmt.Sprintf("%s (%s)", r.money(v), pr.Weights[j])
		}
		row(&b, cell(pr.Code), cell(pr.Name), fmt.Sprintf("%s (%s)", r.money(pr.Current), pr.Weight), cells)
	}
	totals := make([]string, len(p.Total.Values))
	for j, v := range p.Total.Values {
		totals[j] = "**" + r.money(v) + "**"
	}
	row(&b, "", "**"+p.Total.Name+"**", "**"+r.money(p.Total.Current)+"**", totals)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\nNegative projected values:\n\n")
		found := false
		for _, pr := range p.Rows {
			for j, v := range pr.Values {
				if v.IsNegative() {
					fmt.Fprintf(w, "- %s on %s: %s\n", pr.Name, p.Dates[j], r.money(v))
					found = true
				}
			}
		}
		return found
	})
	return b.String()
}
