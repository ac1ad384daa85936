package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/liquidity"
)

// CashFunds renders the cash-equivalent positions with their settlement
// figures.
func (r *Renderer) CashFunds(funds []liquidity.CashFund) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Cash-equivalent funds\n\n")
	if len(funds) == 0 {
		fmt.Fprint(&b, "No position is tagged as cash.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| Code | Fund | Strategy | Redemption | Value | Catalog |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|:---:|")
	var total liquidity.Money
	for _, f := range funds {
		matched := " "
		if f.CatalogMatched {
			matched = "X"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | D+%d+%d | %s | %s |\n",
			cell(f.Code),
			cell(f.Name),
			cell(f.Strategy),
			f.ConversionDays,
			f.SettlementDays,
			r.money(f.Value),
			matched,
		)
		total = total.Add(f.Value)
	}
	fmt.Fprintf(&b, "| **Total** | | | | **%s** | |\n", r.money(total))
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\nNot found in the liquidation catalog, assumed D+0+0:\n\n")
		missing := false
		for _, f := range funds {
			if !f.CatalogMatched {
				fmt.Fprintf(w, "- %s\n", f.Name)
				missing = true
			}
		}
		return missing
	})
	return b.String()
}
