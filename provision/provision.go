// Package provision turns the provision lines of administrator reports into
// pending movements.
package provision

import (
	"regexp"
	"strings"

	"github.com/etnz/liquidity"
)

// Source tags of the extracted movements.
const (
	SourceAssetRedemption     = "provision_asset_redemption"
	SourceLiabilityRedemption = "provision_liability_redemption"
	SourceCredit              = "provision_credit"
	SourceDebit               = "provision_debit"
)

var codeRE = regexp.MustCompile(`\((\d+)\)`)

// Classify returns the operation and source tag of a provision line.
func Classify(description string, value liquidity.Money) (liquidity.Operation, string) {
	desc := strings.ToUpper(description)
	switch {
	case strings.Contains(desc, "MOVIMENTAÇÃO DE COTAS"), strings.Contains(desc, "MOVIMENTACAO DE COTAS"):
		return liquidity.AssetRedemption, SourceAssetRedemption
	case strings.Contains(desc, "MOVIMENTO CARTEIRA"),
		strings.Contains(desc, "MOV. CARTEIRA"),
		strings.Contains(desc, "MOV CARTEIRA"):
		return liquidity.LiabilityRedemption, SourceLiabilityRedemption
	case value.IsPositive():
		return liquidity.GenericCredit, SourceCredit
	default:
		return liquidity.GenericDebit, SourceDebit
	}
}

// Code returns the fund code written between parentheses in a description.
func Code(description string) string {
	if m := codeRE.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return ""
}

// Extract converts provision lines into movements. Lines without a
// settlement date are skipped, a missing operation date defaults to the
// settlement date. The fund name is taken from the position with the code
// found in the description, or from the description itself.
func Extract(rows []liquidity.Provision, positions []liquidity.Position) []liquidity.Movement {
	names := make(map[string]string, len(positions))
	for _, p := range positions {
		if _, ok := names[p.Code]; !ok {
			names[p.Code] = p.Name
		}
	}

	var movements []liquidity.Movement
	for _, row := range rows {
		if row.SettleDate.IsZero() {
			continue
		}
		request := row.OperationDate
		if request.IsZero() {
			request = row.SettleDate
		}
		op, source := Classify(row.Description, row.Value)
		code := Code(row.Description)
		name := names[code]
		if code == "" || name == "" {
			name = truncate(row.Description, 60)
		}
		movements = append(movements, liquidity.Movement{
			FundName:    name,
			FundCode:    code,
			Operation:   op,
			Value:       row.Value.Abs(),
			RequestDate: request,
			SettleDate:  row.SettleDate,
			Description: row.Description,
			Source:      source,
		})
	}
	return movements
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
