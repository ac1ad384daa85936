package liquidity

import "strings"

// Position is a fund held by the portfolio.
type Position struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Value    Money  `json:"value"`
	Strategy string `json:"strategy,omitempty"` // strategy or category tag
}

// IsCashEquivalent reports whether the position behaves as cash: its strategy
// tag contains CAIXA.
func (p Position) IsCashEquivalent() bool {
	return strings.Contains(strings.ToUpper(p.Strategy), Caixa)
}

// CashFund describes a cash-equivalent position for diagnostics.
type CashFund struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Strategy       string `json:"strategy"`
	ConversionDays int    `json:"conversion_days"`
	SettlementDays int    `json:"settlement_days"`
	Value          Money  `json:"value"`
	CatalogMatched bool   `json:"catalog_matched"`
}

// CashEquivalents classifies positions. It returns the set of
// cash-equivalent codes and their display list in position order. Settlement
// figures come from the catalog, 0/0 when the fund is not found.
func CashEquivalents(positions []Position, catalog Catalog) (CashSet, []CashFund) {
	set := make(CashSet)
	var funds []CashFund
	for _, p := range positions {
		if !p.IsCashEquivalent() {
			continue
		}
		if p.Code != "" {
			set[p.Code] = true
		}
		f := CashFund{Code: p.Code, Name: p.Name, Strategy: p.Strategy, Value: p.Value}
		if params, ok := MatchLiquidationParams(catalog, p.Code, p.Name); ok {
			f.ConversionDays = params.RedemptionConversionDays
			f.SettlementDays = params.RedemptionSettlementDays
			f.CatalogMatched = true
		}
		funds = append(funds, f)
	}
	return set, funds
}

// EffectiveCash returns CAIXA plus the value of the cash-equivalent positions.
func EffectiveCash(caixa Money, positions []Position, cash CashSet) Money {
	total := caixa
	for _, p := range positions {
		if cash.Has(p.Code) {
			total = total.Add(p.Value)
		}
	}
	return total
}

// HoldingsOf returns the holdings view of the positions. Positions without a
// code are left out since no movement can address them.
func HoldingsOf(caixa Money, positions []Position) Holdings {
	h := Holdings{Caixa: caixa, Positions: make(map[string]Money, len(positions))}
	for _, p := range positions {
		if p.Code == "" {
			continue
		}
		h.Positions[p.Code] = h.Positions[p.Code].Add(p.Value)
	}
	return h
}
