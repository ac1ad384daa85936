package liquidity

import (
	"slices"
	"strings"

	"github.com/etnz/liquidity/date"
)

// ProjectionRow is the value of a position through the projected dates.
type ProjectionRow struct {
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	Current Money     `json:"current"`
	Values  []Money   `json:"values"`  // one per Projection date
	Weights []Percent `json:"weights"` // one per Projection date
	Weight  Percent   `json:"weight"`  // current weight
}

// Projection shows how positions evolve as pending movements settle.
type Projection struct {
	Dates []date.Date     `json:"dates"`
	Rows  []ProjectionRow `json:"rows"` // positions in order, then CAIXA
	Total ProjectionRow   `json:"total"`
}

// projectionPrefixLen is how many runes of a name identify a position when a
// movement has no code.
const projectionPrefixLen = 20

// Project returns, for every distinct settlement date of movements, the
// value of each position and of CAIXA once the movements settled by that
// date are applied.
func Project(positions []Position, caixa Money, movements []Movement) Projection {
	var p Projection
	seen := make(map[date.Date]bool)
	for _, m := range movements {
		if m.SettleDate.IsZero() || seen[m.SettleDate] {
			continue
		}
		seen[m.SettleDate] = true
		p.Dates = append(p.Dates, m.SettleDate)
	}
	slices.SortFunc(p.Dates, date.Date.Compare)

	// resolve each movement to a position index once
	target := make([]int, len(movements))
	for i, m := range movements {
		target[i] = findPosition(positions, m)
	}

	p.Rows = make([]ProjectionRow, len(positions)+1)
	for i, pos := range positions {
		p.Rows[i] = ProjectionRow{Code: pos.Code, Name: truncate(pos.Name, 45), Current: pos.Value}
	}
	p.Rows[len(positions)] = ProjectionRow{Code: Caixa, Name: Caixa, Current: caixa}
	p.Total = ProjectionRow{Name: "TOTAL"}

	for _, d := range p.Dates {
		values := make([]Money, len(p.Rows))
		for i, r := range p.Rows {
			values[i] = r.Current
		}
		for i, m := range movements {
			if m.SettleDate.IsZero() || m.SettleDate.After(d) || !m.Value.IsPositive() {
				continue
			}
			impact := m.Impact(nil)
			for _, delta := range impact.Components {
				if delta.Component == Caixa {
					values[len(positions)] = values[len(positions)].Add(delta.Amount)
				}
			}
			if target[i] >= 0 {
				values[target[i]] = values[target[i]].Add(impact.Position)
			}
		}
		for i := range p.Rows {
			p.Rows[i].Values = append(p.Rows[i].Values, values[i])
		}
	}

	for i := range p.Rows {
		p.Total.Current = p.Total.Current.Add(p.Rows[i].Current)
	}
	for j := range p.Dates {
		var total Money
		for i := range p.Rows {
			total = total.Add(p.Rows[i].Values[j])
		}
		p.Total.Values = append(p.Total.Values, total)
	}
	for i := range p.Rows {
		r := &p.Rows[i]
		r.Weight = r.Current.Percent(p.Total.Current)
		for j := range p.Dates {
			r.Weights = append(r.Weights, r.Values[j].Percent(p.Total.Values[j]))
		}
	}
	return p
}

// findPosition returns the index of the position m applies to, or -1.
// Positions are found by code, then by name prefix.
func findPosition(positions []Position, m Movement) int {
	if m.FundCode != "" {
		for i, p := range positions {
			if p.Code == m.FundCode {
				return i
			}
		}
	}
	if m.FundName == "" {
		return -1
	}
	name := strings.ToUpper(m.FundName)
	for i, p := range positions {
		if prefixMatch(name, p.Name, projectionPrefixLen) {
			return i
		}
	}
	return -1
}
