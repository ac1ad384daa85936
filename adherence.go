package liquidity

import (
	"fmt"
	"math"
	"strings"
)

// Gap compares a fund, after every pending movement, with its target weight.
type Gap struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Projected Money   `json:"projected"`
	Current   Percent `json:"current"`
	Target    Percent `json:"target"`
	Points    Percent `json:"gap_points"` // target - current
	Value     Money   `json:"gap_value"`  // positive when the fund is below target
	Action    string  `json:"action"`
	// OutOfModel is set for positions the target model does not mention.
	OutOfModel bool `json:"out_of_model,omitempty"`
}

// AdherenceReport lists the gaps, funds first then the CAIXA row.
type AdherenceReport struct {
	Total       Money `json:"total"`
	Caixa       Money `json:"caixa"`
	Gaps        []Gap `json:"gaps"`
	ToSubscribe Money `json:"to_subscribe"`
	ToRedeem    Money `json:"to_redeem"`
}

// Funds returns the gaps without the CAIXA row.
func (r AdherenceReport) Funds() []Gap {
	funds := make([]Gap, 0, len(r.Gaps))
	for _, g := range r.Gaps {
		if g.Code != Caixa {
			funds = append(funds, g)
		}
	}
	return funds
}

const (
	namePrefixLen    = 15
	outOfModelValue  = 100
	outOfModelWeight = 0.05
	okPoints         = 0.1
)

// prefixMatch reports whether the first runes of either upper-cased name are
// contained in the other. An empty name matches nothing.
func prefixMatch(a, b string, n int) bool {
	a, b = strings.ToUpper(strings.TrimSpace(a)), strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(b, truncate(a, n)) || strings.Contains(a, truncate(b, n))
}

// Adherence compares the portfolio of b, once every pending movement is
// applied, with the target model.
//
// Targets are matched to positions by code, or else by name prefix.
// Positions outside the model worth more than R$100 and 0.05% get a zero
// target. The CAIXA row takes the weight the model leaves.
func Adherence(b Book, targets []Target) AdherenceReport {
	h := HoldingsOf(b.Caixa, b.Positions)
	for _, m := range b.Movements {
		if m.Value.IsPositive() {
			h = ApplyMovement(h, m)
		}
	}
	total := h.Total()
	r := AdherenceReport{Total: total, Caixa: h.Caixa}

	names := make(map[string]string)
	var codes []string
	for _, p := range b.Positions {
		if _, seen := names[p.Code]; seen || p.Code == "" {
			continue
		}
		names[p.Code] = p.Name
		codes = append(codes, p.Code)
	}

	inModel := make(map[string]bool)
	var targetSum Percent
	for _, t := range targets {
		targetSum += t.Percent
		code := strings.TrimSpace(t.Code)
		inModel[code] = true
		var projected Money
		if v, ok := h.Positions[code]; ok {
			projected = v
		} else {
			for _, c := range codes {
				if prefixMatch(t.Name, names[c], namePrefixLen) {
					projected = h.Positions[c]
					inModel[c] = true
					break
				}
			}
		}
		g := Gap{
			Code:      code,
			Name:      truncate(strings.TrimSpace(t.Name), 45),
			Projected: projected,
			Current:   projected.Percent(total),
			Target:    t.Percent,
			Value:     total.Scale(t.Percent).Sub(projected),
		}
		g.Points = g.Target - g.Current
		g.Action = gapAction(g)
		r.Gaps = append(r.Gaps, g)
	}

	for _, c := range codes {
		v := h.Positions[c]
		if inModel[c] || !v.GreaterThan(M(outOfModelValue)) {
			continue
		}
		weight := v.Percent(total)
		if weight <= outOfModelWeight {
			continue
		}
		r.Gaps = append(r.Gaps, Gap{
			Code:       c,
			Name:       truncate(names[c], 45),
			Projected:  v,
			Current:    weight,
			Points:     -weight,
			Value:      v.Neg(),
			Action:     fmt.Sprintf("Redeem %s (out of model)", v),
			OutOfModel: true,
		})
	}

	for _, g := range r.Gaps {
		if g.Value.IsPositive() {
			r.ToSubscribe = r.ToSubscribe.Add(g.Value)
		} else {
			r.ToRedeem = r.ToRedeem.Add(g.Value.Neg())
		}
	}

	caixaTarget := Percent(math.Max(0, float64(100-targetSum)))
	caixa := Gap{
		Code:      Caixa,
		Name:      Caixa,
		Projected: h.Caixa,
		Current:   h.Caixa.Percent(total),
		Target:    caixaTarget,
		Value:     total.Scale(caixaTarget).Sub(h.Caixa),
	}
	caixa.Points = caixa.Target - caixa.Current
	switch {
	case math.Abs(float64(caixa.Points)) < 1:
		caixa.Action = "Residual"
	case caixa.Points < 0:
		caixa.Action = "Excess"
	default:
		caixa.Action = "Deficit"
	}
	r.Gaps = append(r.Gaps, caixa)
	return r
}

func gapAction(g Gap) string {
	switch {
	case math.Abs(float64(g.Points)) < okPoints:
		return "OK"
	case g.Points > 0:
		return fmt.Sprintf("Subscribe %s", g.Value.Abs())
	default:
		return fmt.Sprintf("Redeem %s", g.Value.Abs())
	}
}
