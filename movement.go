package liquidity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/liquidity/date"
)

// Operation identifies the kind of a Movement.
type Operation int

// Operations, the canonical effects are described by Impact.
const (
	AssetRedemption     Operation = iota // the portfolio redeems shares of a fund it holds
	LiabilityRedemption                  // an investor withdraws from the portfolio itself
	Subscription                         // the portfolio buys shares of a fund
	GenericDebit                         // any other cash outflow
	GenericCredit                        // any other cash inflow
)

func (op Operation) String() string {
	switch op {
	case AssetRedemption:
		return "asset-redemption"
	case LiabilityRedemption:
		return "liability-redemption"
	case Subscription:
		return "subscription"
	case GenericDebit:
		return "debit"
	case GenericCredit:
		return "credit"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// ParseOperation parses the canonical names as well as the labels found in
// Brazilian administrator reports.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asset-redemption", "redemption", "resgate", "resgate (cotizando)", "resgate (provisão)", "resgate (provisao)":
		return AssetRedemption, nil
	case "liability-redemption", "resgate passivo":
		return LiabilityRedemption, nil
	case "subscription", "aplicação", "aplicacao":
		return Subscription, nil
	case "debit", "débito/passivo", "debito/passivo", "débito", "debito":
		return GenericDebit, nil
	case "credit", "crédito (provisão)", "credito (provisao)", "crédito", "credito":
		return GenericCredit, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", s)
	}
}

func (op Operation) MarshalText() ([]byte, error) { return []byte(op.String()), nil }

func (op *Operation) UnmarshalText(text []byte) error {
	v, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*op = v
	return nil
}

// Source tags used for movements created by this package.
const (
	SourceManual            = "manual"
	SourceLiabilityCoverage = "plan_liability_coverage"
	SourceRebalancing       = "plan_rebalancing"
)

// Movement is a pending asset or cash movement. Movements are values, they are
// never changed once created.
type Movement struct {
	FundName    string    `json:"fund_name"`
	FundCode    string    `json:"fund_code,omitempty"`
	Operation   Operation `json:"operation"`
	Value       Money     `json:"value"`
	RequestDate date.Date `json:"request_date"`
	// SettleDate is when the movement hits cash. A zero date means the
	// movement cannot be scheduled.
	SettleDate  date.Date `json:"liquidation_date"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	// Unmatched is set when the fund could not be found in the catalog and
	// the settlement date fell back to the request date.
	Unmatched bool `json:"unmatched,omitempty"`
}

// Schedulable reports whether m has a settlement date and a positive value.
func (m Movement) Schedulable() bool {
	return !m.SettleDate.IsZero() && m.Value.IsPositive()
}

// MarshalJSON keeps the field order stable and omits absent dates.
func (m Movement) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("fund_name", m.FundName)
	w.Optional("fund_code", m.FundCode)
	w.Append("operation", m.Operation)
	w.Append("value", m.Value)
	w.Optional("request_date", m.RequestDate)
	w.Optional("liquidation_date", m.SettleDate)
	w.Optional("description", m.Description)
	w.Optional("source", m.Source)
	w.Optional("unmatched", m.Unmatched)
	return w.MarshalJSON()
}

var _ json.Marshaler = Movement{}

// Caixa is the component code of the cash line.
const Caixa = "CAIXA"

// CashSet is the set of cash-equivalent fund codes.
type CashSet map[string]bool

// Has reports whether code is cash-equivalent. The empty code never is.
func (s CashSet) Has(code string) bool { return code != "" && s[code] }

// Delta is a change applied to one cash component.
type Delta struct {
	Component string
	Amount    Money
}

// Impact is the effect of a single movement.
type Impact struct {
	Cash       Money   // change of the aggregate effective cash
	Components []Delta // split of that change over cash components, CAIXA first
	Position   Money   // change of the position of the movement fund code
}

// Transfer reports whether the impact only moves money between cash components.
func (i Impact) Transfer() bool { return i.Cash.IsZero() && len(i.Components) > 1 }

// Impact returns the canonical effect of m given the cash-equivalent codes.
//
// Redeeming or subscribing a cash-equivalent fund is a transfer between that
// component and CAIXA, it never changes the aggregate.
func (m Movement) Impact(cash CashSet) Impact {
	v := m.Value
	switch m.Operation {
	case LiabilityRedemption, GenericDebit:
		return Impact{Cash: v.Neg(), Components: []Delta{{Caixa, v.Neg()}}}
	case GenericCredit:
		return Impact{Cash: v, Components: []Delta{{Caixa, v}}}
	case AssetRedemption:
		if cash.Has(m.FundCode) {
			return Impact{Components: []Delta{{Caixa, v}, {m.FundCode, v.Neg()}}, Position: v.Neg()}
		}
		return Impact{Cash: v, Components: []Delta{{Caixa, v}}, Position: v.Neg()}
	case Subscription:
		if cash.Has(m.FundCode) {
			return Impact{Components: []Delta{{Caixa, v.Neg()}, {m.FundCode, v}}, Position: v}
		}
		return Impact{Cash: v.Neg(), Components: []Delta{{Caixa, v.Neg()}}, Position: v}
	default:
		return Impact{}
	}
}

// describe returns a short human text for the timeline details.
func (m Movement) describe(cash CashSet) string {
	name := truncate(m.FundName, 40)
	switch m.Operation {
	case LiabilityRedemption:
		return fmt.Sprintf("Liability redemption: -%s", m.Value)
	case AssetRedemption:
		if cash.Has(m.FundCode) {
			return fmt.Sprintf("Cash redemption (%s): %s (neutral)", name, m.Value)
		}
		return fmt.Sprintf("Redemption %s: +%s", name, m.Value)
	case Subscription:
		if cash.Has(m.FundCode) {
			return fmt.Sprintf("Cash subscription (%s): %s (neutral)", name, m.Value)
		}
		return fmt.Sprintf("Subscription %s: -%s", name, m.Value)
	case GenericDebit:
		return fmt.Sprintf("Debit: -%s", m.Value)
	case GenericCredit:
		return fmt.Sprintf("Credit: +%s", m.Value)
	default:
		return fmt.Sprintf("%s: %s", m.Operation, m.Value)
	}
}

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Holdings is a static view of the portfolio: fund positions and the CAIXA line.
type Holdings struct {
	Caixa     Money
	Positions map[string]Money // by fund code
}

// Clone returns a deep copy of h.
func (h Holdings) Clone() Holdings {
	positions := make(map[string]Money, len(h.Positions))
	for k, v := range h.Positions {
		positions[k] = v
	}
	return Holdings{Caixa: h.Caixa, Positions: positions}
}

// Total returns the sum of all positions and CAIXA.
func (h Holdings) Total() Money {
	total := h.Caixa
	for _, v := range h.Positions {
		total = total.Add(v)
	}
	return total
}

// ApplyMovement returns the holdings after m has settled. h is left untouched.
//
// It uses the same Impact as the timeline: the CAIXA component receives the
// CAIXA delta and the fund position receives the position delta, when the
// fund is a known position. A cash-equivalent fund is a position too, so a
// transfer keeps the effective cash unchanged here as well.
func ApplyMovement(h Holdings, m Movement) Holdings {
	next := h.Clone()
	impact := m.Impact(nil)
	for _, d := range impact.Components {
		if d.Component == Caixa {
			next.Caixa = next.Caixa.Add(d.Amount)
		}
	}
	if m.FundCode != "" {
		if v, ok := next.Positions[m.FundCode]; ok {
			next.Positions[m.FundCode] = v.Add(impact.Position)
		}
	}
	return next
}
