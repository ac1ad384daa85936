package liquidity

import (
	"fmt"
	"slices"

	"github.com/etnz/liquidity/date"
)

// SuggestionKind classifies a Suggestion.
type SuggestionKind int

const (
	// Anticipate asks to request an inflow earlier than currently planned.
	Anticipate SuggestionKind = iota
	// Impossible means the inflow cannot settle in time whatever is done.
	Impossible
	// Uncovered means no inflow can be moved to cover the outflow.
	Uncovered
)

func (k SuggestionKind) String() string {
	switch k {
	case Anticipate:
		return "anticipate"
	case Impossible:
		return "impossible"
	case Uncovered:
		return "uncovered"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k SuggestionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Suggestion is an actionable change of request date, or a warning that none exists.
type Suggestion struct {
	Kind    SuggestionKind `json:"kind"`
	Outflow Movement       `json:"outflow"`
	// Inflow is the redemption to move, nil for Uncovered.
	Inflow           *Movement `json:"inflow,omitempty"`
	CurrentRequest   date.Date `json:"current_request"`
	SuggestedRequest date.Date `json:"suggested_request"`
	// Target is the date the inflow must settle by.
	Target    date.Date `json:"target"`
	Shortfall Money     `json:"shortfall"`
	Message   string    `json:"message"`
}

// Advice is the result of the shortfall analysis.
type Advice struct {
	Suggestions []Suggestion `json:"suggestions"`
	Negatives   []Negative   `json:"negatives"`
	Timeline    Timeline     `json:"timeline"`
}

// isOutflow reports whether m drains effective cash.
func isOutflow(m Movement, cash CashSet) bool {
	switch m.Operation {
	case LiabilityRedemption, GenericDebit:
		return true
	case Subscription:
		return !cash.Has(m.FundCode)
	}
	return false
}

// isInflow reports whether m is a redemption that brings new effective cash.
func isInflow(m Movement, cash CashSet) bool {
	return m.Operation == AssetRedemption && !cash.Has(m.FundCode)
}

// SuggestRequestDates turns the negative days of the timeline of b into
// request date suggestions.
//
// Outflows settling within opt.ShortfallWindow days of a negative day look
// for inflows that settle after them and could be requested earlier. Outflows
// left without a suggestion targeting a date within opt.CoverageWindow days
// are reported as Uncovered.
func SuggestRequestDates(b Book, opt Options) Advice {
	today := b.Today
	timeline := BuildCashTimeline(b, opt)
	advice := Advice{Timeline: timeline, Negatives: timeline.Negatives()}
	if len(advice.Negatives) == 0 {
		return advice
	}

	var outflows, inflows []Movement
	for _, m := range b.Movements {
		if !m.Schedulable() || m.SettleDate.Before(today) {
			continue
		}
		switch {
		case isOutflow(m, b.Cash):
			outflows = append(outflows, m)
		case isInflow(m, b.Cash):
			inflows = append(inflows, m)
		}
	}
	slices.SortStableFunc(outflows, func(a, b Movement) int { return a.SettleDate.Compare(b.SettleDate) })

	matchers := b.Catalog.Matchers()
	var flagged []Movement
	for _, out := range outflows {
		if !timeline.isNegativeNear(out.SettleDate, opt.ShortfallWindow) {
			continue
		}
		flagged = append(flagged, out)
		shortfall := shortfallNear(advice.Negatives, out.SettleDate, opt.ShortfallWindow)
		for _, in := range inflows {
			if !in.SettleDate.After(out.SettleDate) {
				continue
			}
			params, ok := matchers.Match(Query{Code: in.FundCode, Name: in.FundName})
			if !ok {
				continue
			}
			latest := params.LatestRequest(out.SettleDate)
			switch {
			case latest.Before(today):
				advice.Suggestions = append(advice.Suggestions, Suggestion{
					Kind:             Impossible,
					Outflow:          out,
					Inflow:           &in,
					CurrentRequest:   in.RequestDate,
					SuggestedRequest: latest,
					Target:           out.SettleDate,
					Shortfall:        shortfall,
					Message: fmt.Sprintf("%s cannot settle by %v (%s), raise cash or delay the outflow",
						in.FundName, out.SettleDate, params.LagText(AssetRedemption)),
				})
			case latest.Before(in.RequestDate):
				advice.Suggestions = append(advice.Suggestions, Suggestion{
					Kind:             Anticipate,
					Outflow:          out,
					Inflow:           &in,
					CurrentRequest:   in.RequestDate,
					SuggestedRequest: latest,
					Target:           out.SettleDate,
					Shortfall:        shortfall,
					Message: fmt.Sprintf("request %s of %s on %v instead of %v to settle by %v",
						in.FundName, in.Value, latest, in.RequestDate, out.SettleDate),
				})
			}
		}
	}

	for _, out := range flagged {
		covered := date.Around(out.SettleDate, opt.CoverageWindow)
		if slices.ContainsFunc(advice.Suggestions, func(s Suggestion) bool {
			return s.Kind != Uncovered && covered.Contains(s.Target)
		}) {
			continue
		}
		advice.Suggestions = append(advice.Suggestions, Suggestion{
			Kind:      Uncovered,
			Outflow:   out,
			Target:    out.SettleDate,
			Shortfall: shortfallNear(advice.Negatives, out.SettleDate, opt.ShortfallWindow),
			Message: fmt.Sprintf("outflow of %s on %v has no matching inflow, ensure sufficient cash",
				out.Value, out.SettleDate),
		})
	}
	opt.Logger.Debug().
		Int("negatives", len(advice.Negatives)).
		Int("suggestions", len(advice.Suggestions)).
		Msg("request dates advised")
	return advice
}

// shortfallNear returns the largest shortfall within radius days of d.
func shortfallNear(negatives []Negative, d date.Date, radius int) Money {
	window := date.Around(d, radius)
	var worst Money
	for _, n := range negatives {
		if window.Contains(n.Date) {
			worst = MaxMoney(worst, n.Shortfall)
		}
	}
	return worst
}
