package liquidity

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/etnz/liquidity/date"
)

// Reason groups plan entries for presentation, in that order.
type Reason int

const (
	ReasonLiabilityCoverage Reason = iota
	ReasonRebalancing
	ReasonSubscription
)

func (r Reason) String() string {
	switch r {
	case ReasonLiabilityCoverage:
		return "liability-coverage"
	case ReasonRebalancing:
		return "rebalancing"
	case ReasonSubscription:
		return "subscription"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// PlanEntry is a request the plan asks to place.
type PlanEntry struct {
	Priority    int       `json:"priority"`
	FundCode    string    `json:"fund_code"`
	FundName    string    `json:"fund_name"`
	Operation   Operation `json:"operation"`
	Amount      Money     `json:"amount"`
	RequestDate date.Date `json:"request_date"`
	SettleDate  date.Date `json:"settlement_date"`
	Lag         string    `json:"lag"`
	From        Percent   `json:"from_percent"`
	To          Percent   `json:"to_percent"`
	Rationale   string    `json:"rationale"`
	Reason      Reason    `json:"reason"`
	Source      string    `json:"source"`
}

// Movement returns the pending movement the entry creates once requested.
func (e PlanEntry) Movement() Movement {
	return Movement{
		FundName:    e.FundName,
		FundCode:    e.FundCode,
		Operation:   e.Operation,
		Value:       e.Amount,
		RequestDate: e.RequestDate,
		SettleDate:  e.SettleDate,
		Description: fmt.Sprintf("Plan: %s %s (%s)", e.Operation, truncate(e.FundName, 30), truncate(e.Rationale, 30)),
		Source:      e.Source,
	}
}

// WarningLevel tells whether a plan can be used as is.
type WarningLevel int

const (
	Advisory WarningLevel = iota
	// Fatal warnings mean the plan leaves cash negative somewhere.
	Fatal
)

func (l WarningLevel) String() string {
	if l == Fatal {
		return "fatal"
	}
	return "advisory"
}

func (l WarningLevel) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Warning annotates a plan.
type Warning struct {
	Level   WarningLevel `json:"level"`
	Message string       `json:"message"`
}

func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Level, w.Message) }

// Plan is the result of GenerateRebalancingPlan.
type Plan struct {
	Today    date.Date   `json:"today"`
	Entries  []PlanEntry `json:"entries"`
	Warnings []Warning   `json:"warnings"`
	// Validation is the timeline of the pending movements and the plan together.
	Validation Timeline `json:"validation"`
}

// Movements returns the movements created by the plan, in priority order.
func (p Plan) Movements() []Movement {
	movements := make([]Movement, len(p.Entries))
	for i, e := range p.Entries {
		movements[i] = e.Movement()
	}
	return movements
}

// Feasible reports whether the plan has no fatal warning.
func (p Plan) Feasible() bool {
	return !slices.ContainsFunc(p.Warnings, func(w Warning) bool { return w.Level == Fatal })
}

// GenerateRebalancingPlan schedules redemptions and subscriptions that move
// the funds of b toward their gaps while keeping the effective cash positive.
//
// The plan is built in phases: the fund ledger, the baseline cash events,
// liability coverage, excess redemption, underweight subscription and a
// final validation on the timeline. When cash still goes negative the plan
// is returned with fatal warnings, it is never silently fixed.
func GenerateRebalancingPlan(b Book, gaps []Gap, opt Options) Plan {
	log := opt.Logger.With().Str("component", "planner").Logger()
	opt.Logger = log
	today := b.Today

	l, warnings := buildLedger(gaps, b.Catalog, b.Cash, opt.Tolerance)
	log.Debug().Int("funds", len(l.funds)).Msg("ledger built")

	base := newBaseline(b)
	log.Debug().
		Stringer("effective_cash", base.effective).
		Int("obligations", len(base.obligations)).
		Msg("baseline built")

	l, events, covered, w := coverObligations(l, base, today, opt.Tolerance)
	warnings = append(warnings, w...)
	log.Debug().Int("entries", len(covered)).Msg("obligations covered")

	l, events, redeemed := redeemExcess(l, events, today, opt.Tolerance)
	log.Debug().Int("entries", len(redeemed)).Msg("excess redeemed")

	_, subscribed, w := subscribeUnderweight(l, base.effective, events, today, opt)
	warnings = append(warnings, w...)
	log.Debug().Int("entries", len(subscribed)).Msg("underweight subscribed")

	entries := slices.Concat(covered, redeemed, subscribed)
	orderEntries(entries)

	p := Plan{Today: today, Entries: entries}
	p.Validation, w = validate(b, p.Movements(), opt)
	p.Warnings = append(warnings, w...)
	log.Debug().
		Int("entries", len(p.Entries)).
		Int("warnings", len(p.Warnings)).
		Bool("feasible", p.Feasible()).
		Msg("plan generated")
	return p
}

// orderEntries sorts by reason, then settlement, then larger amounts first,
// and assigns priorities from 1.
func orderEntries(entries []PlanEntry) {
	slices.SortStableFunc(entries, func(a, b PlanEntry) int {
		return cmp.Or(
			cmp.Compare(a.Reason, b.Reason),
			a.SettleDate.Compare(b.SettleDate),
			b.Amount.Cmp(a.Amount),
		)
	})
	for i := range entries {
		entries[i].Priority = i + 1
	}
}

// validate simulates the pending movements together with the plan.
func validate(b Book, plan []Movement, opt Options) (Timeline, []Warning) {
	t := BuildCashTimeline(b.With(plan...), opt)
	var warnings []Warning
	for _, n := range t.Negatives() {
		warnings = append(warnings, Warning{
			Level:   Fatal,
			Message: fmt.Sprintf("negative cash on %v: %s", n.Date, n.Shortfall.Neg()),
		})
	}
	return t, warnings
}
