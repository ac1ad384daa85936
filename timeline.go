package liquidity

import (
	"fmt"

	"github.com/etnz/liquidity/date"
)

// ComponentBalance is the running balance of one cash component.
type ComponentBalance struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Balance Money  `json:"balance"`
}

// TimelineRecord is the effective cash position at the end of a business day.
type TimelineRecord struct {
	Date       date.Date          `json:"date"`
	Inflows    Money              `json:"inflows"`
	Outflows   Money              `json:"outflows"`
	Net        Money              `json:"net"`
	Balance    Money              `json:"balance"`
	Components []ComponentBalance `json:"components"`
	Details    []string           `json:"details,omitempty"`
	Negative   bool               `json:"negative"`
	HasEvents  bool               `json:"has_events"`
}

// Negative is a day when the effective cash is below zero.
type Negative struct {
	Date      date.Date `json:"date"`
	Shortfall Money     `json:"shortfall"` // positive amount missing that day
}

// Timeline is the day-by-day simulation of the effective cash.
type Timeline struct {
	Today   date.Date        `json:"today"`
	Initial Money            `json:"initial"`
	Records []TimelineRecord `json:"records"`
}

// Final returns the balance at the end of the timeline.
func (t Timeline) Final() Money {
	if len(t.Records) == 0 {
		return t.Initial
	}
	return t.Records[len(t.Records)-1].Balance
}

// Negatives returns the negative days in date order.
func (t Timeline) Negatives() []Negative {
	var negatives []Negative
	for _, r := range t.Records {
		if r.Negative {
			negatives = append(negatives, Negative{Date: r.Date, Shortfall: r.Balance.Neg()})
		}
	}
	return negatives
}

// isNegativeNear reports whether a negative day lies within radius calendar days of d.
func (t Timeline) isNegativeNear(d date.Date, radius int) bool {
	window := date.Around(d, radius)
	for _, r := range t.Records {
		if r.Negative && window.Contains(r.Date) {
			return true
		}
	}
	return false
}

// components keeps the cash components in a stable order.
type components struct {
	codes    []string
	names    map[string]string
	balances map[string]Money
}

func (c *components) add(code, name string, balance Money) {
	if _, exists := c.balances[code]; exists {
		c.balances[code] = c.balances[code].Add(balance)
		return
	}
	c.codes = append(c.codes, code)
	c.names[code] = truncate(name, 35)
	c.balances[code] = balance
}

func (c *components) apply(d Delta) {
	if _, exists := c.balances[d.Component]; !exists {
		c.add(d.Component, d.Component, Money{})
	}
	c.balances[d.Component] = c.balances[d.Component].Add(d.Amount)
}

func (c *components) snapshot() []ComponentBalance {
	out := make([]ComponentBalance, len(c.codes))
	for i, code := range c.codes {
		out[i] = ComponentBalance{Code: code, Name: c.names[code], Balance: c.balances[code]}
	}
	return out
}

// seedComponents returns CAIXA, then the cash-equivalent positions in order,
// then the cash-equivalent codes first seen in movements at zero.
func seedComponents(b Book) *components {
	c := &components{names: make(map[string]string), balances: make(map[string]Money)}
	c.add(Caixa, "Linha CAIXA", b.Caixa)
	for _, p := range b.Positions {
		if b.Cash.Has(p.Code) {
			c.add(p.Code, p.Name, p.Value)
		}
	}
	for _, m := range b.Movements {
		if b.Cash.Has(m.FundCode) {
			if _, exists := c.balances[m.FundCode]; !exists {
				c.add(m.FundCode, m.FundName, Money{})
			}
		}
	}
	return c
}

type event struct {
	movement Movement
	impact   Impact
}

// BuildCashTimeline simulates the effective cash of b one business day at a
// time from b.Today.
//
// Only movements with a settlement on or after today are simulated. Events
// settling on a weekend are reported on the next business day, so the final
// balance is always the initial effective cash plus every simulated impact.
func BuildCashTimeline(b Book, opt Options) Timeline {
	today := b.Today
	comps := seedComponents(b)
	initial := Money{}
	for _, code := range comps.codes {
		initial = initial.Add(comps.balances[code])
	}

	buckets := make(map[date.Date][]event)
	latest := today
	for _, m := range b.Movements {
		if !m.Schedulable() || m.SettleDate.Before(today) {
			continue
		}
		buckets[m.SettleDate] = append(buckets[m.SettleDate], event{m, m.Impact(b.Cash)})
		if m.SettleDate.After(latest) {
			latest = m.SettleDate
		}
	}

	horizon := date.AddDays(today, opt.HorizonBusinessDays, date.Business)
	if latest.After(horizon) {
		horizon = latest
	}
	horizon = horizon.Add(opt.HorizonPadDays)
	if next := latest.NextBusinessDay(); next.After(horizon) {
		horizon = next
	}

	opt.Logger.Debug().
		Stringer("today", today).
		Stringer("horizon", horizon).
		Int("movements", len(b.Movements)).
		Msg("building cash timeline")

	t := Timeline{Today: today, Initial: initial}
	balance := initial
	var pending []event
	var rolled []date.Date
	for d := range date.NewRange(today, horizon).Days() {
		for _, e := range buckets[d] {
			pending = append(pending, e)
			rolled = append(rolled, d)
		}
		if !d.IsBusinessDay() {
			continue
		}
		rec := TimelineRecord{Date: d, HasEvents: len(pending) > 0}
		for i, e := range pending {
			if e.impact.Cash.IsPositive() {
				rec.Inflows = rec.Inflows.Add(e.impact.Cash)
			} else {
				rec.Outflows = rec.Outflows.Add(e.impact.Cash.Neg())
			}
			for _, delta := range e.impact.Components {
				comps.apply(delta)
			}
			detail := e.movement.describe(b.Cash)
			if rolled[i] != d {
				detail = fmt.Sprintf("%s (settles %v)", detail, rolled[i])
			}
			rec.Details = append(rec.Details, detail)
		}
		rec.Net = rec.Inflows.Sub(rec.Outflows)
		balance = balance.Add(rec.Net)
		rec.Balance = balance
		rec.Negative = balance.IsNegative()
		rec.Components = comps.snapshot()
		t.Records = append(t.Records, rec)
		pending, rolled = pending[:0], rolled[:0]
	}
	return t
}
