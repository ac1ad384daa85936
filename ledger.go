package liquidity

import (
	"fmt"
	"maps"
	"slices"

	"github.com/etnz/liquidity/date"
)

// Fund is the planning record of one fund of the model.
type Fund struct {
	Code    string
	Name    string
	Gap     Money // positive when the fund is below target
	Balance Money // projected value that can be redeemed
	Params  LiquidationParams
	Matched bool // Params come from the catalog
	Cash    bool // cash-equivalent

	Overweight  bool
	Underweight bool
	// MaxRedemption is the model excess, zero unless overweight.
	MaxRedemption Money

	From, To Percent

	Redeemed   Money // already planned redemptions
	Subscribed Money // already planned subscriptions
}

// Remaining returns the balance not yet planned for redemption.
func (f Fund) Remaining() Money { return f.Balance.Sub(f.Redeemed) }

// Excess returns the model excess not yet planned for redemption.
func (f Fund) Excess() Money { return MaxMoney(Money{}, f.MaxRedemption.Sub(f.Redeemed)) }

// ledger is an arena of funds indexed by code. Phases never change a ledger
// they receive, they work on a copy.
type ledger struct {
	funds []Fund
	index map[string]int
}

func (l ledger) clone() ledger {
	return ledger{funds: slices.Clone(l.funds), index: l.index}
}

// fund returns the fund with the given code.
func (l ledger) fund(code string) (Fund, bool) {
	i, ok := l.index[code]
	if !ok {
		return Fund{}, false
	}
	return l.funds[i], true
}

// entry records a planned request on f and returns the plan entry.
func (f *Fund) entry(op Operation, amount Money, request, settle date.Date, reason Reason, rationale string) PlanEntry {
	source := SourceRebalancing
	if reason == ReasonLiabilityCoverage {
		source = SourceLiabilityCoverage
	}
	if op == Subscription {
		f.Subscribed = f.Subscribed.Add(amount)
	} else {
		f.Redeemed = f.Redeemed.Add(amount)
	}
	return PlanEntry{
		FundCode:    f.Code,
		FundName:    f.Name,
		Operation:   op,
		Amount:      amount,
		RequestDate: request,
		SettleDate:  settle,
		Lag:         f.Params.LagText(op),
		From:        f.From,
		To:          f.To,
		Rationale:   rationale,
		Reason:      reason,
		Source:      source,
	}
}

// buildLedger creates one fund per gap, CAIXA excluded, in gap order. Funds
// missing from the catalog settle D+0+0 in business days.
func buildLedger(gaps []Gap, catalog Catalog, cash CashSet, tolerance Money) (ledger, []Warning) {
	l := ledger{index: make(map[string]int)}
	var warnings []Warning
	matchers := catalog.Matchers()
	for _, g := range gaps {
		if g.Code == Caixa {
			continue
		}
		if _, dup := l.index[g.Code]; dup {
			continue
		}
		f := Fund{
			Code:        g.Code,
			Name:        g.Name,
			Gap:         g.Value,
			Balance:     MaxMoney(Money{}, g.Projected),
			Cash:        cash.Has(g.Code),
			Overweight:  g.Value.LessThan(tolerance.Neg()),
			Underweight: g.Value.GreaterThan(tolerance),
			From:        g.Current,
			To:          g.Target,
		}
		if f.Overweight {
			f.MaxRedemption = g.Value.Abs()
		}
		f.Params, f.Matched = matchers.Match(Query{Code: g.Code, Name: g.Name})
		if !f.Matched {
			f.Params = LiquidationParams{Code: g.Code, Name: g.Name, Convention: date.Business}
			if f.Overweight || f.Underweight {
				warnings = append(warnings, Warning{
					Level:   Advisory,
					Message: fmt.Sprintf("%s not found in the liquidation catalog, assuming D+0+0", g.Name),
				})
			}
		}
		l.index[g.Code] = len(l.funds)
		l.funds = append(l.funds, f)
	}
	return l, warnings
}

// cashEvents maps a date to the net effective cash impact settling that day.
type cashEvents map[date.Date]Money

// add returns a copy of e with amount added on d.
func (e cashEvents) add(d date.Date, amount Money) cashEvents {
	next := maps.Clone(e)
	if next == nil {
		next = make(cashEvents)
	}
	next[d] = next[d].Add(amount)
	return next
}

// cashAt returns the effective cash once every event up to d has settled.
func (e cashEvents) cashAt(initial Money, d date.Date) Money {
	total := initial
	for on, v := range e {
		if !on.After(d) {
			total = total.Add(v)
		}
	}
	return total
}

// last returns the latest event date, or the zero date.
func (e cashEvents) last() date.Date {
	var last date.Date
	for on := range e {
		if last.IsZero() || on.After(last) {
			last = on
		}
	}
	return last
}

// obligation is the total liability redemption due on a date.
type obligation struct {
	date  date.Date
	value Money
}

// baseline is the cash view of the pending movements.
type baseline struct {
	effective   Money
	events      cashEvents
	obligations []obligation // in date order
}

// newBaseline builds the cash events of the pending movements settling from
// today. Transfers between CAIXA and cash-equivalent funds add nothing.
func newBaseline(b Book) baseline {
	base := baseline{effective: b.EffectiveCash(), events: make(cashEvents)}
	due := make(map[date.Date]Money)
	for _, m := range b.Movements {
		if !m.Schedulable() || m.SettleDate.Before(b.Today) {
			continue
		}
		if m.Operation == LiabilityRedemption {
			due[m.SettleDate] = due[m.SettleDate].Add(m.Value)
		}
		if impact := m.Impact(b.Cash); !impact.Cash.IsZero() {
			base.events[m.SettleDate] = base.events[m.SettleDate].Add(impact.Cash)
		}
	}
	for _, d := range slices.SortedFunc(maps.Keys(due), date.Date.Compare) {
		base.obligations = append(base.obligations, obligation{d, due[d]})
	}
	return base
}

// candidate is a fund able to settle a redemption by an obligation date.
type candidate struct {
	index   int
	request date.Date
	settle  date.Date
}

// coverObligations redeems funds so that cash is not negative on any
// liability redemption date. Overweight funds are used first, then the
// fastest ones, then ledger order.
func coverObligations(in ledger, base baseline, today date.Date, tolerance Money) (ledger, cashEvents, []PlanEntry, []Warning) {
	l := in.clone()
	events := base.events
	var entries []PlanEntry
	var warnings []Warning

	for _, ob := range base.obligations {
		cash := events.cashAt(base.effective, ob.date)
		if !cash.IsNegative() {
			continue
		}
		need := cash.Neg()

		var candidates []candidate
		for i, f := range l.funds {
			if f.Cash || f.Remaining().LessThan(tolerance) {
				continue
			}
			request := f.Params.LatestRequest(ob.date)
			if request.Before(today) {
				continue
			}
			candidates = append(candidates, candidate{i, request, f.Params.Settlement(AssetRedemption, request)})
		}
		slices.SortStableFunc(candidates, func(a, b candidate) int {
			fa, fb := l.funds[a.index], l.funds[b.index]
			if fa.Overweight != fb.Overweight {
				if fa.Overweight {
					return -1
				}
				return 1
			}
			return fa.Params.Lag() - fb.Params.Lag()
		})

		for _, c := range candidates {
			if !need.IsPositive() {
				break
			}
			f := &l.funds[c.index]
			amount := MinMoney(need, f.Remaining())
			if excess := f.Excess(); f.Overweight && excess.IsPositive() {
				amount = MinMoney(amount, excess)
			}
			if amount.LessThan(tolerance) {
				continue
			}
			rationale := fmt.Sprintf("Liability coverage %s", ob.date.Format("02/01"))
			entries = append(entries, f.entry(AssetRedemption, amount, c.request, c.settle, ReasonLiabilityCoverage, rationale))
			events = events.add(c.settle, amount)
			need = need.Sub(amount)
		}

		if need.GreaterThan(tolerance) {
			warnings = append(warnings, Warning{
				Level: Fatal,
				Message: fmt.Sprintf("cannot cover liability redemption of %s on %v: deficit of %s",
					ob.value, ob.date, need),
			})
		}
	}
	return l, events, entries, warnings
}

// redeemExcess redeems today what overweight funds still hold above the model.
func redeemExcess(in ledger, events cashEvents, today date.Date, tolerance Money) (ledger, cashEvents, []PlanEntry) {
	l := in.clone()
	var entries []PlanEntry
	for i := range l.funds {
		f := &l.funds[i]
		if !f.Overweight {
			continue
		}
		amount := MinMoney(f.Excess(), f.Remaining())
		if amount.LessThan(tolerance) {
			continue
		}
		settle := f.Params.Settlement(AssetRedemption, today)
		entries = append(entries, f.entry(AssetRedemption, amount, today, settle, ReasonRebalancing, "Rebalancing (above model)"))
		if !f.Cash {
			events = events.add(settle, amount)
		}
	}
	return l, events, entries
}

// dailyCash is the projected effective cash on consecutive business days.
type dailyCash struct {
	days []date.Date
	cash []Money
}

// newDailyCash projects events over the business days from today to the last
// event plus pad calendar days. Weekend events count on the next business day.
func newDailyCash(initial Money, events cashEvents, today date.Date, pad int) dailyCash {
	last := today
	if l := events.last(); l.After(last) {
		last = l
	}
	end := last.Add(pad)
	if next := last.NextBusinessDay(); next.After(end) {
		end = next
	}
	var dc dailyCash
	running := initial
	for d := range date.NewRange(today, end).Days() {
		running = running.Add(events[d])
		if d.IsBusinessDay() {
			dc.days = append(dc.days, d)
			dc.cash = append(dc.cash, running)
		}
	}
	return dc
}

// available returns the cash of each day net of the planned outflows
// requested up to that day.
func (dc dailyCash) available(planned cashEvents) []Money {
	out := make([]Money, len(dc.days))
	for i, d := range dc.days {
		out[i] = dc.cash[i].Sub(planned.cashAt(Money{}, d))
	}
	return out
}

// slot finds when to subscribe gap. It returns the earliest day whose cash,
// and every later day's, covers the full gap. Otherwise it returns the day
// allowing the largest amount that keeps every later day positive, the
// earliest one on ties.
func (dc dailyCash) slot(planned cashEvents, gap Money) (int, Money, bool) {
	avail := dc.available(planned)
	if len(avail) == 0 {
		return 0, Money{}, false
	}
	// floor[i] is the lowest available cash from day i on.
	floor := make([]Money, len(avail))
	floor[len(avail)-1] = avail[len(avail)-1]
	for i := len(avail) - 2; i >= 0; i-- {
		floor[i] = MinMoney(avail[i], floor[i+1])
	}
	for i := range avail {
		if floor[i].GreaterThanOrEqual(gap) {
			return i, gap, true
		}
	}
	best, amount := -1, Money{}
	for i := range avail {
		a := MinMoney(gap, avail[i], floor[i])
		if best < 0 || a.GreaterThan(amount) {
			best, amount = i, a
		}
	}
	return best, amount, best >= 0
}

// subscribeUnderweight subscribes the funds below the model. Cash-equivalent
// funds are subscribed today, the others on the earliest day cash allows.
func subscribeUnderweight(in ledger, effective Money, events cashEvents, today date.Date, opt Options) (ledger, []PlanEntry, []Warning) {
	l := in.clone()
	dc := newDailyCash(effective, events, today, opt.LookaheadPadDays)

	var order []int
	for i, f := range l.funds {
		if f.Underweight {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		fa, fb := l.funds[a], l.funds[b]
		if fa.Cash != fb.Cash {
			if fa.Cash {
				return -1
			}
			return 1
		}
		return fb.Gap.Cmp(fa.Gap)
	})

	planned := make(cashEvents)
	var entries []PlanEntry
	var warnings []Warning
	for _, i := range order {
		f := &l.funds[i]
		gap := f.Gap.Sub(f.Subscribed)
		if gap.LessThan(opt.Tolerance) {
			continue
		}
		if f.Cash {
			settle := f.Params.Settlement(Subscription, today)
			entries = append(entries, f.entry(Subscription, gap, today, settle, ReasonSubscription, "Rebalancing (below model)"))
			continue
		}
		day, amount, ok := dc.slot(planned, gap)
		if !ok || amount.LessThan(opt.Tolerance) {
			warnings = append(warnings, Warning{
				Level:   Advisory,
				Message: fmt.Sprintf("no cash available to subscribe %s into %s", gap, f.Name),
			})
			continue
		}
		request := dc.days[day]
		settle := f.Params.Settlement(Subscription, request)
		entries = append(entries, f.entry(Subscription, amount, request, settle, ReasonSubscription, "Rebalancing (below model)"))
		planned = planned.add(request, amount)
		if amount.LessThan(gap) {
			warnings = append(warnings, Warning{
				Level:   Advisory,
				Message: fmt.Sprintf("partial subscription of %s into %s, %s left unscheduled", amount, f.Name, gap.Sub(amount)),
			})
		}
	}
	return l, entries, warnings
}
