package liquidity

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/etnz/liquidity/date"
)

// LiquidationParams are the settlement parameters of a fund.
type LiquidationParams struct {
	Code        string `json:"code"`         // ANBIMA code
	PortfolioID string `json:"portfolio_id"` // administrator portfolio id
	Alias       string `json:"alias"`
	Name        string `json:"name"`

	RedemptionConversionDays   int             `json:"redemption_conversion_days"`
	RedemptionSettlementDays   int             `json:"redemption_settlement_days"`
	Convention                 date.Convention `json:"convention"`
	SubscriptionConversionDays int             `json:"subscription_conversion_days"`
	Category                   string          `json:"category,omitempty"`
}

// Lag returns the total redemption delay in days.
func (p LiquidationParams) Lag() int { return p.RedemptionConversionDays + p.RedemptionSettlementDays }

// LagText formats the delay of op the way administrators do, "D+1+2 (business)".
func (p LiquidationParams) LagText(op Operation) string {
	if op == Subscription {
		return fmt.Sprintf("D+%d", p.SubscriptionConversionDays)
	}
	return fmt.Sprintf("D+%d+%d (%s)", p.RedemptionConversionDays, p.RedemptionSettlementDays, p.Convention)
}

// Settlement returns when a request of op on the given date settles.
//
// Subscriptions only convert, always counted in business days.
func (p LiquidationParams) Settlement(op Operation, request date.Date) date.Date {
	switch op {
	case AssetRedemption:
		return date.SettleDate(request, p.RedemptionConversionDays, p.RedemptionSettlementDays, p.Convention)
	case Subscription:
		return date.SettleDate(request, p.SubscriptionConversionDays, 0, date.Business)
	default:
		return request
	}
}

// LatestRequest returns the latest redemption request date that settles by target.
func (p LiquidationParams) LatestRequest(target date.Date) date.Date {
	return date.LatestRequestDate(target, p.RedemptionConversionDays, p.RedemptionSettlementDays, p.Convention)
}

// Catalog is the ordered table of liquidation parameters. Order matters: the
// fuzzy matchers return the first entry found.
type Catalog []LiquidationParams

// Query identifies a fund to look up.
type Query struct {
	Code string
	Name string
}

// Matcher resolves a query against the catalog it was built for.
type Matcher interface {
	Match(q Query) (LiquidationParams, bool)
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(q Query) (LiquidationParams, bool)

func (f MatcherFunc) Match(q Query) (LiquidationParams, bool) { return f(q) }

// Chain tries each matcher in turn and stops at the first success.
type Chain []Matcher

func (c Chain) Match(q Query) (LiquidationParams, bool) {
	for _, m := range c {
		if p, ok := m.Match(q); ok {
			return p, true
		}
	}
	return LiquidationParams{}, false
}

// Matchers returns the default chain for the catalog: code, exact name,
// substring, then ticker.
func (c Catalog) Matchers() Chain {
	return Chain{CodeMatcher(c), ExactNameMatcher(c), SubstringMatcher(c), TickerMatcher()}
}

// Match resolves q with the default chain.
func (c Catalog) Match(q Query) (LiquidationParams, bool) { return c.Matchers().Match(q) }

// MatchLiquidationParams resolves the settlement parameters of a fund by code
// and/or name. ok is false when nothing matched, which is not an error.
func MatchLiquidationParams(c Catalog, code, name string) (p LiquidationParams, ok bool) {
	return c.Match(Query{Code: code, Name: name})
}

func normalize(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// CodeMatcher matches the code exactly against the ANBIMA code, then the portfolio id.
func CodeMatcher(c Catalog) Matcher {
	return MatcherFunc(func(q Query) (LiquidationParams, bool) {
		code := strings.TrimSpace(q.Code)
		if code == "" {
			return LiquidationParams{}, false
		}
		for _, field := range []func(LiquidationParams) string{
			func(p LiquidationParams) string { return p.Code },
			func(p LiquidationParams) string { return p.PortfolioID },
		} {
			for _, p := range c {
				if strings.TrimSpace(field(p)) == code {
					return p, true
				}
			}
		}
		return LiquidationParams{}, false
	})
}

// nameFields are scanned in order by the name matchers.
var nameFields = []func(LiquidationParams) string{
	func(p LiquidationParams) string { return p.Alias },
	func(p LiquidationParams) string { return p.Name },
}

// ExactNameMatcher matches the name case-insensitively against the alias, then the name.
func ExactNameMatcher(c Catalog) Matcher {
	return MatcherFunc(func(q Query) (LiquidationParams, bool) {
		name := normalize(q.Name)
		if name == "" {
			return LiquidationParams{}, false
		}
		for _, field := range nameFields {
			for _, p := range c {
				if normalize(field(p)) == name {
					return p, true
				}
			}
		}
		return LiquidationParams{}, false
	})
}

// minSubstringLen is the length a query name must exceed to be matched by substring.
const minSubstringLen = 5

// SubstringMatcher returns the first entry whose alias, then name, contains
// the query name or is contained in it. Short names are never matched this way.
func SubstringMatcher(c Catalog) Matcher {
	return MatcherFunc(func(q Query) (LiquidationParams, bool) {
		name := normalize(q.Name)
		if utf8.RuneCountInString(name) <= minSubstringLen {
			return LiquidationParams{}, false
		}
		for _, field := range nameFields {
			for _, p := range c {
				candidate := normalize(field(p))
				if candidate == "" {
					continue
				}
				if strings.Contains(candidate, name) || strings.Contains(name, candidate) {
					return p, true
				}
			}
		}
		return LiquidationParams{}, false
	})
}

var tickerRE = regexp.MustCompile(`^[A-Z]{4}\d{1,2}$`)

// IsTicker reports whether s looks like a B3 stock or ETF ticker (PETR4, BOVA11).
func IsTicker(s string) bool { return tickerRE.MatchString(normalize(s)) }

// TickerCategory is the category of entries synthesized for exchange tickers.
const TickerCategory = "Ação/ETF B3"

// TickerMatcher synthesizes D+0 conversion, D+2 settlement parameters for
// names that look like exchange tickers. The code is used when the name is empty.
func TickerMatcher() Matcher {
	return MatcherFunc(func(q Query) (LiquidationParams, bool) {
		check := q.Name
		if strings.TrimSpace(check) == "" {
			check = q.Code
		}
		if !IsTicker(check) {
			return LiquidationParams{}, false
		}
		ticker := normalize(check)
		return LiquidationParams{
			Alias:                    ticker,
			Name:                     ticker,
			RedemptionSettlementDays: 2,
			Convention:               date.Business,
			Category:                 TickerCategory,
		}, true
	})
}
