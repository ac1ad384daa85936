package liquidity

import (
	"testing"

	"github.com/etnz/liquidity/date"
)

func testCatalog() Catalog {
	return Catalog{
		{Code: "111", PortfolioID: "P-1", Alias: "ALPHA DI", Name: "ALPHA FIC FI RF DI"},
		{Code: "222", PortfolioID: "P-2", Alias: "BETA MULTI", Name: "BETA FIC FIM",
			RedemptionConversionDays: 1, RedemptionSettlementDays: 2, SubscriptionConversionDays: 1},
		{Code: "333", Name: "GAMMA ACOES",
			RedemptionConversionDays: 3, RedemptionSettlementDays: 2, Convention: date.Calendar},
	}
}

func TestMatchLiquidationParams(t *testing.T) {
	catalog := testCatalog()
	tests := []struct {
		name      string
		code      string
		fund      string
		wantOK    bool
		wantAlias string
	}{
		{"anbima code", "222", "", true, "BETA MULTI"},
		{"portfolio id trimmed", " P-1 ", "", true, "ALPHA DI"},
		{"code wins over name", "111", "BETA MULTI", true, "ALPHA DI"},
		{"exact alias", "999", "beta multi", true, "BETA MULTI"},
		{"exact name", "", " gamma acoes ", true, ""},
		{"substring of catalog name", "", "BETA FIC FIM LONGO PRAZO", true, "BETA MULTI"},
		{"alias column first", "", "ALPHA FIC FI RF DI + BETA MULTI", true, "BETA MULTI"},
		{"query inside catalog name", "", "GAMMA ACO", true, ""},
		{"short names never fuzzy", "", "ALPHA", false, ""},
		{"empty catalog names never match", "", "XYZXYZ", false, ""},
		{"ticker", "", "petr4", true, "PETR4"},
		{"ticker from code", "BOVA11", "", true, "BOVA11"},
		{"not a ticker", "", "PETR", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchLiquidationParams(catalog, tt.code, tt.fund)
			if ok != tt.wantOK {
				t.Fatalf("MatchLiquidationParams(%q, %q) ok = %v, want %v", tt.code, tt.fund, ok, tt.wantOK)
			}
			if ok && got.Alias != tt.wantAlias {
				t.Errorf("MatchLiquidationParams(%q, %q) = %q, want %q", tt.code, tt.fund, got.Alias, tt.wantAlias)
			}
		})
	}
}

func TestTickerMatcher(t *testing.T) {
	got, ok := TickerMatcher().Match(Query{Name: " bova11 "})
	if !ok {
		t.Fatal("TickerMatcher().Match(bova11) ok = false")
	}
	want := LiquidationParams{Alias: "BOVA11", Name: "BOVA11", RedemptionSettlementDays: 2, Convention: date.Business, Category: TickerCategory}
	if got != want {
		t.Errorf("TickerMatcher().Match(bova11) = %+v, want %+v", got, want)
	}
	for _, s := range []string{"PETR", "PETR123", "PET4", "12PETR4"} {
		if IsTicker(s) {
			t.Errorf("IsTicker(%q) = true, want false", s)
		}
	}
}

func TestChainStopsAtFirstMatch(t *testing.T) {
	var calls []string
	matcher := func(name string, ok bool) Matcher {
		return MatcherFunc(func(q Query) (LiquidationParams, bool) {
			calls = append(calls, name)
			return LiquidationParams{Alias: name}, ok
		})
	}
	got, ok := Chain{matcher("a", false), matcher("b", true), matcher("c", true)}.Match(Query{})
	if !ok || got.Alias != "b" {
		t.Errorf("Chain.Match() = %q, %v, want b, true", got.Alias, ok)
	}
	if len(calls) != 2 {
		t.Errorf("Chain.Match() called %v, want [a b]", calls)
	}
}

func TestSettlement(t *testing.T) {
	catalog := testCatalog()
	request := date.New(2024, 1, 2)
	tests := []struct {
		params LiquidationParams
		op     Operation
		want   date.Date
	}{
		{catalog[1], AssetRedemption, date.New(2024, 1, 5)},
		{catalog[1], Subscription, date.New(2024, 1, 3)},
		{catalog[1], GenericDebit, request},
		{catalog[2], AssetRedemption, date.New(2024, 1, 7)},
		{catalog[0], AssetRedemption, request},
	}
	for _, tt := range tests {
		if got := tt.params.Settlement(tt.op, request); got != tt.want {
			t.Errorf("%s.Settlement(%v, %v) = %v, want %v", tt.params.Alias, tt.op, request, got, tt.want)
		}
	}
	if got := catalog[1].LagText(AssetRedemption); got != "D+1+2 (business)" {
		t.Errorf("LagText() = %q", got)
	}
}

func TestCashEquivalents(t *testing.T) {
	positions := []Position{
		{Code: "111", Name: "ALPHA FIC FI RF DI", Value: M(200), Strategy: "Caixa"},
		{Code: "222", Name: "BETA FIC FIM", Value: M(1000), Strategy: "Multimercado"},
		{Code: "444", Name: "DELTA SIMPLES", Value: M(50), Strategy: "PÓS-FIXADO / CAIXA"},
	}
	set, funds := CashEquivalents(positions, testCatalog())
	if !set.Has("111") || !set.Has("444") || set.Has("222") || set.Has("") {
		t.Errorf("CashEquivalents() set = %v", set)
	}
	if len(funds) != 2 {
		t.Fatalf("CashEquivalents() funds = %v, want 2", funds)
	}
	if !funds[0].CatalogMatched || funds[1].CatalogMatched {
		t.Errorf("CashEquivalents() matched = %v, %v, want true, false", funds[0].CatalogMatched, funds[1].CatalogMatched)
	}
	if got := EffectiveCash(M(1000), positions, set); !got.Equal(M(1250)) {
		t.Errorf("EffectiveCash() = %v, want 1250", got)
	}
}
