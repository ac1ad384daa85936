package liquidity

import (
	"strings"
	"testing"

	"github.com/etnz/liquidity/date"
)

func TestAdherence(t *testing.T) {
	b := Book{
		Today: date.New(2024, 1, 2),
		Caixa: M(500),
		Positions: []Position{
			{Code: "A", Name: "FUND A", Value: M(5000)},
			{Code: "B", Name: "FUND B LONG NAME", Value: M(3000)},
			{Code: "DI", Name: "FIC DI", Value: M(1000), Strategy: "CAIXA"},
			{Code: "OUT", Name: "LEGACY FUND", Value: M(450)},
			{Code: "TINY", Name: "DUST", Value: M(50)},
		},
		Movements: []Movement{
			{FundCode: "A", Operation: AssetRedemption, Value: M(1000), SettleDate: date.New(2024, 1, 4)},
		},
	}
	targets := []Target{
		{Code: "A", Name: "FUND A", Percent: 40},
		{Code: "B-CODE", Name: "FUND B LONG NAME XX", Percent: 25},
		{Code: "DI", Name: "FIC DI", Percent: 10},
	}
	r := Adherence(b, targets)

	if !r.Total.Equal(M(10000)) || !r.Caixa.Equal(M(1500)) {
		t.Fatalf("Adherence() total %v caixa %v, want 10000 and 1500", r.Total, r.Caixa)
	}
	tests := []struct {
		code      string
		projected Money
		current   Percent
		target    Percent
		value     Money
	}{
		{"A", M(4000), 40, 40, M(0)},
		{"B-CODE", M(3000), 30, 25, M(-500)},
		{"DI", M(1000), 10, 10, M(0)},
		{"OUT", M(450), 4.5, 0, M(-450)},
		{Caixa, M(1500), 15, 25, M(1000)},
	}
	if len(r.Gaps) != len(tests) {
		t.Fatalf("Adherence() = %d gaps, want %d", len(r.Gaps), len(tests))
	}
	for i, tt := range tests {
		g := r.Gaps[i]
		if g.Code != tt.code || !g.Projected.Equal(tt.projected) || !g.Current.Equal(tt.current) || !g.Target.Equal(tt.target) || !g.Value.Equal(tt.value) {
			t.Errorf("Gaps[%d] = %s %v %v -> %v gap %v, want %s %v %v -> %v gap %v",
				i, g.Code, g.Projected, g.Current, g.Target, g.Value, tt.code, tt.projected, tt.current, tt.target, tt.value)
		}
	}

	if got := r.Gaps[0].Action; got != "OK" {
		t.Errorf("Gaps[0].Action = %q, want OK", got)
	}
	if got := r.Gaps[1].Action; !strings.HasPrefix(got, "Redeem ") {
		t.Errorf("Gaps[1].Action = %q, want a redemption", got)
	}
	if g := r.Gaps[3]; !g.OutOfModel || !strings.Contains(g.Action, "out of model") {
		t.Errorf("Gaps[3] = %+v, want out of model", g)
	}
	if got := r.Gaps[4].Action; got != "Deficit" {
		t.Errorf("CAIXA action = %q, want Deficit", got)
	}
	if !r.ToRedeem.Equal(M(950)) || !r.ToSubscribe.IsZero() {
		t.Errorf("ToRedeem = %v, ToSubscribe = %v, want 950 and 0", r.ToRedeem, r.ToSubscribe)
	}
	if got := len(r.Funds()); got != 4 {
		t.Errorf("Funds() = %d gaps, want 4", got)
	}
}

func TestAdherenceUnnamedPosition(t *testing.T) {
	b := Book{
		Today:     date.New(2024, 1, 2),
		Positions: []Position{{Code: "A", Value: M(9000)}},
	}
	r := Adherence(b, []Target{{Code: "NEW", Name: "BRAND NEW FUND", Percent: 50}})

	if len(r.Gaps) != 3 {
		t.Fatalf("Adherence() = %d gaps, want NEW, A and CAIXA", len(r.Gaps))
	}
	if g := r.Gaps[0]; g.Code != "NEW" || !g.Projected.IsZero() || !g.Value.Equal(M(4500)) {
		t.Errorf("Gaps[0] = %s projected %v gap %v, want NEW projected 0 gap 4500", g.Code, g.Projected, g.Value)
	}
	if g := r.Gaps[1]; g.Code != "A" || !g.OutOfModel || !g.Value.Equal(M(-9000)) {
		t.Errorf("Gaps[1] = %+v, want A out of model with gap -9000", g)
	}
}

func TestPrefixMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"FUND B LONG NAME XX", "fund b long name", true},
		{"ALPHA", "ALPHA FIC FI", true},
		{"ALPHA", "BETA", false},
		{"", "ALPHA", false},
		{"ALPHA", "  ", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := prefixMatch(tt.a, tt.b, namePrefixLen); got != tt.want {
			t.Errorf("prefixMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
