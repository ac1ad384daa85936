package date

import (
	"testing"
	"time"
)

func TestAddDays(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		n     int
		c     Convention
		want  Date
	}{
		{"zero is a no-op", New(2024, 1, 6), 0, Business, New(2024, 1, 6)},
		{"tuesday +2", New(2024, 1, 2), 2, Business, New(2024, 1, 4)},
		{"friday +1 skips weekend", New(2024, 1, 5), 1, Business, New(2024, 1, 8)},
		{"saturday +1", New(2024, 1, 6), 1, Business, New(2024, 1, 8)},
		{"friday +1 calendar", New(2024, 1, 5), 1, Calendar, New(2024, 1, 6)},
		{"month end", New(2024, 1, 31), 3, Business, New(2024, 2, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddDays(tt.start, tt.n, tt.c); got != tt.want {
				t.Errorf("AddDays(%v, %d, %v) = %v, want %v", tt.start, tt.n, tt.c, got, tt.want)
			}
		})
	}
}

func TestSubtractDays(t *testing.T) {
	tests := []struct {
		name string
		end  Date
		n    int
		c    Convention
		want Date
	}{
		{"zero is a no-op", New(2024, 1, 7), 0, Business, New(2024, 1, 7)},
		{"monday -1 skips weekend", New(2024, 1, 8), 1, Business, New(2024, 1, 5)},
		{"sunday -1", New(2024, 1, 7), 1, Business, New(2024, 1, 5)},
		{"monday -1 calendar", New(2024, 1, 8), 1, Calendar, New(2024, 1, 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubtractDays(tt.end, tt.n, tt.c); got != tt.want {
				t.Errorf("SubtractDays(%v, %d, %v) = %v, want %v", tt.end, tt.n, tt.c, got, tt.want)
			}
		})
	}
}

// TestInverse checks both compositions on every business day of a quarter
// and on every day for the calendar convention.
func TestInverse(t *testing.T) {
	days := NewRange(New(2024, 1, 1), New(2024, 3, 31))
	for _, c := range []Convention{Business, Calendar} {
		for d := range days.Days() {
			if c == Business && !d.IsBusinessDay() {
				continue
			}
			for n := 0; n <= 12; n++ {
				if got := SubtractDays(AddDays(d, n, c), n, c); got != d {
					t.Errorf("SubtractDays(AddDays(%v, %d, %v)) = %v", d, n, c, got)
				}
				if got := AddDays(SubtractDays(d, n, c), n, c); got != d {
					t.Errorf("AddDays(SubtractDays(%v, %d, %v)) = %v", d, n, c, got)
				}
			}
		}
	}
}

// TestInverseWeekendBoundary documents the Business convention on weekends:
// a Saturday round trip lands on the Friday before.
func TestInverseWeekendBoundary(t *testing.T) {
	sat := New(2024, 1, 6)
	if got := SubtractDays(AddDays(sat, 1, Business), 1, Business); got != New(2024, 1, 5) {
		t.Errorf("SubtractDays(AddDays(sat, 1)) = %v, want 2024-01-05", got)
	}
	if got := AddDays(SubtractDays(sat, 1, Business), 1, Business); got != New(2024, 1, 8) {
		t.Errorf("AddDays(SubtractDays(sat, 1)) = %v, want 2024-01-08", got)
	}
	// n == 0 keeps the weekend day.
	if got := SubtractDays(AddDays(sat, 0, Business), 0, Business); got != sat {
		t.Errorf("round trip with n=0 = %v, want %v", got, sat)
	}
}

func TestSettleDate(t *testing.T) {
	// D+0 conversion, D+2 settlement from Tuesday 2024-01-02.
	got := SettleDate(New(2024, time.January, 2), 0, 2, Business)
	if want := New(2024, time.January, 4); got != want {
		t.Errorf("SettleDate() = %v, want %v", got, want)
	}
}

func TestSettleLatestRequestInverse(t *testing.T) {
	days := NewRange(New(2024, 1, 1), New(2024, 2, 29))
	for d := range days.BusinessDays() {
		for conv := 0; conv <= 5; conv++ {
			for liq := 0; liq <= 5; liq++ {
				settle := SettleDate(d, conv, liq, Business)
				if got := LatestRequestDate(settle, conv, liq, Business); got != d {
					t.Errorf("LatestRequestDate(SettleDate(%v, %d, %d)) = %v", d, conv, liq, got)
				}
				latest := LatestRequestDate(d, conv, liq, Business)
				if got := SettleDate(latest, conv, liq, Business); got != d {
					t.Errorf("SettleDate(LatestRequestDate(%v, %d, %d)) = %v", d, conv, liq, got)
				}
			}
		}
	}
}

func TestLatestRequestDateOnWeekendTarget(t *testing.T) {
	// Target Sunday 2024-01-07 with D+0+1 gives Friday, whose settlement is
	// the next business day after the target: Monday 2024-01-08.
	got := LatestRequestDate(New(2024, 1, 7), 0, 1, Business)
	if want := New(2024, 1, 5); got != want {
		t.Errorf("LatestRequestDate() = %v, want %v", got, want)
	}
	if settle := SettleDate(got, 0, 1, Business); settle != New(2024, 1, 8) {
		t.Errorf("SettleDate(%v) = %v, want 2024-01-08", got, settle)
	}
}

func TestParseConvention(t *testing.T) {
	for in, want := range map[string]Convention{
		"Úteis":    Business,
		"business": Business,
		"Corridos": Calendar,
		"calendar": Calendar,
		"":         Business,
		"whatever": Business,
	} {
		if got := ParseConvention(in); got != want {
			t.Errorf("ParseConvention(%q) = %v, want %v", in, got, want)
		}
	}
}
