package date

import (
	"fmt"
	"strings"
	"time"
)

// Convention is the day-count convention used to offset dates.
type Convention int

const (
	// Business counts only Monday to Friday. Holidays are not modeled.
	Business Convention = iota
	// Calendar counts every day.
	Calendar
)

func (c Convention) String() string {
	switch c {
	case Business:
		return "business"
	case Calendar:
		return "calendar"
	default:
		panic(fmt.Sprintf("unknown convention %d", c))
	}
}

// ParseConvention parses a convention name. Fund administrators write "Úteis"
// and "Corridos", both are accepted. Anything unknown resolves to Business.
func ParseConvention(s string) Convention {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "calendar", "corridos", "corrido":
		return Calendar
	default:
		return Business
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Convention) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Convention) UnmarshalText(text []byte) error {
	*c = ParseConvention(string(text))
	return nil
}

// IsBusinessDay reports whether d is a weekday.
func (d Date) IsBusinessDay() bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextBusinessDay returns d if it is a business day, or the following Monday.
func (d Date) NextBusinessDay() Date {
	for !d.IsBusinessDay() {
		d = d.Add(1)
	}
	return d
}

// AddDays offsets start by n days forward under convention c.
//
// With Business, it steps one calendar day at a time and counts only weekdays
// until n of them have been counted, so the result is always a business day
// when n > 0. n <= 0 returns start unchanged.
func AddDays(start Date, n int, c Convention) Date {
	if n <= 0 {
		return start
	}
	if c == Calendar {
		return start.Add(n)
	}
	current := start
	for added := 0; added < n; {
		current = current.Add(1)
		if current.IsBusinessDay() {
			added++
		}
	}
	return current
}

// SubtractDays is the mirror of AddDays, stepping backward.
//
// For a business day d, AddDays(SubtractDays(d, n, c), n, c) == d and
// SubtractDays(AddDays(d, n, c), n, c) == d. A weekend d under Business snaps
// to the nearest business day in the stepping direction, so the identity does
// not hold there.
func SubtractDays(end Date, n int, c Convention) Date {
	if n <= 0 {
		return end
	}
	if c == Calendar {
		return end.Add(-n)
	}
	current := end
	for subtracted := 0; subtracted < n; {
		current = current.Add(-1)
		if current.IsBusinessDay() {
			subtracted++
		}
	}
	return current
}

// SettleDate computes when money from a request becomes available:
// request, then conversion after conv days, then settlement after liq days.
func SettleDate(request Date, conv, liq int, c Convention) Date {
	conversion := AddDays(request, conv, c)
	return AddDays(conversion, liq, c)
}

// LatestRequestDate is the inverse of SettleDate: the latest request date
// that settles on target. A weekend target resolves to the business day
// settlement following it.
func LatestRequestDate(target Date, conv, liq int, c Convention) Date {
	preSettlement := SubtractDays(target, liq, c)
	return SubtractDays(preSettlement, conv, c)
}
