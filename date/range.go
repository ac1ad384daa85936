package date

import (
	"fmt"
	"iter"
)

// Range represents a range of dates.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Around returns the range of calendar days within radius days of d.
func Around(d Date, radius int) Range {
	return NewRange(d.Add(-radius), d.Add(radius))
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return (!date.Before(r.From) && !date.After(r.To)) }

// Days returns an iterator that yields each date within the range, inclusive.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// BusinessDays returns an iterator that yields each weekday within the range, inclusive.
func (r Range) BusinessDays() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := range r.Days() {
			if !d.IsBusinessDay() {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
