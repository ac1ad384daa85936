package liquidity

import (
	"github.com/etnz/liquidity/date"
	"github.com/rs/zerolog"
)

// Options tune the simulations and the planner. Use DefaultOptions and
// override the fields you need, the zero value disables every window.
type Options struct {
	// Tolerance is the noise below which gaps and allocations are ignored.
	Tolerance Money
	// ShortfallWindow is the radius, in calendar days, that associates an
	// outflow with a negative day.
	ShortfallWindow int
	// CoverageWindow is the radius, in calendar days, within which a
	// suggestion covers an outflow.
	CoverageWindow int
	// HorizonBusinessDays is the minimum timeline length after today.
	HorizonBusinessDays int
	// HorizonPadDays are calendar days simulated after the last event.
	HorizonPadDays int
	// LookaheadPadDays are calendar days the subscription scheduler looks
	// beyond the last cash event.
	LookaheadPadDays int

	Logger zerolog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Tolerance:           M(100),
		ShortfallWindow:     3,
		CoverageWindow:      1,
		HorizonBusinessDays: 5,
		HorizonPadDays:      3,
		LookaheadPadDays:    5,
		Logger:              zerolog.Nop(),
	}
}

// Book is the cash side of a portfolio as the simulations see it.
type Book struct {
	Today     date.Date
	Caixa     Money
	Positions []Position
	Movements []Movement
	Cash      CashSet
	Catalog   Catalog
}

// Book returns the book of the snapshot on today, with the given pending
// movements. Cash-equivalent codes are classified from the positions.
func (s *Snapshot) Book(today date.Date, movements []Movement) Book {
	return Book{
		Today:     today,
		Caixa:     s.Caixa,
		Positions: s.Positions,
		Movements: movements,
		Cash:      s.CashSet(),
		Catalog:   s.Catalog,
	}
}

// EffectiveCash returns CAIXA plus the cash-equivalent positions.
func (b Book) EffectiveCash() Money { return EffectiveCash(b.Caixa, b.Positions, b.Cash) }

// With returns a copy of b whose movements are extended with more.
func (b Book) With(more ...Movement) Book {
	movements := make([]Movement, 0, len(b.Movements)+len(more))
	movements = append(movements, b.Movements...)
	movements = append(movements, more...)
	b.Movements = movements
	return b
}
