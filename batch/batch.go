// Package batch runs the liquidity analysis of one or many portfolios.
package batch

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/liquidity"
	"github.com/etnz/liquidity/date"
	"github.com/etnz/liquidity/provision"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Defaults complete the snapshots that lack a catalog or a today.
type Defaults struct {
	Catalog liquidity.Catalog
	Today   date.Date
	Options liquidity.Options
}

// Input is one portfolio to analyze.
type Input struct {
	Name     string              `json:"name"`
	Snapshot *liquidity.Snapshot `json:"snapshot"`
}

// Result is the analysis of one portfolio.
type Result struct {
	RunID     uuid.UUID                 `json:"run_id"`
	Name      string                    `json:"name"`
	Today     date.Date                 `json:"today"`
	Advice    liquidity.Advice          `json:"advice"`
	Adherence liquidity.AdherenceReport `json:"adherence"`
	Plan      liquidity.Plan            `json:"plan"`
}

// Book returns the book of s: its own catalog or the default one, its today
// or the default one, and its pending movements followed by the movements
// extracted from its provisions.
func Book(s *liquidity.Snapshot, d Defaults) liquidity.Book {
	movements := slices.Concat(s.Movements, provision.Extract(s.Provisions, s.Positions))
	b := s.Book(s.On(d.Today), movements)
	if len(b.Catalog) == 0 {
		b.Catalog = d.Catalog
	}
	return b
}

// Analyze runs the advisor, the adherence analysis and the planner on one
// portfolio.
func Analyze(in Input, d Defaults) Result {
	id := uuid.New()
	opt := d.Options
	opt.Logger = opt.Logger.With().Str("run_id", id.String()).Str("portfolio", in.Name).Logger()

	b := Book(in.Snapshot, d)
	adherence := liquidity.Adherence(b, in.Snapshot.Targets)
	r := Result{
		RunID:     id,
		Name:      in.Name,
		Today:     b.Today,
		Advice:    liquidity.SuggestRequestDates(b, opt),
		Adherence: adherence,
		Plan:      liquidity.GenerateRebalancingPlan(b, adherence.Funds(), opt),
	}
	opt.Logger.Info().
		Int("entries", len(r.Plan.Entries)).
		Bool("feasible", r.Plan.Feasible()).
		Msg("portfolio analyzed")
	return r
}

// Run analyzes inputs concurrently, at most limit at a time when limit is
// positive. Results are in input order. Runs share no state, the first
// invalid input cancels the others.
func Run(ctx context.Context, inputs []Input, d Defaults, limit int) ([]Result, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	results := make([]Result, len(inputs))
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if in.Snapshot == nil {
				return fmt.Errorf("portfolio %d (%s): missing snapshot", i, in.Name)
			}
			results[i] = Analyze(in, d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
