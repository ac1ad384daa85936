package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/liquidity"
	"github.com/google/subcommands"
)

type cashFundsCmd struct{}

func (*cashFundsCmd) Name() string     { return "cash-funds" }
func (*cashFundsCmd) Synopsis() string { return "list the cash-equivalent funds of the snapshot" }
func (*cashFundsCmd) Usage() string {
	return `liq cash-funds

  Lists the positions tagged CAIXA with their settlement parameters.
`
}

func (c *cashFundsCmd) SetFlags(f *flag.FlagSet) {}

func (c *cashFundsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	_, b, err := a.book()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	_, funds := liquidity.CashEquivalents(b.Positions, b.Catalog)
	printMarkdown(a.renderer().CashFunds(funds))
	return subcommands.ExitSuccess
}

type timelineCmd struct{}

func (*timelineCmd) Name() string     { return "timeline" }
func (*timelineCmd) Synopsis() string { return "simulate the effective cash day by day" }
func (*timelineCmd) Usage() string {
	return `liq timeline

  Simulates the effective cash (CAIXA plus cash-equivalent funds) one
  business day at a time, applying the pending movements as they settle.
`
}

func (c *timelineCmd) SetFlags(f *flag.FlagSet) {}

func (c *timelineCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	_, b, err := a.book()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(a.renderer().Timeline(liquidity.BuildCashTimeline(b, a.defaults.Options)))
	return subcommands.ExitSuccess
}

type adviseCmd struct{}

func (*adviseCmd) Name() string     { return "advise" }
func (*adviseCmd) Synopsis() string { return "suggest earlier request dates for cash shortfalls" }
func (*adviseCmd) Usage() string {
	return `liq advise

  Finds the days the effective cash goes negative and suggests which
  redemptions to request earlier to cover them.
`
}

func (c *adviseCmd) SetFlags(f *flag.FlagSet) {}

func (c *adviseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	_, b, err := a.book()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(a.renderer().Advice(liquidity.SuggestRequestDates(b, a.defaults.Options)))
	return subcommands.ExitSuccess
}

type adherenceCmd struct{}

func (*adherenceCmd) Name() string     { return "adherence" }
func (*adherenceCmd) Synopsis() string { return "compare the portfolio with its target model" }
func (*adherenceCmd) Usage() string {
	return `liq adherence

  Compares every fund, once the pending movements are applied, with its
  target weight.
`
}

func (c *adherenceCmd) SetFlags(f *flag.FlagSet) {}

func (c *adherenceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	s, b, err := a.book()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(a.renderer().Adherence(liquidity.Adherence(b, s.Targets)))
	return subcommands.ExitSuccess
}

type projectCmd struct{}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "project position values at each settlement date" }
func (*projectCmd) Usage() string {
	return `liq project

  Shows the value and weight of each position after the movements settled
  by each settlement date.
`
}

func (c *projectCmd) SetFlags(f *flag.FlagSet) {}

func (c *projectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	_, b, err := a.book()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(a.renderer().Projection(liquidity.Project(b.Positions, b.Caixa, b.Movements)))
	return subcommands.ExitSuccess
}
