package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/liquidity"
	"github.com/google/subcommands"
)

type matchCmd struct {
	code string
	name string
}

func (*matchCmd) Name() string     { return "match" }
func (*matchCmd) Synopsis() string { return "look a fund up in the liquidation catalog" }
func (*matchCmd) Usage() string {
	return `liq match [-code <code>] [-name <name>]

  Resolves the settlement parameters of a fund by code, exact name, name
  substring or ticker. The catalog is -catalog, or the one of the snapshot.
`
}

func (c *matchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "fund code (ANBIMA, portfolio id or alias)")
	f.StringVar(&c.name, "name", "", "fund name")
}

func (c *matchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.code == "" && c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -code or -name is required.")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	catalog := a.defaults.Catalog
	if len(catalog) == 0 {
		s, err := a.snapshot()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
			return subcommands.ExitFailure
		}
		catalog = s.Catalog
	}

	p, ok := liquidity.MatchLiquidationParams(catalog, c.code, c.name)
	if !ok {
		fmt.Fprintln(stdout, "no match, the fund settles on its request date (D+0+0)")
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(stdout, "%s %s: redemption %s, subscription %s\n",
		p.Code, p.Name, p.LagText(liquidity.AssetRedemption), p.LagText(liquidity.Subscription))
	return subcommands.ExitSuccess
}
