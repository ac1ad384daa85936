package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/liquidity/date"
	"github.com/google/subcommands"
)

type settleCmd struct {
	conv       int
	liq        int
	convention string
	latest     bool
}

func (*settleCmd) Name() string     { return "settle" }
func (*settleCmd) Synopsis() string { return "compute settlement or latest request dates" }
func (*settleCmd) Usage() string {
	return `liq settle [-conv <days>] [-liq <days>] [-convention business|calendar] [-latest] <date>...

  Prints when a request made on each date settles, D+conv+liq.
  With -latest, each date is a target and the latest request date settling
  by it is printed instead.
`
}

func (c *settleCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.conv, "conv", 0, "conversion days")
	f.IntVar(&c.liq, "liq", 0, "settlement days after conversion")
	f.StringVar(&c.convention, "convention", "business", "day counting: business (Úteis) or calendar (Corridos)")
	f.BoolVar(&c.latest, "latest", false, "dates are targets, print the latest request dates")
}

func (c *settleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one date is required.")
		return subcommands.ExitUsageError
	}
	if c.conv < 0 || c.liq < 0 {
		fmt.Fprintln(os.Stderr, "Error: -conv and -liq cannot be negative.")
		return subcommands.ExitUsageError
	}
	convention := date.ParseConvention(c.convention)
	for _, arg := range f.Args() {
		d, err := date.Parse(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		if c.latest {
			fmt.Fprintf(stdout, "%v: request by %v (D+%d+%d %s)\n", d, date.LatestRequestDate(d, c.conv, c.liq, convention), c.conv, c.liq, convention)
		} else {
			fmt.Fprintf(stdout, "%v: settles on %v (D+%d+%d %s)\n", d, date.SettleDate(d, c.conv, c.liq, convention), c.conv, c.liq, convention)
		}
	}
	return subcommands.ExitSuccess
}
