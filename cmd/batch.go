package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/liquidity/batch"
	"github.com/google/subcommands"
)

type batchCmd struct {
	format string
	limit  int
}

func (*batchCmd) Name() string     { return "batch" }
func (*batchCmd) Synopsis() string { return "plan many portfolios concurrently" }
func (*batchCmd) Usage() string {
	return `liq batch [-format md|json|msgpack] [-limit <n>] <snapshot>...

  Runs the full analysis of every snapshot file concurrently. Each portfolio
  is named after its file and gets its own run id.
`
}

func (c *batchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", formatMarkdown, "output format: md, json or msgpack")
	f.IntVar(&c.limit, "limit", 4, "maximum number of portfolios analyzed at once")
}

func (c *batchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one snapshot file is required.")
		return subcommands.ExitUsageError
	}
	switch c.format {
	case formatMarkdown, formatJSON, formatMsgpack:
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q.\n", c.format)
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	inputs := make([]batch.Input, f.NArg())
	for i, path := range f.Args() {
		s, err := decodeSnapshot(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
			return subcommands.ExitFailure
		}
		inputs[i] = batch.Input{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), Snapshot: s}
	}

	results, err := batch.Run(ctx, inputs, a.defaults, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.format != formatMarkdown {
		if err := encodeResults(stdout, c.format, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing plans: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	r := a.renderer()
	var b strings.Builder
	for _, res := range results {
		fmt.Fprintf(&b, "# %s\n\nRun `%s` on %v.\n\n", res.Name, res.RunID, res.Today)
		b.WriteString(r.Plan(res.Plan))
		b.WriteString("\n")
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
