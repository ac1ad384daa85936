package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/liquidity/batch"
	"github.com/google/subcommands"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	formatMarkdown = "md"
	formatJSON     = "json"
	formatMsgpack  = "msgpack"
)

type planCmd struct {
	format string
	name   string
}

func (*planCmd) Name() string     { return "plan" }
func (*planCmd) Synopsis() string { return "generate the rebalancing plan of the snapshot" }
func (*planCmd) Usage() string {
	return `liq plan [-format md|json|msgpack] [-name <portfolio>]

  Covers the liabilities, redeems the overweight funds and subscribes the
  underweight ones without letting the effective cash go negative. The plan
  is validated on the cash timeline, fatal warnings mean it is not feasible.
`
}

func (c *planCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", formatMarkdown, "output format: md, json or msgpack")
	f.StringVar(&c.name, "name", "", "portfolio name reported in the output")
}

func (c *planCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	s, err := a.snapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}

	result := batch.Analyze(batch.Input{Name: c.name, Snapshot: s}, a.defaults)
	if c.format == formatMarkdown {
		printMarkdown(a.renderer().Plan(result.Plan))
		return subcommands.ExitSuccess
	}
	if err := encodeResults(stdout, c.format, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing plan: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// encodeResults writes v as indented JSON or as MessagePack.
//
// The MessagePack document is the JSON one: amounts are numbers, dates are
// strings and keys are the JSON names.
func encodeResults(w io.Writer, format string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if format == formatJSON {
		var doc json.RawMessage = raw
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(doc)
}
