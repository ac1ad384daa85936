// Command liq plans the liquidity of fund portfolios.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/liquidity/cmd"
	"github.com/etnz/liquidity/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors of the flags whose values can be listed.
var predictors = map[string]complete.Predictor{
	"config":     predict.Files("*.toml"),
	"snapshot":   predict.Files("*.json"),
	"catalog":    predict.Files("*.json"),
	"format":     predict.Set{"md", "json", "msgpack"},
	"convention": predict.Set{"business", "calendar"},
}

// completion describes the command line of liq for shell completion.
func completion() *complete.Command {
	flags := func(fs *flag.FlagSet) map[string]complete.Predictor {
		m := make(map[string]complete.Predictor)
		fs.VisitAll(func(f *flag.Flag) {
			if p, ok := predictors[f.Name]; ok {
				m[f.Name] = p
			} else if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
				m[f.Name] = predict.Nothing
			} else {
				m[f.Name] = predict.Something
			}
		})
		return m
	}
	root := &complete.Command{
		Flags: flags(flag.CommandLine),
		Sub:   make(map[string]*complete.Command),
	}
	for _, c := range cmd.Commands() {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		sub := &complete.Command{Flags: flags(fs)}
		switch c.Name() {
		case "batch":
			sub.Args = predict.Files("*.json")
		case "topic":
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(append(topics, "readme"))
		}
		root.Sub[c.Name()] = sub
	}
	return root
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	completion().Complete("liq")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
