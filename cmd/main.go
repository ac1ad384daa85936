// Package cmd implements the liq command line application.
package cmd

import "github.com/google/subcommands"

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&settleCmd{}, "dates")
	c.Register(&matchCmd{}, "dates")

	c.Register(&cashFundsCmd{}, "analysis")
	c.Register(&timelineCmd{}, "analysis")
	c.Register(&adviseCmd{}, "analysis")
	c.Register(&adherenceCmd{}, "analysis")
	c.Register(&projectCmd{}, "analysis")

	c.Register(&planCmd{}, "planning")
	c.Register(&batchCmd{}, "planning")

	c.Register(&serveCmd{}, "server")
	c.Register(&topicCmd{}, "help")
}

// Commands lists the registered subcommands, for shell completion.
func Commands() []subcommands.Command {
	return []subcommands.Command{
		&settleCmd{}, &matchCmd{},
		&cashFundsCmd{}, &timelineCmd{}, &adviseCmd{}, &adherenceCmd{}, &projectCmd{},
		&planCmd{}, &batchCmd{},
		&serveCmd{}, &topicCmd{},
	}
}
