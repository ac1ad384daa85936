package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/liquidity"
	"github.com/etnz/liquidity/batch"
	"github.com/etnz/liquidity/config"
	"github.com/etnz/liquidity/date"
	"github.com/etnz/liquidity/renderer"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile   = flag.String("config", "liq.toml", "Path to the TOML configuration file")
	snapshotFile = flag.String("snapshot", "snapshot.json", "Path to the portfolio snapshot (JSON), - for stdin")
	catalogFile  = flag.String("catalog", "", "Path to a liquidation catalog (JSON) for snapshots without one")
	catalogPath  = flag.String("catalog-path", "", "jsonpath selecting the catalog rows inside the catalog file, e.g. $.data.funds")
	todayFlag    = flag.String("today", "", "Simulation start for snapshots without a date, defaults to the current day")
	verbose      = flag.Bool("v", false, "Log every planner phase")
)

// stdout is where commands print their report.
var stdout io.Writer = os.Stdout

// app is what every command shares: the configuration, the logger and the
// defaults of a run.
type app struct {
	config   *config.Config
	log      zerolog.Logger
	defaults batch.Defaults
}

// newApp loads the configuration and the default catalog from the global flags.
func newApp() (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	log := config.NewLogger(cfg.Logging, os.Stderr)

	a := &app{config: cfg, log: log}
	a.defaults.Options = cfg.PlannerOptions(log)
	a.defaults.Today = date.Today()
	if *todayFlag != "" {
		if a.defaults.Today, err = date.Parse(*todayFlag); err != nil {
			return nil, fmt.Errorf("invalid -today: %w", err)
		}
	}
	if *catalogFile != "" {
		if a.defaults.Catalog, err = decodeCatalog(*catalogFile, *catalogPath); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// renderer returns a markdown renderer in the configured currency.
func (a *app) renderer() *renderer.Renderer { return renderer.New(a.config.Currency) }

// snapshot decodes the snapshot given by -snapshot.
func (a *app) snapshot() (*liquidity.Snapshot, error) { return decodeSnapshot(*snapshotFile) }

// book decodes the snapshot and returns its book.
func (a *app) book() (*liquidity.Snapshot, liquidity.Book, error) {
	s, err := a.snapshot()
	if err != nil {
		return nil, liquidity.Book{}, err
	}
	return s, batch.Book(s, a.defaults), nil
}

func decodeSnapshot(path string) (*liquidity.Snapshot, error) {
	if path == "-" {
		return liquidity.DecodeSnapshot(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := liquidity.DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func decodeCatalog(path, selector string) (liquidity.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := liquidity.DecodeCatalog(f, selector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// printMarkdown prints md, rendered for the terminal when stdout is one.
func printMarkdown(md string) {
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if out, err := glamour.Render(md, "auto"); err == nil {
			md = out
		}
	}
	fmt.Fprint(stdout, md)
}
