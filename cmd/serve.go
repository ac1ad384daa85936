package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/liquidity/api"
	"github.com/etnz/liquidity/date"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the liquidity API over HTTP" }
func (*serveCmd) Usage() string {
	return `liq serve [-addr <host:port>]

  Serves the JSON API until interrupted. The address and the allowed CORS
  origins come from the [server] configuration.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address, overrides the configured host and port")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	addr := c.addr
	if addr == "" {
		addr = a.config.Server.Addr()
	}
	// each request uses its own current day unless -today is set
	defaults := a.defaults
	if *todayFlag == "" {
		defaults.Today = date.Date{}
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(api.NewHandler(defaults), a.config.Server.AllowedOrigins, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", addr).Msg("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Msg("server failed")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error().Err(err).Msg("server forced to shutdown")
			return subcommands.ExitFailure
		}
	}
	a.log.Info().Msg("server stopped")
	return subcommands.ExitSuccess
}
