package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/carelog/internal/server"
)

// evictInterval is how often idle sessions are saved and dropped.
const evictInterval = time.Minute

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP",
		Long: `Start the HTTP chat API.

Sessions are kept in memory and saved to the configured store after every
turn. When CARELOG_REDIS_ADDR is set, snapshots are cached in Redis in front
of the store. Idle sessions are dropped from memory after
CARELOG_SESSION_IDLE_SECONDS.

Example:
  carelog serve
  carelog serve --addr 127.0.0.1:9000 --store postgres`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default: CARELOG_HTTP_ADDR)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, opts.RootOptions, cmd, slog.LevelInfo)
	if err != nil {
		return err
	}
	defer closeApp(a)

	addr := opts.Addr
	if addr == "" {
		addr = a.cfg.HTTPAddr
	}

	reg := a.registry()
	srv := server.New(reg, a.catalog, a.cfg.CurrentWeek, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, addr)
	})
	g.Go(func() error {
		return reg.Run(gctx, evictInterval, a.cfg.SessionIdle)
	})

	err = g.Wait()

	// Save every live session before the stores close.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reg.Evict(flushCtx, 0)

	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "server error", err)
	}
	a.logger.Info("server stopped")
	return nil
}
