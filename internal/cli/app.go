package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/carelog/internal/catalog"
	"github.com/roach88/carelog/internal/chatreply"
	"github.com/roach88/carelog/internal/config"
	"github.com/roach88/carelog/internal/dispatch"
	"github.com/roach88/carelog/internal/engine"
	"github.com/roach88/carelog/internal/pgstore"
	"github.com/roach88/carelog/internal/records"
	"github.com/roach88/carelog/internal/sessioncache"
	"github.com/roach88/carelog/internal/store"
)

// app is the wired process: configuration, catalog, record store and
// session persistence.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	catalog   *catalog.Catalog
	records   records.Store
	snapshots engine.SnapshotStore

	// sqlite is set when records live in SQLite; session administration
	// needs it.
	sqlite *store.Store

	closers []func() error
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Store != "" {
		cfg.Store = opts.Store
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}
	if opts.Catalog != "" {
		cfg.CatalogPath = opts.Catalog
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// loadCatalog returns the CUE catalog at path, or the built-in catalog when
// path is empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadCUE(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	return cat, nil
}

// newLogger writes text logs to w. Verbose lowers the level to debug.
func newLogger(w io.Writer, verbose bool, level slog.Level) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openApp wires the configured stores. The caller must Close the app.
func openApp(ctx context.Context, opts *RootOptions, cmd *cobra.Command, level slog.Level) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  newLogger(cmd.ErrOrStderr(), opts.Verbose, level),
		catalog: cat,
	}

	switch cfg.Store {
	case config.StoreMemory:
		a.records = records.NewMemory(time.Now)
	case config.StoreSQLite:
		a.logger.Debug("opening database", "path", cfg.DBPath)
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		a.records, a.snapshots, a.sqlite = st, st, st
		a.closers = append(a.closers, st.Close)
	case config.StorePostgres:
		a.logger.Debug("connecting to postgres")
		pg, err := pgstore.Connect(ctx, cfg.PostgresDSN, time.Now)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to connect to postgres", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, WrapExitError(ExitCommandError, "failed to migrate postgres", err)
		}
		a.records, a.snapshots = pg, pg
		a.closers = append(a.closers, func() error {
			pg.Close()
			return nil
		})
	}

	if cfg.RedisAddr != "" {
		cache := sessioncache.NewRedisStore(cfg.RedisAddr, "", 0, sessioncache.WithTTL(cfg.SessionTTL))
		a.closers = append(a.closers, cache.Close)
		if err := cache.Ping(ctx); err != nil {
			_ = a.Close()
			return nil, WrapExitError(ExitCommandError, "failed to reach redis", err)
		}
		if a.snapshots == nil {
			a.snapshots = cache
		} else {
			a.snapshots = engine.Tiered{Cache: cache, Durable: a.snapshots, Logger: a.logger}
		}
	}

	return a, nil
}

// registry builds a session registry over the app's stores.
func (a *app) registry() *engine.Registry {
	return engine.NewRegistry(engine.Deps{
		Catalog:   a.catalog,
		Store:     a.records,
		Responder: chatreply.New(a.cfg.ChatURL, a.cfg.ChatTimeout),
		Logger:    a.logger,
		Now:       time.Now,
	}, a.snapshots)
}

// userContext returns the turn context, preferring week when set.
func (a *app) userContext(week int64) dispatch.UserContext {
	if week < 1 {
		week = a.cfg.CurrentWeek
	}
	return dispatch.UserContext{CurrentWeek: week}
}

// Close releases the stores in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// closeApp closes a and logs a failure.
func closeApp(a *app) {
	if err := a.Close(); err != nil {
		a.logger.Error("error closing stores", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// formatter builds the output formatter for a command.
func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
