package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

// NewSessionsCommand creates the sessions command group.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and prune saved sessions",
		Long: `Inspect and prune the session snapshots kept in the SQLite store.

Example:
  carelog sessions list
  carelog sessions purge --older-than 720h`,
	}

	cmd.AddCommand(newSessionsListCommand(rootOpts))
	cmd.AddCommand(newSessionsPurgeCommand(rootOpts))

	return cmd
}

func newSessionsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List saved sessions, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, err := openApp(ctx, opts, cmd, slog.LevelWarn)
			if err != nil {
				return err
			}
			defer closeApp(a)
			if a.sqlite == nil {
				return NewExitError(ExitCommandError, "sessions requires the sqlite store")
			}

			infos, err := a.sqlite.ListSessions(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to list sessions", err)
			}

			if opts.Format == "json" {
				return formatter(opts, cmd).Success(infos)
			}
			w := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintln(w, "No sessions.")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(w, "%s  %s\n", info.ID, info.UpdatedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func newSessionsPurgeCommand(opts *RootOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:           "purge",
		Short:         "Delete sessions not updated recently",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return NewExitError(ExitCommandError, "--older-than must be positive")
			}
			ctx := commandContext(cmd)
			a, err := openApp(ctx, opts, cmd, slog.LevelWarn)
			if err != nil {
				return err
			}
			defer closeApp(a)
			if a.sqlite == nil {
				return NewExitError(ExitCommandError, "sessions requires the sqlite store")
			}

			n, err := a.sqlite.PurgeSessions(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return WrapExitError(ExitFailure, "failed to purge sessions", err)
			}

			if opts.Format == "json" {
				return formatter(opts, cmd).Success(map[string]int64{"purged": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d session(s).\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "purge sessions idle for longer than this")

	return cmd
}
