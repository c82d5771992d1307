package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Catalog is a CUE intent catalog that replaces the built-in one.
	Catalog string
	// EnvFile is read before the environment. Empty means ".env".
	EnvFile string
	// Store and Database override CARELOG_STORE and CARELOG_DB.
	Store    string
	Database string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the carelog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "carelog",
		Short: "carelog - conversational pregnancy health journal",
		Long: `A command engine that turns short messages into journal actions.

Messages such as "log weight 65kg for week 12" or "move my checkup on friday
to monday" are classified, their details are collected over follow-up
questions, and the resulting records are stored. Every change can be undone.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "CUE intent catalog (default: built-in)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env", "", "environment file (default: .env)")
	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "record store: sqlite|postgres|memory")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite database path")

	cmd.AddCommand(NewChatCommand(opts))
	cmd.AddCommand(NewSayCommand(opts))
	cmd.AddCommand(NewUndoCommand(opts))
	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewIntentsCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
