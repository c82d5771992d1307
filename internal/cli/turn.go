package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/carelog/internal/dispatch"
)

// TurnOptions holds flags shared by the commands that talk to a session.
type TurnOptions struct {
	*RootOptions
	SessionID string
	Week      int64
}

func (o *TurnOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.SessionID, "session", "", "session id to continue (default: new session)")
	cmd.Flags().Int64Var(&o.Week, "week", 0, "current pregnancy week (default: CARELOG_CURRENT_WEEK)")
}

// NewChatCommand creates the chat command.
func NewChatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TurnOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the journal interactively",
		Long: `Read messages from standard input, one per line, and answer each.

The session is saved after every turn, so a conversation can be resumed
later with --session. Type "quit" or "exit" to leave.

Example:
  carelog chat
  carelog chat --session 0192f0c4-... --week 12`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(opts, cmd)
		},
	}
	opts.bind(cmd)

	return cmd
}

func runChat(opts *TurnOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx, opts.RootOptions, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer closeApp(a)

	reg := a.registry()
	sess, err := reg.Get(ctx, opts.SessionID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load session", err)
	}
	uc := a.userContext(opts.Week)
	out := formatter(opts.RootOptions, cmd)
	out.SessionID = sess.ID()

	text := opts.Format != "json"
	if text {
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s. Type \"quit\" to leave.\n", sess.ID())
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if text {
			fmt.Fprint(cmd.OutOrStdout(), "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		res := sess.Handle(ctx, line, uc)
		if err := reg.Save(ctx, sess); err != nil {
			a.logger.Error("failed to save session", "session", sess.ID(), "error", err)
		}
		if err := writeResult(out, res); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return nil
}

// NewSayCommand creates the say command.
func NewSayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TurnOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "say <message>",
		Short: "Send one message",
		Long: `Handle one message and print the reply.

Without --session a new session is started and its id is printed to
standard error; pass it back with --session to answer a follow-up question.

Example:
  carelog say log weight 65kg for week 12
  carelog say --session 0192f0c4-... "tomorrow at 3pm"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSay(opts, strings.Join(args, " "), cmd)
		},
	}
	opts.bind(cmd)

	return cmd
}

func runSay(opts *TurnOptions, utterance string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx, opts.RootOptions, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer closeApp(a)

	res, id, err := a.registry().Handle(ctx, opts.SessionID, utterance, a.userContext(opts.Week))
	if id == "" {
		return WrapExitError(ExitCommandError, "failed to load session", err)
	}

	out := formatter(opts.RootOptions, cmd)
	out.SessionID = id
	if werr := writeResult(out, res); werr != nil {
		return werr
	}
	if opts.SessionID == "" && opts.Format != "json" {
		fmt.Fprintf(out.GetErrWriter(), "session: %s\n", id)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to save session", err)
	}
	return nil
}

// UndoOptions holds flags for the undo command.
type UndoOptions struct {
	*RootOptions
	SessionID string
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UndoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Reverse the last change of a session",
		Long: `Reverse the most recent create, update or delete made in a session.

Example:
  carelog undo --session 0192f0c4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUndo(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runUndo(opts *UndoOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx, opts.RootOptions, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer closeApp(a)

	reg := a.registry()
	if _, err := reg.Get(ctx, opts.SessionID); err != nil {
		return WrapExitError(ExitCommandError, "failed to load session", err)
	}
	res, err := reg.Undo(ctx, opts.SessionID)

	out := formatter(opts.RootOptions, cmd)
	out.SessionID = opts.SessionID
	if werr := writeResult(out, res); werr != nil {
		return werr
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to save session", err)
	}
	return nil
}

// writeResult prints a turn result. Text output is the reply message; JSON
// output is the whole result.
func writeResult(out *OutputFormatter, res dispatch.Result) error {
	if out.Format == "json" {
		return out.Success(res)
	}
	out.VerboseLog("intent=%s action=%s success=%t confidence=%.2f turn=%d",
		res.Intent, res.Action, res.Success, res.Confidence, res.Turn)
	return out.Success(res.Message)
}
