package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/carelog/internal/classifier"
)

// ClassifyResult is the JSON payload of the classify command.
type ClassifyResult struct {
	Result classifier.Result  `json:"result"`
	Scores []classifier.Score `json:"scores,omitempty"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <message>",
		Short: "Show which intent a message maps to",
		Long: `Classify a message without acting on it.

Prints the winning intent and its confidence. With --verbose every intent's
raw score is listed as well.

Example:
  carelog classify "i weigh 65 kg"
  carelog classify --verbose "move my checkup to monday"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(rootOpts, strings.Join(args, " "), cmd)
		},
	}

	return cmd
}

func runClassify(opts *RootOptions, utterance string, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	c := classifier.New(cat, newLogger(cmd.ErrOrStderr(), opts.Verbose, slog.LevelWarn))
	res := c.Classify(utterance)
	out := formatter(opts, cmd)

	if opts.Format == "json" {
		payload := ClassifyResult{Result: res}
		if opts.Verbose {
			payload.Scores = c.Scores(utterance)
		}
		return out.Success(payload)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "intent: %s\n", res.Intent)
	fmt.Fprintf(w, "confidence: %.2f\n", res.Confidence)
	if res.Override {
		fmt.Fprintln(w, "override: true")
	}
	if opts.Verbose {
		fmt.Fprintln(w, "scores:")
		for _, s := range c.Scores(utterance) {
			fmt.Fprintf(w, "  %-22s %.3f\n", s.Intent, s.Score)
		}
	}
	return nil
}

// NewIntentsCommand creates the intents command.
func NewIntentsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intents",
		Short: "List the intents of the catalog",
		Long: `List every intent with its action, record category and required details.

Example:
  carelog intents
  carelog intents --catalog ./intents.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntents(rootOpts, cmd)
		},
	}

	return cmd
}

func runIntents(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return formatter(opts, cmd).Success(cat.Intents())
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INTENT\tACTION\tCATEGORY\tREQUIRED")
	for _, d := range cat.Intents() {
		category := string(d.Category)
		if category == "" {
			category = "-"
		}
		required := strings.Join(d.Required, ", ")
		if required == "" {
			required = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.Action, category, required)
	}
	return tw.Flush()
}
