package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/pasteur222/quizflow/internal/rules"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Database string
}

// MatchReport holds the outcome of matching one message.
type MatchReport struct {
	Matched     bool     `json:"matched"`
	RuleID      string   `json:"rule_id,omitempty"`
	Response    string   `json:"response,omitempty"`
	Confidence  float64  `json:"confidence,omitempty"`
	Conflicting []string `json:"conflicting,omitempty"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <message>",
		Short: "Show which response rule a message would trigger",
		Long: `Run a message through the response-rule matcher and report the
selected rule, its confidence, and any runner-up rules close enough to
be ambiguous. A diagnostic for tuning rule priorities.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runMatch(opts *MatchOptions, message string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ruleSet, err := st.ListRules(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "loading rules", err)
	}
	formatter.VerboseLog("Matching against %d rule(s)", len(ruleSet))

	result := rules.Match(message, ruleSet, time.Now())

	report := MatchReport{Matched: result.Rule != nil}
	if result.Rule != nil {
		report.RuleID = result.Rule.ID
		report.Response = result.Rule.Response
		report.Confidence = result.Confidence
		for _, r := range result.Conflicting {
			report.Conflicting = append(report.Conflicting, r.ID)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	if !report.Matched {
		fmt.Fprintln(formatter.Writer, "No rule matches.")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "Rule %s (confidence %.2f): %s\n", report.RuleID, report.Confidence, report.Response)
	for _, id := range report.Conflicting {
		fmt.Fprintf(formatter.Writer, "  also close: %s\n", id)
	}
	return nil
}
