package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pasteur222/quizflow/internal/compiler"
	"github.com/pasteur222/quizflow/internal/rules"
)

// ConflictsResult holds the conflict report.
type ConflictsResult struct {
	Rules     int              `json:"rules"`
	Conflicts []rules.Conflict `json:"conflicts"`
}

// NewConflictsCommand creates the conflicts command.
func NewConflictsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts <pack-dir>",
		Short: "Report conflicting response rules in a pack",
		Long: `Run pairwise conflict detection over the response rules of a pack.

Flags keyword overlap, near-identical rules at the same priority, and
regex rules that fire on the same probe messages. Findings are
diagnostics for the administrator; nothing is merged or removed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConflicts(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runConflicts(opts *RootOptions, packDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, loadErrors := compiler.LoadPack(packDir, compiler.LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *compiler.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCommandError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCommandError(formatter, compiler.ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Checking %d rule(s) for conflicts", len(result.Rules))
	conflicts := rules.DetectConflicts(result.Rules)

	if formatter.Format == "json" {
		if err := formatter.Success(ConflictsResult{Rules: len(result.Rules), Conflicts: conflicts}); err != nil {
			return err
		}
	} else if len(conflicts) == 0 {
		fmt.Fprintf(formatter.Writer, "✓ No conflicts among %d rule(s)\n", len(result.Rules))
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %d conflict(s) among %d rule(s)\n", len(conflicts), len(result.Rules))
		for _, c := range conflicts {
			fmt.Fprintf(formatter.Writer, "  [%s] %s / %s: %s (%s)\n", c.Severity, c.RuleA, c.RuleB, c.Detail, c.Kind)
		}
	}

	if len(conflicts) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d rule conflict(s) detected", len(conflicts)))
	}
	return nil
}
