package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pasteur222/quizflow/internal/engine"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Database    string
	Participant string
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz interactively from the terminal",
		Long: `Run an interactive quiz session against the database, reading answers
from stdin. Each line is delivered to the engine the same way an
inbound message would be; the loop ends when the quiz completes or
stdin closes.

Import a pack first:
  quizflow import --db ./quiz.db ./packs/default
  quizflow play --db ./quiz.db --participant demo`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Participant, "participant", "demo", "participant identifier")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	svc := engine.NewService(st)

	// First contact opens (or resumes) the session and prints the
	// current prompt.
	reply, err := svc.HandleAnswer(ctx, opts.Participant, "")
	if err != nil {
		return WrapExitError(ExitFailure, "opening session", err)
	}
	fmt.Fprintln(out, reply.Text)
	if reply.Completed {
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		reply, err = svc.HandleAnswer(ctx, opts.Participant, text)
		if err != nil {
			return WrapExitError(ExitFailure, "handling answer", err)
		}
		fmt.Fprintln(out, reply.Text)
		if reply.Completed {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "reading stdin", err)
	}

	fmt.Fprintln(out, "Session paused. Run play again to resume.")
	return nil
}
