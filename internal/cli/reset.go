package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pasteur222/quizflow/internal/engine"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Database    string
	Participant string
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset a participant's active session",
		Long: `Administrator reset: zero the participant's active session in place
(index, score, answers) without waiting for the participant to send a
restart keyword. Fails if the participant has no active session.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Participant, "participant", "", "participant identifier (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("participant")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) error {
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

	svc := engine.NewService(st)
	if err := svc.AdminResetSession(cmd.Context(), opts.Participant); err != nil {
		if engine.IsSessionNotFound(err) {
			return outputCommandError(formatter,
				string(engine.ErrCodeSessionNotFound),
				fmt.Sprintf("no active session for participant %q", opts.Participant))
		}
		return WrapExitError(ExitFailure, "resetting session", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"participant": opts.Participant, "reset": true})
	}
	fmt.Fprintf(formatter.Writer, "✓ Session reset for %s\n", opts.Participant)
	return nil
}
