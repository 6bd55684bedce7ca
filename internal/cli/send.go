package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pasteur222/quizflow/internal/engine"
)

// SendOptions holds flags for the send command.
type SendOptions struct {
	*RootOptions
	Database    string
	Participant string
}

// SendResult holds the reply to one inbound message.
type SendResult struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Completed bool   `json:"completed"`
}

// NewSendCommand creates the send command.
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Deliver one participant message and print the reply",
		Long: `Deliver a single inbound message to the quiz engine, exactly as the
message router would: the participant's session is resumed or created,
the answer is validated and committed, and the next prompt (or the
completion summary) comes back.

Example:
  quizflow send --db ./quiz.db --participant +242061234567 "Vrai"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Participant, "participant", "", "participant identifier (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("participant")

	return cmd
}

func runSend(opts *SendOptions, message string, cmd *cobra.Command) error {
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
	reply, err := svc.HandleAnswer(cmd.Context(), opts.Participant, message)
	if err != nil {
		return WrapExitError(ExitFailure, "handling message", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(SendResult{
			SessionID: reply.SessionID,
			Reply:     reply.Text,
			Completed: reply.Completed,
		})
	}
	fmt.Fprintln(formatter.Writer, reply.Text)
	return nil
}
