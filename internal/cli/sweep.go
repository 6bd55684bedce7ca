package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	*RootOptions
	Database string
}

// SweepResult holds the sweep summary.
type SweepResult struct {
	Removed int64 `json:"removed"`
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SweepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired session leases",
		Long: `Delete expired lease rows. Purely storage hygiene: expired leases are
already reclaimable in place, sweeping just keeps the table small.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSweep(opts *SweepOptions, cmd *cobra.Command) error {
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

	removed, err := st.SweepExpiredLeases(cmd.Context(), time.Now())
	if err != nil {
		return WrapExitError(ExitCommandError, "sweeping leases", err)
	}
	slog.Info("leases swept", "db", opts.Database, "removed", removed)

	if formatter.Format == "json" {
		return formatter.Success(SweepResult{Removed: removed})
	}
	fmt.Fprintf(formatter.Writer, "✓ Removed %d expired lease(s)\n", removed)
	return nil
}
