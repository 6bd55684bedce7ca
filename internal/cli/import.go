package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pasteur222/quizflow/internal/compiler"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// ImportResult holds the import summary.
type ImportResult struct {
	Questions int `json:"questions"`
	Rules     int `json:"rules"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <pack-dir>",
		Short: "Compile a pack and upsert it into the database",
		Long: `Compile and validate a CUE pack, then upsert its questions and rules
into the SQLite database (creating it if it doesn't exist).

The import is an upsert: re-running it after editing the pack updates
rows in place. An invalid pack imports nothing.

Example:
  quizflow import --db ./quiz.db ./packs/default`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, packDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	result, loadErrors := compiler.LoadPack(packDir, compiler.LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *compiler.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCommandError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCommandError(formatter, compiler.ErrCodeGeneric, loadErrors[0].Error())
	}

	if validationErrors := compiler.ValidatePack(result.Questions, result.Rules); len(validationErrors) > 0 {
		return outputValidationErrors(formatter, result, validationErrors)
	}

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
	for _, q := range result.Questions {
		if err := st.PutQuestion(ctx, q); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("importing question %q", q.ID), err)
		}
		formatter.VerboseLog("Imported question %s (orderIndex %d)", q.ID, q.OrderIndex)
	}
	for _, r := range result.Rules {
		if err := st.PutRule(ctx, r); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("importing rule %q", r.ID), err)
		}
		formatter.VerboseLog("Imported rule %s (priority %d)", r.ID, r.Priority)
	}

	slog.Info("pack imported", "db", opts.Database,
		"questions", len(result.Questions), "rules", len(result.Rules))

	if formatter.Format == "json" {
		return formatter.Success(ImportResult{
			Questions: len(result.Questions),
			Rules:     len(result.Rules),
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Imported %d question(s) and %d rule(s) into %s\n",
		len(result.Questions), len(result.Rules), opts.Database)
	return nil
}
