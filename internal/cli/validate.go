package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pasteur222/quizflow/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	Questions int                        `json:"questions"`
	Rules     int                        `json:"rules"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <pack-dir>",
		Short: "Validate a question pack without importing it",
		Long: `Validate CUE question and rule definitions without touching a database.

Performs syntax checking and schema validation (question types, scoring
fields, conditional visibility ordering, rule patterns and time windows)
and reports every finding with its error code.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, packDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, loadErrors := compiler.LoadPack(packDir, compiler.LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if result == nil && len(loadErrors) > 0 {
		var loadErr *compiler.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCommandError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCommandError(formatter, compiler.ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, packDir)

	validationErrors := compiler.ValidatePack(result.Questions, result.Rules)

	// Compile errors from loading report alongside validation findings
	for _, err := range loadErrors {
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
			})
		} else {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: err.Error(),
				Code:    compiler.ErrCodeGeneric,
			})
		}
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, result, validationErrors)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:     true,
			Questions: len(result.Questions),
			Rules:     len(result.Rules),
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Pack valid: %d question(s), %d rule(s)\n",
		len(result.Questions), len(result.Rules))
	return nil
}

// outputCommandError reports a command-level failure (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors reports validation findings (exit code 1).
func outputValidationErrors(formatter *OutputFormatter, result *compiler.PackResult, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		_ = formatter.Success(ValidationResult{
			Valid:     false,
			Questions: len(result.Questions),
			Rules:     len(result.Rules),
			Errors:    errs,
		})
	} else {
		fmt.Fprintf(formatter.Writer, "✗ Pack invalid: %d error(s)\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
