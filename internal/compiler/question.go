package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/pasteur222/quizflow/internal/quiz"
)

// CompileQuestion parses a CUE value into a Question.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the question struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`question: q1: { ... }`)
//	q, err := CompileQuestion(v.LookupPath(cue.ParsePath("question.q1")))
//
// The question ID comes from the struct label.
func CompileQuestion(v cue.Value) (*quiz.Question, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	q := &quiz.Question{}

	// Question ID from the struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		q.ID = labels[len(labels)-1].String()
	}

	// text (required)
	text, err := requiredString(v, "text")
	if err != nil {
		return nil, err
	}
	q.Text = text

	// type (required)
	typ, err := requiredString(v, "type")
	if err != nil {
		return nil, err
	}
	q.Type = quiz.QuestionType(typ)

	// orderIndex (required)
	orderVal := v.LookupPath(cue.ParsePath("orderIndex"))
	if !orderVal.Exists() {
		return nil, &CompileError{
			Field:   "orderIndex",
			Message: "orderIndex is required",
			Pos:     v.Pos(),
		}
	}
	order, err := orderVal.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	q.OrderIndex = int(order)

	// required (optional, default false)
	if reqVal := v.LookupPath(cue.ParsePath("required")); reqVal.Exists() {
		required, err := reqVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		q.Required = required
	}

	// correctAnswer (optional; validation enforces the graded-only rule)
	if caVal := v.LookupPath(cue.ParsePath("correctAnswer")); caVal.Exists() {
		correct, err := caVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		q.CorrectAnswer = &correct
	}

	// points (optional, default 0)
	if ptsVal := v.LookupPath(cue.ParsePath("points")); ptsVal.Exists() {
		points, err := ptsVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		q.Points = int(points)
	}

	// options (optional)
	if optVal := v.LookupPath(cue.ParsePath("options")); optVal.Exists() {
		options, err := stringList(optVal)
		if err != nil {
			return nil, err
		}
		q.Options = options
	}

	// dependsOn / requiredValue (optional, paired)
	if depVal := v.LookupPath(cue.ParsePath("dependsOn")); depVal.Exists() {
		dependsOn, err := depVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		requiredValue := ""
		if rvVal := v.LookupPath(cue.ParsePath("requiredValue")); rvVal.Exists() {
			requiredValue, err = rvVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
		}

		q.Conditional = &quiz.ConditionalLogic{
			DependsOn:     dependsOn,
			RequiredValue: requiredValue,
		}
	}

	return q, nil
}

// requiredString looks up a field that must exist and be a string.
func requiredString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// stringList parses a CUE list of strings.
func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var values []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		values = append(values, s)
	}
	return values, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
