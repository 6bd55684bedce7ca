package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pasteur222/quizflow/internal/quiz"
	"github.com/pasteur222/quizflow/internal/rules"
)

// Validation error codes (E100-E199). E104 is retired: correctAnswer
// is optional on graded types, and a graded question without one is
// survey-style, collecting answers unscored.
const (
	// Question errors (E101-E110)
	ErrQuestionTextEmpty     = "E101" // text is required
	ErrQuestionInvalidType   = "E102" // unknown question type
	ErrCorrectAnswerUngraded = "E103" // correctAnswer on a non-graded type
	ErrNegativePoints        = "E105" // points must be non-negative
	ErrOptionsMismatch       = "E106" // options required iff preference, at least two
	ErrDuplicateOrderIndex   = "E107" // two questions share an orderIndex
	ErrDanglingDependency    = "E108" // dependsOn references a missing question
	ErrForwardDependency     = "E109" // dependsOn must point at a smaller orderIndex
	ErrDependencyCycle       = "E110" // dependency chain loops

	// Rule errors (E111-E119)
	ErrRuleNoPatterns    = "E111" // rule has no trigger patterns
	ErrRuleInvalidRegex  = "E112" // regex pattern does not compile
	ErrRuleRegexArity    = "E113" // regex rules carry exactly one pattern
	ErrRuleResponseEmpty = "E114" // response is required
	ErrRuleInvalidWindow = "E115" // time window does not parse
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidatePack validates a compiled pack against schema rules.
// Returns all errors found (does not fail-fast).
func ValidatePack(questions []quiz.Question, ruleSet []rules.ResponseRule) []ValidationError {
	var errs []ValidationError

	byID := make(map[string]quiz.Question, len(questions))
	orderSeen := make(map[int]string, len(questions))

	for _, q := range questions {
		byID[q.ID] = q
		errs = append(errs, validateQuestion(q)...)

		// E107: duplicate orderIndex breaks the deterministic prompt
		// order
		if other, dup := orderSeen[q.OrderIndex]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("question.%s.orderIndex", q.ID),
				Message: fmt.Sprintf("orderIndex %d already used by %q", q.OrderIndex, other),
				Code:    ErrDuplicateOrderIndex,
			})
		} else {
			orderSeen[q.OrderIndex] = q.ID
		}
	}

	for _, q := range questions {
		errs = append(errs, validateDependency(q, byID)...)
	}
	errs = append(errs, detectDependencyCycles(questions)...)

	for _, r := range ruleSet {
		errs = append(errs, validateRule(r)...)
	}

	return errs
}

// validateQuestion checks one question in isolation.
func validateQuestion(q quiz.Question) []ValidationError {
	var errs []ValidationError
	field := func(name string) string { return fmt.Sprintf("question.%s.%s", q.ID, name) }

	// E101: text is required
	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, ValidationError{
			Field:   field("text"),
			Message: "text is required and must be non-empty",
			Code:    ErrQuestionTextEmpty,
		})
	}

	// E102: type must be one of the four known types
	if !quiz.ValidQuestionTypes[q.Type] {
		errs = append(errs, ValidationError{
			Field:   field("type"),
			Message: fmt.Sprintf("unknown question type %q", q.Type),
			Code:    ErrQuestionInvalidType,
		})
		return errs // type-dependent checks are meaningless now
	}

	// E103: correctAnswer only makes sense on graded types. The reverse
	// is legal: a graded question without one collects answers unscored.
	if !q.Type.Graded() && q.CorrectAnswer != nil {
		errs = append(errs, ValidationError{
			Field:   field("correctAnswer"),
			Message: fmt.Sprintf("%s questions cannot declare correctAnswer", q.Type),
			Code:    ErrCorrectAnswerUngraded,
		})
	}

	// E105: points must be non-negative
	if q.Points < 0 {
		errs = append(errs, ValidationError{
			Field:   field("points"),
			Message: fmt.Sprintf("points must be non-negative, got %d", q.Points),
			Code:    ErrNegativePoints,
		})
	}

	// E106: options exactly when the type offers choices
	if q.Type == quiz.TypePreference {
		if len(q.Options) < 2 {
			errs = append(errs, ValidationError{
				Field:   field("options"),
				Message: "preference questions need at least two options",
				Code:    ErrOptionsMismatch,
			})
		}
	} else if len(q.Options) > 0 {
		errs = append(errs, ValidationError{
			Field:   field("options"),
			Message: fmt.Sprintf("%s questions cannot declare options", q.Type),
			Code:    ErrOptionsMismatch,
		})
	}

	return errs
}

// validateDependency checks a question's conditional reference.
//
// The target must exist and sit strictly earlier in the prompt order:
// a forward reference could never be answered before the dependent
// question is reached, so the dependent could never become visible.
func validateDependency(q quiz.Question, byID map[string]quiz.Question) []ValidationError {
	if q.Conditional == nil {
		return nil
	}
	field := fmt.Sprintf("question.%s.dependsOn", q.ID)

	target, exists := byID[q.Conditional.DependsOn]
	if !exists {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("references unknown question %q", q.Conditional.DependsOn),
			Code:    ErrDanglingDependency,
		}}
	}

	if target.OrderIndex >= q.OrderIndex {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("%q (orderIndex %d) must come before %q (orderIndex %d)", target.ID, target.OrderIndex, q.ID, q.OrderIndex),
			Code:    ErrForwardDependency,
		}}
	}

	return nil
}

// validateRule checks one response rule in isolation.
func validateRule(r rules.ResponseRule) []ValidationError {
	var errs []ValidationError
	field := func(name string) string { return fmt.Sprintf("rule.%s.%s", r.ID, name) }

	// E111: patterns must be non-empty
	if len(r.TriggerPatterns) == 0 {
		errs = append(errs, ValidationError{
			Field:   field("patterns"),
			Message: "at least one trigger pattern is required",
			Code:    ErrRuleNoPatterns,
		})
	}

	if r.UsesRegex {
		// E113: a regex rule is a single pattern
		if len(r.TriggerPatterns) > 1 {
			errs = append(errs, ValidationError{
				Field:   field("patterns"),
				Message: fmt.Sprintf("regex rules take exactly one pattern, got %d", len(r.TriggerPatterns)),
				Code:    ErrRuleRegexArity,
			})
		}
		// E112: the pattern must compile
		if len(r.TriggerPatterns) > 0 {
			if _, err := regexp.Compile(r.TriggerPatterns[0]); err != nil {
				errs = append(errs, ValidationError{
					Field:   field("patterns"),
					Message: fmt.Sprintf("invalid regex: %v", err),
					Code:    ErrRuleInvalidRegex,
				})
			}
		}
	}

	// E114: response is required
	if strings.TrimSpace(r.Response) == "" {
		errs = append(errs, ValidationError{
			Field:   field("response"),
			Message: "response is required and must be non-empty",
			Code:    ErrRuleResponseEmpty,
		})
	}

	// E115: the window must parse
	if r.Window != nil {
		if err := r.Window.Validate(); err != nil {
			errs = append(errs, ValidationError{
				Field:   field("window"),
				Message: err.Error(),
				Code:    ErrRuleInvalidWindow,
			})
		}
	}

	return errs
}
