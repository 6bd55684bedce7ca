package compiler

import (
	"cuelang.org/go/cue"

	"github.com/pasteur222/quizflow/internal/rules"
)

// CompileRule parses a CUE value into a ResponseRule.
//
// The CUE value should be the rule struct itself; the rule ID comes
// from the struct label:
//
//	rule: greeting: {
//		patterns: ["bonjour", "salut"]
//		priority: 5
//		response: "Bonjour !"
//	}
func CompileRule(v cue.Value) (*rules.ResponseRule, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	r := &rules.ResponseRule{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		r.ID = labels[len(labels)-1].String()
	}

	// patterns (required, non-empty checked by validation)
	patternsVal := v.LookupPath(cue.ParsePath("patterns"))
	if !patternsVal.Exists() {
		return nil, &CompileError{
			Field:   "patterns",
			Message: "patterns is required",
			Pos:     v.Pos(),
		}
	}
	patterns, err := stringList(patternsVal)
	if err != nil {
		return nil, err
	}
	r.TriggerPatterns = patterns

	// useRegex (optional, default false)
	if regexVal := v.LookupPath(cue.ParsePath("useRegex")); regexVal.Exists() {
		useRegex, err := regexVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		r.UsesRegex = useRegex
	}

	// priority (optional, default 0)
	if prioVal := v.LookupPath(cue.ParsePath("priority")); prioVal.Exists() {
		priority, err := prioVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		r.Priority = int(priority)
	}

	// response (required)
	response, err := requiredString(v, "response")
	if err != nil {
		return nil, err
	}
	r.Response = response

	// window (optional)
	if winVal := v.LookupPath(cue.ParsePath("window")); winVal.Exists() {
		start, err := requiredString(winVal, "start")
		if err != nil {
			return nil, err
		}
		end, err := requiredString(winVal, "end")
		if err != nil {
			return nil, err
		}
		r.Window = &rules.TimeWindow{Start: start, End: end}
	}

	return r, nil
}
