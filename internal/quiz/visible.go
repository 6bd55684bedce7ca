package quiz

import "sort"

// VisibleQuestions filters the question pack down to the questions a
// session should currently see, ordered by (OrderIndex, ID). A question
// with conditional logic is visible only when its referenced question
// has an answer whose canonical value equals the required value.
//
// The result is recomputed from scratch on every call. Visibility
// depends on the answer set, so callers must never cache it across
// answer submissions.
func VisibleQuestions(all []Question, answers map[string]AnswerRecord) []Question {
	byID := make(map[string]Question, len(all))
	for _, q := range all {
		byID[q.ID] = q
	}

	visible := make([]Question, 0, len(all))
	for _, q := range all {
		if q.Conditional == nil {
			visible = append(visible, q)
			continue
		}
		rec, answered := answers[q.Conditional.DependsOn]
		if !answered {
			continue
		}
		if rec.Normalized == requiredValue(byID, *q.Conditional) {
			visible = append(visible, q)
		}
	}

	sort.Slice(visible, func(i, j int) bool {
		if visible[i].OrderIndex != visible[j].OrderIndex {
			return visible[i].OrderIndex < visible[j].OrderIndex
		}
		return visible[i].ID < visible[j].ID
	})
	return visible
}

// requiredValue canonicalizes the authored required value through the
// referenced question's vocabulary, so "true" in a pack matches a
// stored "vrai".
func requiredValue(byID map[string]Question, cond ConditionalLogic) string {
	if dep, ok := byID[cond.DependsOn]; ok {
		return CanonicalAnswer(dep.Type, cond.RequiredValue)
	}
	return NormalizeAnswer(cond.RequiredValue)
}
