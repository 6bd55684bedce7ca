package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pasteur222/quizflow/internal/quiz"
)

// ConflictKind classifies how two rules overlap.
type ConflictKind string

const (
	// ConflictKeywordOverlap marks two keyword rules sharing trigger
	// keywords.
	ConflictKeywordOverlap ConflictKind = "KEYWORD_OVERLAP"

	// ConflictSimilarSamePriority marks two rules at identical
	// priority whose keyword sets are similar enough (Jaccard > 0.3)
	// that selection between them hinges on confidence alone.
	ConflictSimilarSamePriority ConflictKind = "SIMILAR_SAME_PRIORITY"

	// ConflictRegexCoMatch marks two regex rules that both match at
	// least one probe message.
	ConflictRegexCoMatch ConflictKind = "REGEX_CO_MATCH"
)

// Severity grades how concerning a conflict is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Conflict is one pairwise diagnostic finding. RuleA sorts before
// RuleB by id so findings are stable across runs.
type Conflict struct {
	RuleA    string       `json:"rule_a"`
	RuleB    string       `json:"rule_b"`
	Kind     ConflictKind `json:"kind"`
	Severity Severity     `json:"severity"`
	Detail   string       `json:"detail"`
}

// probeCorpus is a small fixed set of plausible inbound messages used
// to detect regex rules that fire on the same traffic. Pattern overlap
// in general is undecidable cheaply; co-matching representative
// messages is the diagnostic that matters to an administrator.
var probeCorpus = []string{
	"bonjour",
	"salut, je veux jouer",
	"help",
	"aide",
	"je veux recommencer",
	"stop",
	"oui",
	"non",
	"merci beaucoup",
	"quel est mon score ?",
	"info",
	"c'est quoi ce quiz ?",
}

// DetectConflicts runs the pairwise diagnostic pass over a rule set.
//
// Three signals are checked per pair: shared trigger keywords (graded
// by how many are shared), identical-priority pairs with similar
// keyword sets, and regex rules that co-match the probe corpus.
// O(n²), fine for administrator-authored sets. Findings are
// diagnostics for review only: rules are never merged or removed.
func DetectConflicts(ruleSet []ResponseRule) []Conflict {
	ordered := make([]ResponseRule, len(ruleSet))
	copy(ordered, ruleSet)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var conflicts []Conflict
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			conflicts = append(conflicts, diagnosePair(ordered[i], ordered[j])...)
		}
	}
	return conflicts
}

// diagnosePair evaluates all conflict signals for one rule pair.
func diagnosePair(a, b ResponseRule) []Conflict {
	var found []Conflict

	if a.UsesRegex && b.UsesRegex {
		if probe, ok := regexCoMatch(a, b); ok {
			found = append(found, Conflict{
				RuleA:    a.ID,
				RuleB:    b.ID,
				Kind:     ConflictRegexCoMatch,
				Severity: SeverityHigh,
				Detail:   fmt.Sprintf("both patterns match %q", probe),
			})
		}
		return found
	}
	if a.UsesRegex || b.UsesRegex {
		// Mixed keyword/regex pairs have no cheap overlap signal.
		return found
	}

	setA := keywordSet(a)
	setB := keywordSet(b)
	shared := intersect(setA, setB)

	if len(shared) > 0 {
		found = append(found, Conflict{
			RuleA:    a.ID,
			RuleB:    b.ID,
			Kind:     ConflictKeywordOverlap,
			Severity: overlapSeverity(len(shared)),
			Detail:   fmt.Sprintf("shared keywords: %s", strings.Join(shared, ", ")),
		})
	}

	if a.Priority == b.Priority {
		if sim := jaccard(setA, setB); sim > 0.3 {
			found = append(found, Conflict{
				RuleA:    a.ID,
				RuleB:    b.ID,
				Kind:     ConflictSimilarSamePriority,
				Severity: SeverityHigh,
				Detail:   fmt.Sprintf("priority %d on both, keyword similarity %.2f", a.Priority, sim),
			})
		}
	}

	return found
}

// overlapSeverity grades a keyword overlap by how many keywords the
// pair shares.
func overlapSeverity(shared int) Severity {
	switch {
	case shared >= 3:
		return SeverityHigh
	case shared == 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// regexCoMatch reports the first probe message both patterns match.
func regexCoMatch(a, b ResponseRule) (string, bool) {
	reA, err := compileRegexRule(a)
	if err != nil {
		return "", false
	}
	reB, err := compileRegexRule(b)
	if err != nil {
		return "", false
	}
	for _, probe := range probeCorpus {
		normalized := quiz.NormalizeAnswer(probe)
		if reA.MatchString(normalized) && reB.MatchString(normalized) {
			return probe, true
		}
	}
	return "", false
}

func compileRegexRule(r ResponseRule) (*regexp.Regexp, error) {
	if len(r.TriggerPatterns) == 0 {
		return nil, fmt.Errorf("rule %s: no pattern", r.ID)
	}
	return regexp.Compile(r.TriggerPatterns[0])
}

// keywordSet returns a rule's normalized keyword set.
func keywordSet(r ResponseRule) map[string]bool {
	set := make(map[string]bool, len(r.TriggerPatterns))
	for _, kw := range r.TriggerPatterns {
		if n := quiz.NormalizeAnswer(kw); n != "" {
			set[n] = true
		}
	}
	return set
}

// intersect returns the sorted shared members of two sets.
func intersect(a, b map[string]bool) []string {
	var shared []string
	for kw := range a {
		if b[kw] {
			shared = append(shared, kw)
		}
	}
	sort.Strings(shared)
	return shared
}

// jaccard computes intersection size over union size; 0 when both
// sets are empty.
func jaccard(a, b map[string]bool) float64 {
	union := len(a)
	inter := 0
	for kw := range b {
		if a[kw] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
