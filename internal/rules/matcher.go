package rules

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pasteur222/quizflow/internal/quiz"
)

// Confidence assignments. A regex is an exact author-controlled
// pattern, so a hit scores a fixed high confidence; keyword hits are
// proportional to how much of the message the keyword covers, capped
// below the regex score so an explicit pattern always outranks a
// keyword at equal priority.
const (
	regexConfidence   = 0.9
	keywordConfidence = 0.8 // cap
)

// MatchResult is the outcome of matching one message against a rule
// set.
type MatchResult struct {
	// Rule is the selected rule; nil when nothing matched.
	Rule *ResponseRule

	// Confidence is the selected rule's score, 0 when Rule is nil.
	Confidence float64

	// Conflicting lists other candidates close enough to the selection
	// that an administrator should review the overlap. Diagnostics
	// only; the selection above already resolved the response.
	Conflicting []ResponseRule
}

// candidate pairs a rule with its computed confidence.
type candidate struct {
	rule       ResponseRule
	confidence float64
}

// Match selects the response rule for a message.
//
// Every rule active at now is scored: a regex hit is worth 0.9; a
// keyword hit is worth len(keyword)/len(message) for the longest
// matching keyword, capped at 0.8. Candidates order by (priority
// desc, confidence desc, id asc) - the id tie-break removes any
// dependence on input order, so the selection is deterministic for a
// fixed rule set and instant.
//
// The runner-up candidates within one priority level of the selection
// are reported as conflicting when their confidence exceeds 0.7 or
// they share the selection's exact priority; at identical priority
// only the confidence ordering separated them, which is precisely the
// ambiguity an administrator should know about.
func Match(message string, ruleSet []ResponseRule, now time.Time) MatchResult {
	normalized := quiz.NormalizeAnswer(message)
	if normalized == "" {
		return MatchResult{}
	}

	var candidates []candidate
	for _, r := range ruleSet {
		if !r.Active(now) {
			continue
		}
		conf, ok := score(&r, normalized)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{rule: r, confidence: conf})
	}
	if len(candidates) == 0 {
		return MatchResult{}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.rule.Priority != b.rule.Priority {
			return a.rule.Priority > b.rule.Priority
		}
		if a.confidence != b.confidence {
			return a.confidence > b.confidence
		}
		return a.rule.ID < b.rule.ID
	})

	selected := candidates[0]
	result := MatchResult{
		Rule:       &selected.rule,
		Confidence: selected.confidence,
	}

	for _, c := range candidates[1:] {
		diff := c.rule.Priority - selected.rule.Priority
		if diff < -1 || diff > 1 {
			continue
		}
		if c.confidence > 0.7 || c.rule.Priority == selected.rule.Priority {
			result.Conflicting = append(result.Conflicting, c.rule)
		}
	}
	return result
}

// score computes a rule's confidence against a normalized message.
func score(r *ResponseRule, normalized string) (float64, bool) {
	if r.UsesRegex {
		if len(r.TriggerPatterns) == 0 {
			return 0, false
		}
		re, err := regexp.Compile(r.TriggerPatterns[0])
		if err != nil {
			// Authoring-time validation rejects these; an invalid
			// pattern that slipped through simply never fires.
			return 0, false
		}
		if !re.MatchString(normalized) {
			return 0, false
		}
		return regexConfidence, true
	}

	// Longest matching keyword determines the score.
	best := 0
	for _, kw := range r.TriggerPatterns {
		n := quiz.NormalizeAnswer(kw)
		if n == "" || !strings.Contains(normalized, n) {
			continue
		}
		if len(n) > best {
			best = len(n)
		}
	}
	if best == 0 {
		return 0, false
	}

	conf := float64(best) / float64(len(normalized))
	if conf > keywordConfidence {
		conf = keywordConfidence
	}
	return conf, true
}
