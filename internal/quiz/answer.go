package quiz

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Accepted answer vocabulary for the closed question types. Matching is
// case-insensitive and tolerant of surrounding whitespace; both French
// and English tokens are accepted.
var (
	trueTokens  = map[string]bool{"vrai": true, "true": true}
	falseTokens = map[string]bool{"faux": true, "false": true}
	yesTokens   = map[string]bool{"oui": true, "yes": true}
	noTokens    = map[string]bool{"non": true, "no": true}
	skipTokens  = map[string]bool{"skip": true, "passer": true}
)

// NormalizeAnswer folds a raw chat message into its comparison form:
// NFKC normalization, lowercasing, and whitespace trimming. Accents are
// preserved; "  VRAI " and "vrai" normalize identically.
func NormalizeAnswer(raw string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(raw)))
}

// ParseBoolAnswer maps a raw answer onto the closed vocabulary of a
// graded question type. Returns false for ok when the answer is not in
// the vocabulary; trueFalse and yesNo accept disjoint token sets.
func ParseBoolAnswer(typ QuestionType, raw string) (value bool, ok bool) {
	n := NormalizeAnswer(raw)
	switch typ {
	case TypeTrueFalse:
		if trueTokens[n] {
			return true, true
		}
		if falseTokens[n] {
			return false, true
		}
	case TypeYesNo:
		if yesTokens[n] {
			return true, true
		}
		if noTokens[n] {
			return false, true
		}
	}
	return false, false
}

// IsSkip reports whether the raw answer is a skip request.
func IsSkip(raw string) bool {
	return skipTokens[NormalizeAnswer(raw)]
}

// CanonicalAnswer returns the stable stored form of an answer. Closed
// vocabulary collapses onto one token per value (French spelling), so
// "TRUE" and "vrai" compare equal when conditional visibility checks a
// required value. Open answers keep their normalized text.
func CanonicalAnswer(typ QuestionType, raw string) string {
	if value, ok := ParseBoolAnswer(typ, raw); ok {
		switch typ {
		case TypeTrueFalse:
			if value {
				return "vrai"
			}
			return "faux"
		case TypeYesNo:
			if value {
				return "oui"
			}
			return "non"
		}
	}
	return NormalizeAnswer(raw)
}
