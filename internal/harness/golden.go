package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its transcript
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The golden files are the source of truth for conversation behavior:
// prompt wording, reprompt guidance, and completion summaries all show
// up verbatim, so an accidental change to any participant-facing
// string fails the comparison.
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(Transcript(result)))

	return result
}

// Transcript renders the conversation as golden-file text.
func Transcript(result *Result) string {
	return strings.Join(result.Transcript, "\n") + "\n"
}
