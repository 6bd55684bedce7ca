package harness

import (
	"fmt"
	"strings"

	"github.com/pasteur222/quizflow/internal/engine"
	"github.com/pasteur222/quizflow/internal/quiz"
)

// checkStep evaluates a step's expectations against the reply.
func checkStep(index int, expect *ExpectClause, reply engine.Reply, result *Result) {
	if expect == nil {
		return
	}

	for _, want := range expect.Contains {
		if !strings.Contains(reply.Text, want) {
			result.AddError(fmt.Sprintf("steps[%d]: reply does not contain %q\nreply: %s", index, want, reply.Text))
		}
	}

	if expect.Completed != nil && reply.Completed != *expect.Completed {
		result.AddError(fmt.Sprintf("steps[%d]: completed = %t, want %t", index, reply.Completed, *expect.Completed))
	}
}

// checkFinal evaluates the final-state assertions against the
// persisted session.
func checkFinal(final *FinalState, result *Result) {
	if result.Session == nil {
		result.AddError("final: no session was created")
		return
	}
	sess := result.Session

	if final.Status != "" && sess.Status != quiz.SessionStatus(final.Status) {
		result.AddError(fmt.Sprintf("final: status = %s, want %s", sess.Status, final.Status))
	}
	if final.Score != nil && sess.Score != *final.Score {
		result.AddError(fmt.Sprintf("final: score = %d, want %d", sess.Score, *final.Score))
	}
	if final.Version != nil && sess.Version != *final.Version {
		result.AddError(fmt.Sprintf("final: version = %d, want %d", sess.Version, *final.Version))
	}
	if final.Answers != nil && len(sess.Answers) != *final.Answers {
		result.AddError(fmt.Sprintf("final: answers = %d, want %d", len(sess.Answers), *final.Answers))
	}
	if final.Engagement != nil && sess.Engagement.EngagementScore != *final.Engagement {
		result.AddError(fmt.Sprintf("final: engagement = %d, want %d", sess.Engagement.EngagementScore, *final.Engagement))
	}
}
