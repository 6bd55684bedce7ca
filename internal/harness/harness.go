package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/pasteur222/quizflow/internal/compiler"
	"github.com/pasteur222/quizflow/internal/engine"
	"github.com/pasteur222/quizflow/internal/store"
	"github.com/pasteur222/quizflow/internal/testutil"
)

// harnessEpoch is the manual clock's start. Fixed so transcripts and
// timing-derived engagement figures are reproducible.
var harnessEpoch = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

// Run executes a scenario against the real engine and returns the
// result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// The manual clock and sequential ID generator make every run
// byte-identical:
//
//  1. Create a fresh in-memory database
//  2. Compile, validate, and import the CUE pack
//  3. Deliver each step through Service.HandleAnswer
//  4. Evaluate per-step expectations and final session assertions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := importPack(ctx, st, scenario.Pack); err != nil {
		return nil, err
	}

	clock := testutil.NewManualClock(harnessEpoch)
	svc := engine.NewService(st,
		engine.WithClock(clock),
		engine.WithIDGenerator(testutil.NewSeqIDGenerator()),
	)

	result := NewResult()
	var sessionID string
	for i, step := range scenario.Steps {
		clock.Advance(time.Duration(step.AdvanceMs) * time.Millisecond)

		reply, err := svc.HandleAnswer(ctx, scenario.Participant, step.Send)
		if err != nil {
			result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
			break
		}
		sessionID = reply.SessionID
		result.Transcript = append(result.Transcript, ">> "+step.Send, "<< "+reply.Text)

		checkStep(i, step.Expect, reply, result)
	}

	if sessionID != "" {
		sess, err := st.GetSession(ctx, sessionID)
		if err != nil {
			result.AddError(fmt.Sprintf("final session load: %v", err))
		} else {
			result.Session = &sess
		}
	}

	if scenario.Final != nil {
		checkFinal(scenario.Final, result)
	}

	return result, nil
}

// importPack compiles and validates the pack directory, then upserts
// its questions and rules into the store.
func importPack(ctx context.Context, st *store.Store, dir string) error {
	pack, loadErrors := compiler.LoadPack(dir, compiler.LoadModeFailFast)
	if len(loadErrors) > 0 {
		return fmt.Errorf("loading pack %s: %w", dir, loadErrors[0])
	}
	if errs := compiler.ValidatePack(pack.Questions, pack.Rules); len(errs) > 0 {
		return fmt.Errorf("validating pack %s: %w", dir, errs[0])
	}

	for _, q := range pack.Questions {
		if err := st.PutQuestion(ctx, q); err != nil {
			return fmt.Errorf("importing question %q: %w", q.ID, err)
		}
	}
	for _, r := range pack.Rules {
		if err := st.PutRule(ctx, r); err != nil {
			return fmt.Errorf("importing rule %q: %w", r.ID, err)
		}
	}
	return nil
}
