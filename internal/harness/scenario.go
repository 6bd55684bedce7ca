package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pasteur222/quizflow/internal/quiz"
)

// LoadScenario reads and parses a scenario YAML file. The pack path
// is resolved relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "step:" vs "steps:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Pack != "" && !filepath.IsAbs(scenario.Pack) {
		scenario.Pack = filepath.Join(filepath.Dir(path), scenario.Pack)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Participant == "" {
		return fmt.Errorf("participant is required")
	}

	if s.Pack == "" {
		return fmt.Errorf("pack is required")
	}
	if info, err := os.Stat(s.Pack); err != nil || !info.IsDir() {
		return fmt.Errorf("pack directory not found: %s", s.Pack)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Send == "" {
			return fmt.Errorf("steps[%d]: send is required", i)
		}
		if step.AdvanceMs < 0 {
			return fmt.Errorf("steps[%d]: advance_ms must be non-negative", i)
		}
		if step.Expect != nil && len(step.Expect.Contains) == 0 && step.Expect.Completed == nil {
			return fmt.Errorf("steps[%d].expect: contains or completed is required", i)
		}
	}

	if s.Final != nil && s.Final.Status != "" {
		if !quiz.ValidStatuses[quiz.SessionStatus(s.Final.Status)] {
			return fmt.Errorf("final.status: unknown status %q", s.Final.Status)
		}
	}

	return nil
}
