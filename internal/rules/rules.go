package rules

import (
	"fmt"
	"time"
)

// ResponseRule is one administrator-authored trigger-to-response
// mapping. Patterns are either a list of literal keywords or, when
// UsesRegex is set, a single regular expression in TriggerPatterns[0].
type ResponseRule struct {
	ID              string      `json:"id"`
	TriggerPatterns []string    `json:"trigger_patterns"`
	UsesRegex       bool        `json:"uses_regex"`
	Priority        int         `json:"priority"` // higher wins
	Response        string      `json:"response"`
	Window          *TimeWindow `json:"window,omitempty"`
}

// TimeWindow restricts a rule to part of the day, bounds given as
// "HH:MM" wall-clock times. Start at or after End denotes an
// overnight window (e.g. 22:00-06:00 spans midnight). The start is
// inclusive, the end exclusive.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Validate checks both bounds parse as "HH:MM".
func (w TimeWindow) Validate() error {
	if _, err := parseClock(w.Start); err != nil {
		return fmt.Errorf("time window start %q: %w", w.Start, err)
	}
	if _, err := parseClock(w.End); err != nil {
		return fmt.Errorf("time window end %q: %w", w.End, err)
	}
	return nil
}

// Contains reports whether the wall-clock time of now falls inside
// the window. Malformed bounds make the window never match; Validate
// catches those at authoring time.
func (w TimeWindow) Contains(now time.Time) bool {
	start, err := parseClock(w.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(w.End)
	if err != nil {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	if start < end {
		return minute >= start && minute < end
	}
	// Overnight: the window wraps past midnight.
	return minute >= start || minute < end
}

// Active reports whether the rule may fire at the given instant.
// A rule without a window is always active.
func (r *ResponseRule) Active(now time.Time) bool {
	if r.Window == nil {
		return true
	}
	return r.Window.Contains(now)
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM: %w", err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
