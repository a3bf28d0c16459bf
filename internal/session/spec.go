package session

import (
	"fmt"
	"time"

	"github.com/abhisek/logiprep/internal/topic"
)

// Per-passage caps used by the mode presets. A cap of zero disables it.
const (
	TestPassageCap     = 3
	PracticePassageCap = 2
	LearnPassageCap    = 0
)

// PerQuestionBudget is the test-mode time allowance per question when no
// explicit TimeLimit is set.
const PerQuestionBudget = time.Minute

// Spec describes one session. It is fixed once the session starts.
type Spec struct {
	Mode                       Mode                `json:"mode"`
	Topics                     []topic.Topic       `json:"topics"`
	TotalCount                 int                 `json:"total_count"`
	PerPassageCap              int                 `json:"per_passage_cap"`
	ExcludePreviouslyAttempted bool                `json:"exclude_previously_attempted"`
	Composition                map[topic.Topic]int `json:"composition,omitempty"`
	TimeLimit                  time.Duration       `json:"time_limit,omitempty"`
}

// TestSpec returns the full mock exam: the real-exam composition over every
// topic with a 40 minute budget.
func TestSpec() Spec {
	return Spec{
		Mode:                       ModeTest,
		Topics:                     topic.All(),
		TotalCount:                 topic.RealExamTotal,
		PerPassageCap:              TestPassageCap,
		ExcludePreviouslyAttempted: true,
		Composition:                topic.RealExamWeights(),
	}
}

// PracticeSpec returns an untimed session of n questions split evenly
// across topics.
func PracticeSpec(topics []topic.Topic, n int) Spec {
	return Spec{
		Mode:                       ModePractice,
		Topics:                     topics,
		TotalCount:                 n,
		PerPassageCap:              PracticePassageCap,
		ExcludePreviouslyAttempted: true,
	}
}

// LearnSpec returns an untimed session without a per-passage cap.
func LearnSpec(topics []topic.Topic, n int) Spec {
	return Spec{
		Mode:          ModeLearn,
		Topics:        topics,
		TotalCount:    n,
		PerPassageCap: LearnPassageCap,
	}
}

// Budget returns the countdown budget of a full test-mode session and zero
// for untimed modes.
func (s Spec) Budget() time.Duration {
	return s.BudgetFor(s.TotalCount)
}

// BudgetFor is Budget for a session of n questions. An explicit TimeLimit
// wins; otherwise the budget scales with the questions actually served.
func (s Spec) BudgetFor(n int) time.Duration {
	if s.Mode != ModeTest {
		return 0
	}
	if s.TimeLimit > 0 {
		return s.TimeLimit
	}
	return time.Duration(n) * PerQuestionBudget
}

// Validate checks the spec and returns an *InvalidSpecError on the first
// problem found.
func (s Spec) Validate() error {
	if !s.Mode.Valid() {
		return &InvalidSpecError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s.Mode)}
	}
	if s.TotalCount <= 0 {
		return &InvalidSpecError{Field: "total_count", Reason: "must be positive"}
	}
	if len(s.Topics) == 0 {
		return &InvalidSpecError{Field: "topics", Reason: "at least one topic is required"}
	}
	seen := make(map[topic.Topic]bool, len(s.Topics))
	for _, t := range s.Topics {
		if !t.Valid() {
			return &InvalidSpecError{Field: "topics", Reason: fmt.Sprintf("unknown topic %d", int(t))}
		}
		if seen[t] {
			return &InvalidSpecError{Field: "topics", Reason: fmt.Sprintf("duplicate topic %s", t)}
		}
		seen[t] = true
	}
	if s.PerPassageCap < 0 {
		return &InvalidSpecError{Field: "per_passage_cap", Reason: "must not be negative"}
	}
	if s.TimeLimit < 0 {
		return &InvalidSpecError{Field: "time_limit", Reason: "must not be negative"}
	}
	if s.TimeLimit > 0 && s.Mode != ModeTest {
		return &InvalidSpecError{Field: "time_limit", Reason: "only test sessions are timed"}
	}
	if s.Composition != nil {
		sum := 0
		for t, n := range s.Composition {
			if !seen[t] {
				return &InvalidSpecError{Field: "composition", Reason: fmt.Sprintf("%s is not a session topic", t)}
			}
			if n < 0 {
				return &InvalidSpecError{Field: "composition", Reason: fmt.Sprintf("negative count for %s", t)}
			}
			sum += n
		}
		if sum != s.TotalCount {
			return &InvalidSpecError{Field: "composition", Reason: fmt.Sprintf("counts sum to %d, want %d", sum, s.TotalCount)}
		}
	}
	return nil
}
