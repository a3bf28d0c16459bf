// Package question holds the multiple-choice item, its grading and the
// answer records a session produces.
package question

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/logiprep/internal/topic"
)

// MaxOptions is the most answer choices a question may carry. Options are
// labelled a to j on screen.
const MaxOptions = 10

// passageNamespace scopes the name-based UUIDs derived from passage text.
var passageNamespace = uuid.MustParse("6f1c2a4e-9b8d-4c3e-a7f5-0d2e1b3c4a59")

// Question is an immutable multiple-choice item.
type Question struct {
	// ID is the store identifier of the question.
	ID string `json:"id"`

	// Topic is the section this question counts toward. A question belongs
	// to exactly one topic.
	Topic topic.Topic `json:"topic"`

	// PassageID identifies the shared reading passage. Empty when the
	// question has no passage, in which case it forms its own group.
	PassageID string `json:"passage_id,omitempty"`

	// PassageText is the shared passage shown alongside the question.
	PassageText string `json:"passage_text,omitempty"`

	// Prompt is the question stem.
	Prompt string `json:"prompt"`

	// Options are the answer choices in display order.
	Options []string `json:"options"`

	// CorrectIndex points into Options.
	CorrectIndex int `json:"correct_index"`

	// Explanation is shown once the answer is revealed.
	Explanation string `json:"explanation,omitempty"`
}

// New builds a Question and derives its PassageID from the passage text.
func New(id string, t topic.Topic, passage, prompt string, options []string, correct int, explanation string) Question {
	opts := make([]string, len(options))
	copy(opts, options)
	return Question{
		ID:           id,
		Topic:        t,
		PassageID:    PassageID(passage),
		PassageText:  passage,
		Prompt:       prompt,
		Options:      opts,
		CorrectIndex: correct,
		Explanation:  explanation,
	}
}

// PassageID derives a stable identifier from passage text. Whitespace at
// either end is ignored. Empty text yields an empty id.
func PassageID(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return uuid.NewSHA1(passageNamespace, []byte(text)).String()
}

// HasPassage reports whether the question shares a passage with others.
func (q Question) HasPassage() bool {
	return q.PassageID != ""
}

// GroupKey returns the key used to bucket the question by passage.
// Questions without a passage get a key unique to themselves.
func (q Question) GroupKey() string {
	if q.PassageID == "" {
		return "q:" + q.ID
	}
	return "p:" + q.PassageID
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// IsCorrect reports whether the option text is the correct answer.
func (q Question) IsCorrect(option string) bool {
	return q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options) && q.Options[q.CorrectIndex] == option
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of the question.
func (q Question) Validate() error {
	var errs []error
	if strings.TrimSpace(q.ID) == "" {
		errs = append(errs, errors.New("id is empty"))
	}
	if !q.Topic.Valid() {
		errs = append(errs, fmt.Errorf("invalid topic %d", int(q.Topic)))
	}
	if strings.TrimSpace(q.Prompt) == "" {
		errs = append(errs, errors.New("prompt is empty"))
	}
	if len(q.Options) < 2 {
		errs = append(errs, fmt.Errorf("need at least 2 options, got %d", len(q.Options)))
	}
	if len(q.Options) > MaxOptions {
		errs = append(errs, fmt.Errorf("at most %d options allowed, got %d", MaxOptions, len(q.Options)))
	}
	seen := make(map[string]bool, len(q.Options))
	for i, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			errs = append(errs, fmt.Errorf("option %d is empty", i))
			continue
		}
		if seen[o] {
			errs = append(errs, fmt.Errorf("duplicate option %q", o))
		}
		seen[o] = true
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		errs = append(errs, fmt.Errorf("correct index %d out of range", q.CorrectIndex))
	}
	if q.PassageID != PassageID(q.PassageText) {
		errs = append(errs, errors.New("passage id does not match passage text"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("question %q: %w", q.ID, errors.Join(errs...))
	}
	return nil
}
