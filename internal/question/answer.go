package question

import (
	"time"

	"github.com/abhisek/logiprep/internal/topic"
)

// AnswerRecord is a committed answer to one question within a session.
// Records are appended once and never modified.
type AnswerRecord struct {
	QuestionID     string      `json:"question_id"`
	Topic          topic.Topic `json:"topic"`
	SelectedOption string      `json:"selected_option"`
	Correct        bool        `json:"correct"`
	AnsweredAt     time.Time   `json:"answered_at"`
}

// Attempt is one entry of a user's durable answer history.
type Attempt struct {
	QuestionID     string      `json:"question_id"`
	SessionID      string      `json:"session_id,omitempty"`
	Topic          topic.Topic `json:"topic"`
	SelectedOption string      `json:"selected_option"`
	Correct        bool        `json:"correct"`
	AnsweredAt     time.Time   `json:"answered_at"`
	Mode           string      `json:"mode"`
}

// Grade builds the AnswerRecord for selecting option on q.
func Grade(q Question, option string, at time.Time) AnswerRecord {
	return AnswerRecord{
		QuestionID:     q.ID,
		Topic:          q.Topic,
		SelectedOption: option,
		Correct:        q.IsCorrect(option),
		AnsweredAt:     at,
	}
}
