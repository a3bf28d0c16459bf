package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/topic"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("store: not found")

// SessionRecord is the stored summary of a finished session.
type SessionRecord struct {
	ID             string
	UserID         string
	Mode           session.Mode
	Topics         []topic.Topic
	TotalQuestions int
	Answered       int
	Correct        int
	Score          int
	Outcome        session.State
	StartedAt      time.Time
	EndedAt        time.Time
}

// Duration is the wall-clock length of the session.
func (r SessionRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// QuestionRepo manages the question bank.
type QuestionRepo interface {
	// UpsertQuestions inserts or replaces questions by id and returns how
	// many were written.
	UpsertQuestions(ctx context.Context, qs []question.Question) (int, error)

	// FetchQuestions returns up to limit random questions of one topic.
	FetchQuestions(ctx context.Context, t topic.Topic, limit int) ([]question.Question, error)

	// Question returns one question by id, or ErrNotFound.
	Question(ctx context.Context, id string) (question.Question, error)

	// CountQuestions returns the bank size per topic.
	CountQuestions(ctx context.Context) (map[topic.Topic]int, error)
}

// AttemptRepo manages the answer history.
type AttemptRepo interface {
	// RecordAnswer appends one answer. Recording the same question twice
	// for a session is a no-op.
	RecordAnswer(ctx context.Context, ev session.AnswerEvent) error

	// History returns every attempt of the user, oldest first.
	History(ctx context.Context, userID string) ([]question.Attempt, error)

	// AttemptedIDs returns the ids of every question the user has answered.
	AttemptedIDs(ctx context.Context, userID string) (map[string]bool, error)

	// SessionAttempts returns the attempts of one session, oldest first.
	SessionAttempts(ctx context.Context, sessionID string) ([]question.Attempt, error)
}

// SessionRepo manages finished sessions.
type SessionRepo interface {
	// RecordSession stores the session row and any answers not yet stored.
	RecordSession(ctx context.Context, r session.Result) error

	// RecentSessions returns the user's latest sessions, newest first.
	RecentSessions(ctx context.Context, userID string, limit int) ([]SessionRecord, error)

	// Session returns one session by id, or ErrNotFound.
	Session(ctx context.Context, id string) (SessionRecord, error)
}

// Repository is the full persistence contract shared by the SQLite and
// PostgreSQL stores.
type Repository interface {
	QuestionRepo
	AttemptRepo
	SessionRepo
	Close() error
}
