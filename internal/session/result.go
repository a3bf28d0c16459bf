package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abhisek/logiprep/internal/analytics"
	"github.com/abhisek/logiprep/internal/question"
)

// Result is the record of a session that reached a terminal state.
type Result struct {
	SessionID string                  `json:"session_id"`
	UserID    string                  `json:"user_id"`
	Spec      Spec                    `json:"spec"`
	Outcome   State                   `json:"outcome"`
	Questions int                     `json:"questions"`
	Answers   []question.AnswerRecord `json:"answers"`
	Summary   analytics.Summary       `json:"summary"`
	StartedAt time.Time               `json:"started_at"`
	EndedAt   time.Time               `json:"ended_at"`
}

// Duration is the wall-clock length of the session.
func (r Result) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// AnswerEvent carries one committed answer together with its session.
type AnswerEvent struct {
	SessionID string
	UserID    string
	Mode      Mode
	Record    question.AnswerRecord
}

// Hook is called once when a session reaches a terminal state.
type Hook func(Result)

// AnswerHook is called for every committed answer.
type AnswerHook func(AnswerEvent)

// Recorder durably stores finished sessions.
type Recorder interface {
	RecordSession(ctx context.Context, r Result) error
}

// AnswerRecorder durably stores individual answers as they are committed.
type AnswerRecorder interface {
	RecordAnswer(ctx context.Context, ev AnswerEvent) error
}

// MultiRecorder fans a result out to several recorders. Every recorder is
// called; their errors are joined.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordSession(ctx context.Context, r Result) error {
	var errs []error
	for _, rec := range m {
		if err := rec.RecordSession(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MultiAnswerRecorder fans an answer out to several recorders.
type MultiAnswerRecorder []AnswerRecorder

func (m MultiAnswerRecorder) RecordAnswer(ctx context.Context, ev AnswerEvent) error {
	var errs []error
	for _, rec := range m {
		if err := rec.RecordAnswer(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecorderHook adapts a Recorder into a Hook. Failures are logged, since the
// machine has already reached its terminal state.
func RecorderHook(ctx context.Context, rec Recorder, logger *slog.Logger) Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return func(r Result) {
		if err := rec.RecordSession(ctx, r); err != nil {
			logger.Error("failed to record session",
				"session_id", r.SessionID,
				"outcome", r.Outcome.String(),
				"error", err)
		}
	}
}

// AnswerRecorderHook adapts an AnswerRecorder into an AnswerHook.
func AnswerRecorderHook(ctx context.Context, rec AnswerRecorder, logger *slog.Logger) AnswerHook {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ev AnswerEvent) {
		if err := rec.RecordAnswer(ctx, ev); err != nil {
			logger.Warn("failed to record answer",
				"session_id", ev.SessionID,
				"question_id", ev.Record.QuestionID,
				"error", err)
		}
	}
}
