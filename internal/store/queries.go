package store

import (
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/topic"
)

const (
	tableQuestions = "questions"
	tableAttempts  = "attempts"
	tableSessions  = "sessions"
)

var (
	questionColumns = []string{"id", "topic", "passage_id", "passage_text", "prompt", "options", "correct_index", "explanation"}
	attemptColumns  = []string{"question_id", "session_id", "topic", "selected_option", "correct", "answered_at", "mode"}
	sessionColumns  = []string{"id", "user_id", "mode", "topics", "total_questions", "answered", "correct", "score", "outcome", "started_at", "ended_at"}
)

// Queries builds the store's statements for one SQL dialect. Every method
// returns the statement and its arguments, ready for QueryContext or
// ExecContext.
type Queries struct {
	b *entsql.DialectBuilder
}

// NewQueries returns a builder for an ent dialect name such as
// dialect.SQLite or dialect.Postgres.
func NewQueries(dialect string) Queries {
	return Queries{b: entsql.Dialect(dialect)}
}

// FetchQuestions selects up to limit random questions of one topic.
func (q Queries) FetchQuestions(t topic.Topic, limit int) (string, []any) {
	return q.b.Select(questionColumns...).
		From(entsql.Table(tableQuestions)).
		Where(entsql.EQ("topic", t.String())).
		OrderExpr(entsql.Expr("RANDOM()")).
		Limit(limit).
		Query()
}

// Question selects one question by id.
func (q Queries) Question(id string) (string, []any) {
	return q.b.Select(questionColumns...).
		From(entsql.Table(tableQuestions)).
		Where(entsql.EQ("id", id)).
		Query()
}

// CountQuestions counts questions per topic.
func (q Queries) CountQuestions() (string, []any) {
	return q.b.Select("topic", entsql.Count("*")).
		From(entsql.Table(tableQuestions)).
		GroupBy("topic").
		Query()
}

// UpsertQuestion inserts a question or replaces the stored one with the
// same id.
func (q Queries) UpsertQuestion(qq question.Question) (string, []any, error) {
	opts, err := json.Marshal(qq.Options)
	if err != nil {
		return "", nil, fmt.Errorf("encode options: %w", err)
	}
	query, args := q.b.Insert(tableQuestions).
		Columns(questionColumns...).
		Values(qq.ID, qq.Topic.String(), qq.PassageID, qq.PassageText, qq.Prompt, string(opts), qq.CorrectIndex, qq.Explanation).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	return query, args, nil
}

// AttemptRow is one row of the attempts table.
type AttemptRow struct {
	Seq       int64 // zero lets the database assign it
	UserID    string
	SessionID string
	Mode      string
	Record    question.AnswerRecord
}

// InsertAttempt inserts an attempt, ignoring a repeat of the same question
// in the same session.
func (q Queries) InsertAttempt(a AttemptRow) (string, []any) {
	cols := []string{"user_id", "session_id", "question_id", "topic", "selected_option", "correct", "mode", "answered_at"}
	vals := []any{a.UserID, a.SessionID, a.Record.QuestionID, a.Record.Topic.String(), a.Record.SelectedOption, a.Record.Correct, a.Mode, a.Record.AnsweredAt.UnixMilli()}
	if a.Seq > 0 {
		cols = append([]string{"seq"}, cols...)
		vals = append([]any{a.Seq}, vals...)
	}
	return q.b.Insert(tableAttempts).
		Columns(cols...).
		Values(vals...).
		OnConflict(entsql.ConflictColumns("session_id", "question_id"), entsql.DoNothing()).
		Query()
}

// History selects a user's attempts in commit order.
func (q Queries) History(userID string) (string, []any) {
	return q.b.Select(attemptColumns...).
		From(entsql.Table(tableAttempts)).
		Where(entsql.EQ("user_id", userID)).
		OrderExpr(entsql.Expr("seq ASC")).
		Query()
}

// SessionAttempts selects one session's attempts in commit order.
func (q Queries) SessionAttempts(sessionID string) (string, []any) {
	return q.b.Select(attemptColumns...).
		From(entsql.Table(tableAttempts)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderExpr(entsql.Expr("seq ASC")).
		Query()
}

// AttemptedIDs selects the distinct question ids a user has answered.
func (q Queries) AttemptedIDs(userID string) (string, []any) {
	return q.b.Select("question_id").
		Distinct().
		From(entsql.Table(tableAttempts)).
		Where(entsql.EQ("user_id", userID)).
		Query()
}

// UpsertSession writes the session row for a finished session.
func (q Queries) UpsertSession(r session.Result) (string, []any, error) {
	topics := r.Spec.Topics
	if topics == nil {
		topics = []topic.Topic{}
	}
	enc, err := json.Marshal(topics)
	if err != nil {
		return "", nil, fmt.Errorf("encode topics: %w", err)
	}
	query, args := q.b.Insert(tableSessions).
		Columns(sessionColumns...).
		Values(
			r.SessionID,
			r.UserID,
			string(r.Spec.Mode),
			string(enc),
			r.Questions,
			r.Summary.TotalCount,
			r.Summary.TotalCorrect,
			r.Summary.Percentage,
			r.Outcome.String(),
			r.StartedAt.UnixMilli(),
			r.EndedAt.UnixMilli(),
		).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	return query, args, nil
}

// RecentSessions selects a user's latest sessions, newest first.
func (q Queries) RecentSessions(userID string, limit int) (string, []any) {
	sel := q.b.Select(sessionColumns...).
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("user_id", userID)).
		OrderExpr(entsql.Expr("ended_at DESC"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	return sel.Query()
}

// Session selects one session by id.
func (q Queries) Session(id string) (string, []any) {
	return q.b.Select(sessionColumns...).
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("id", id)).
		Query()
}

// RowScanner is implemented by *sql.Row, *sql.Rows and pgx rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanQuestion reads a row selected with questionColumns.
func ScanQuestion(r RowScanner) (question.Question, error) {
	var (
		q       question.Question
		tp      string
		options string
	)
	if err := r.Scan(&q.ID, &tp, &q.PassageID, &q.PassageText, &q.Prompt, &options, &q.CorrectIndex, &q.Explanation); err != nil {
		return question.Question{}, err
	}
	t, err := topic.Parse(tp)
	if err != nil {
		return question.Question{}, fmt.Errorf("question %s: %w", q.ID, err)
	}
	q.Topic = t
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return question.Question{}, fmt.Errorf("question %s: decode options: %w", q.ID, err)
	}
	return q, nil
}

// ScanAttempt reads a row selected with attemptColumns.
func ScanAttempt(r RowScanner) (question.Attempt, error) {
	var (
		a  question.Attempt
		tp string
		ms int64
	)
	if err := r.Scan(&a.QuestionID, &a.SessionID, &tp, &a.SelectedOption, &a.Correct, &ms, &a.Mode); err != nil {
		return question.Attempt{}, err
	}
	t, err := topic.Parse(tp)
	if err != nil {
		return question.Attempt{}, fmt.Errorf("attempt %s: %w", a.QuestionID, err)
	}
	a.Topic = t
	a.AnsweredAt = time.UnixMilli(ms).UTC()
	return a, nil
}

// ScanSession reads a row selected with sessionColumns.
func ScanSession(r RowScanner) (SessionRecord, error) {
	var (
		rec            SessionRecord
		mode, outcome  string
		topics         string
		started, ended int64
	)
	if err := r.Scan(&rec.ID, &rec.UserID, &mode, &topics, &rec.TotalQuestions, &rec.Answered, &rec.Correct, &rec.Score, &outcome, &started, &ended); err != nil {
		return SessionRecord{}, err
	}
	rec.Mode = session.Mode(mode)
	st, err := session.ParseState(outcome)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("session %s: %w", rec.ID, err)
	}
	rec.Outcome = st
	if err := json.Unmarshal([]byte(topics), &rec.Topics); err != nil {
		return SessionRecord{}, fmt.Errorf("session %s: decode topics: %w", rec.ID, err)
	}
	rec.StartedAt = time.UnixMilli(started).UTC()
	rec.EndedAt = time.UnixMilli(ended).UTC()
	return rec, nil
}
