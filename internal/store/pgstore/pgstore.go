// Package pgstore is the PostgreSQL implementation of store.Repository,
// for running against a shared database instead of a local SQLite file.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/store"
	"github.com/abhisek/logiprep/internal/topic"
)

// Store is a PostgreSQL-backed store.Repository.
type Store struct {
	pool *pgxpool.Pool
	q    store.Queries
}

var _ store.Repository = (*Store)(nil)

// ParseURL validates a PostgreSQL connection URL.
func ParseURL(url string) (*pgxpool.Config, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	return cfg, nil
}

// Open connects to PostgreSQL, verifies the connection and creates missing
// tables.
func Open(ctx context.Context, url string, maxConns int) (*Store, error) {
	cfg, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool. Call Migrate before first use on an empty
// database.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: store.NewQueries(dialect.Postgres)}
}

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range store.PostgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// HealthCheck verifies the database connection is alive.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) UpsertQuestions(ctx context.Context, qs []question.Question) (int, error) {
	batch := &pgx.Batch{}
	for _, q := range qs {
		query, args, err := s.q.UpsertQuestion(q)
		if err != nil {
			return 0, fmt.Errorf("question %s: %w", q.ID, err)
		}
		batch.Queue(query, args...)
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return 0, fmt.Errorf("upsert questions: %w", err)
	}
	return len(qs), nil
}

func (s *Store) FetchQuestions(ctx context.Context, t topic.Topic, limit int) ([]question.Question, error) {
	if limit <= 0 {
		return nil, nil
	}
	query, args := s.q.FetchQuestions(t, limit)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s questions: %w", t, err)
	}
	defer rows.Close()

	var out []question.Question
	for rows.Next() {
		q, err := store.ScanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) Question(ctx context.Context, id string) (question.Question, error) {
	query, args := s.q.Question(id)
	q, err := store.ScanQuestion(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return question.Question{}, store.ErrNotFound
	}
	if err != nil {
		return question.Question{}, fmt.Errorf("query question %s: %w", id, err)
	}
	return q, nil
}

func (s *Store) CountQuestions(ctx context.Context) (map[topic.Topic]int, error) {
	query, args := s.q.CountQuestions()
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	defer rows.Close()

	out := make(map[topic.Topic]int)
	for rows.Next() {
		var (
			name string
			n    int64
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		t, err := topic.Parse(name)
		if err != nil {
			return nil, err
		}
		out[t] = int(n)
	}
	return out, rows.Err()
}

func (s *Store) RecordAnswer(ctx context.Context, ev session.AnswerEvent) error {
	query, args := s.q.InsertAttempt(store.AttemptRow{
		UserID:    ev.UserID,
		SessionID: ev.SessionID,
		Mode:      string(ev.Mode),
		Record:    ev.Record,
	})
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt %s: %w", ev.Record.QuestionID, err)
	}
	return nil
}

func (s *Store) RecordSession(ctx context.Context, r session.Result) error {
	query, args, err := s.q.UpsertSession(r)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("save session %s: %w", r.SessionID, err)
		}
		for _, rec := range r.Answers {
			q, a := s.q.InsertAttempt(store.AttemptRow{
				UserID:    r.UserID,
				SessionID: r.SessionID,
				Mode:      string(r.Spec.Mode),
				Record:    rec,
			})
			if _, err := tx.Exec(ctx, q, a...); err != nil {
				return fmt.Errorf("save attempt %s: %w", rec.QuestionID, err)
			}
		}
		return nil
	})
}

func (s *Store) History(ctx context.Context, userID string) ([]question.Attempt, error) {
	query, args := s.q.History(userID)
	return s.queryAttempts(ctx, query, args)
}

func (s *Store) SessionAttempts(ctx context.Context, sessionID string) ([]question.Attempt, error) {
	query, args := s.q.SessionAttempts(sessionID)
	return s.queryAttempts(ctx, query, args)
}

func (s *Store) queryAttempts(ctx context.Context, query string, args []any) ([]question.Attempt, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []question.Attempt
	for rows.Next() {
		a, err := store.ScanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) AttemptedIDs(ctx context.Context, userID string) (map[string]bool, error) {
	query, args := s.q.AttemptedIDs(userID)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempted ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan attempted id: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (s *Store) RecentSessions(ctx context.Context, userID string, limit int) ([]store.SessionRecord, error) {
	query, args := s.q.RecentSessions(userID, limit)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []store.SessionRecord
	for rows.Next() {
		rec, err := store.ScanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Session(ctx context.Context, id string) (store.SessionRecord, error) {
	query, args := s.q.Session(id)
	rec, err := store.ScanSession(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.SessionRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.SessionRecord{}, fmt.Errorf("query session %s: %w", id, err)
	}
	return rec, nil
}
