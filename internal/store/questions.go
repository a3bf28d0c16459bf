package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/topic"
)

func (s *Store) UpsertQuestions(ctx context.Context, qs []question.Question) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range qs {
		query, args, err := s.q.UpsertQuestion(q)
		if err != nil {
			return 0, fmt.Errorf("question %s: %w", q.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert question %s: %w", q.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(qs), nil
}

func (s *Store) FetchQuestions(ctx context.Context, t topic.Topic, limit int) ([]question.Question, error) {
	if limit <= 0 {
		return nil, nil
	}
	query, args := s.q.FetchQuestions(t, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s questions: %w", t, err)
	}
	defer rows.Close()

	var out []question.Question
	for rows.Next() {
		q, err := ScanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) Question(ctx context.Context, id string) (question.Question, error) {
	query, args := s.q.Question(id)
	q, err := ScanQuestion(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return question.Question{}, ErrNotFound
	}
	if err != nil {
		return question.Question{}, fmt.Errorf("query question %s: %w", id, err)
	}
	return q, nil
}

func (s *Store) CountQuestions(ctx context.Context) (map[topic.Topic]int, error) {
	query, args := s.q.CountQuestions()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	defer rows.Close()

	out := make(map[topic.Topic]int)
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		t, err := topic.Parse(name)
		if err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, rows.Err()
}
