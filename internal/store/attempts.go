package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/session"
)

func (s *Store) RecordAnswer(ctx context.Context, ev session.AnswerEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertAttempt(ctx, tx, AttemptRow{
		UserID:    ev.UserID,
		SessionID: ev.SessionID,
		Mode:      string(ev.Mode),
		Record:    ev.Record,
	}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) RecordSession(ctx context.Context, r session.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args, err := s.q.UpsertSession(r)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session %s: %w", r.SessionID, err)
	}
	for _, rec := range r.Answers {
		if err := s.insertAttempt(ctx, tx, AttemptRow{
			UserID:    r.UserID,
			SessionID: r.SessionID,
			Mode:      string(r.Spec.Mode),
			Record:    rec,
		}); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) insertAttempt(ctx context.Context, tx *sql.Tx, row AttemptRow) error {
	seq, err := s.seq.NextIn(ctx, tx)
	if err != nil {
		return err
	}
	row.Seq = seq
	query, args := s.q.InsertAttempt(row)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt %s: %w", row.Record.QuestionID, err)
	}
	return nil
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
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []question.Attempt
	for rows.Next() {
		a, err := ScanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) AttemptedIDs(ctx context.Context, userID string) (map[string]bool, error) {
	query, args := s.q.AttemptedIDs(userID)
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *Store) RecentSessions(ctx context.Context, userID string, limit int) ([]SessionRecord, error) {
	query, args := s.q.RecentSessions(userID, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := ScanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Session(ctx context.Context, id string) (SessionRecord, error) {
	query, args := s.q.Session(id)
	rec, err := ScanSession(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, ErrNotFound
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("query session %s: %w", id, err)
	}
	return rec, nil
}
