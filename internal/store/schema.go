package store

import "strings"

// SQLiteSchema creates the store's tables in SQLite. Timestamps are unix
// milliseconds.
var SQLiteSchema = []string{
	`CREATE TABLE IF NOT EXISTS questions (
		id            TEXT PRIMARY KEY,
		topic         TEXT NOT NULL,
		passage_id    TEXT NOT NULL DEFAULT '',
		passage_text  TEXT NOT NULL DEFAULT '',
		prompt        TEXT NOT NULL,
		options       TEXT NOT NULL,
		correct_index INTEGER NOT NULL,
		explanation   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS questions_topic ON questions (topic)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		mode            TEXT NOT NULL,
		topics          TEXT NOT NULL,
		total_questions INTEGER NOT NULL,
		answered        INTEGER NOT NULL,
		correct         INTEGER NOT NULL,
		score           INTEGER NOT NULL,
		outcome         TEXT NOT NULL,
		started_at      INTEGER NOT NULL,
		ended_at        INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_user ON sessions (user_id, ended_at)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		seq             INTEGER PRIMARY KEY,
		user_id         TEXT NOT NULL,
		session_id      TEXT NOT NULL,
		question_id     TEXT NOT NULL,
		topic           TEXT NOT NULL,
		selected_option TEXT NOT NULL,
		correct         INTEGER NOT NULL,
		mode            TEXT NOT NULL,
		answered_at     INTEGER NOT NULL,
		UNIQUE (session_id, question_id)
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_user ON attempts (user_id, seq)`,
}

// PostgresSchema creates the same tables in PostgreSQL. The attempts
// sequence comes from a BIGSERIAL column instead of the sequence table.
var PostgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS questions (
		id            TEXT PRIMARY KEY,
		topic         TEXT NOT NULL,
		passage_id    TEXT NOT NULL DEFAULT '',
		passage_text  TEXT NOT NULL DEFAULT '',
		prompt        TEXT NOT NULL,
		options       TEXT NOT NULL,
		correct_index INTEGER NOT NULL,
		explanation   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS questions_topic ON questions (topic)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		mode            TEXT NOT NULL,
		topics          TEXT NOT NULL,
		total_questions INTEGER NOT NULL,
		answered        INTEGER NOT NULL,
		correct         INTEGER NOT NULL,
		score           INTEGER NOT NULL,
		outcome         TEXT NOT NULL,
		started_at      BIGINT NOT NULL,
		ended_at        BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_user ON sessions (user_id, ended_at)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		seq             BIGSERIAL PRIMARY KEY,
		user_id         TEXT NOT NULL,
		session_id      TEXT NOT NULL,
		question_id     TEXT NOT NULL,
		topic           TEXT NOT NULL,
		selected_option TEXT NOT NULL,
		correct         BOOLEAN NOT NULL,
		mode            TEXT NOT NULL,
		answered_at     BIGINT NOT NULL,
		UNIQUE (session_id, question_id)
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_user ON attempts (user_id, seq)`,
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(stmt, "\n")
	return strings.TrimSpace(line)
}
