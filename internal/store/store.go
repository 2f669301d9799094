// Package store persists completed and suspended interview sessions in
// a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hiresight/hiresight/internal/session"
)

// ErrNotFound is returned when no session exists with the given id.
var ErrNotFound = errors.New("session not found")

// Store wraps the SQLite database. Safe for concurrent use; database/sql
// pools connections and the busy timeout covers writer contention.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default database location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hiresight", "hiresight.db")
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	candidate_name  TEXT NOT NULL,
	candidate_email TEXT NOT NULL DEFAULT '',
	position        TEXT NOT NULL DEFAULT '',
	scenario_id     TEXT NOT NULL,
	state           TEXT NOT NULL,
	outcome         TEXT NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL,
	completed_at    INTEGER,
	data            TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);
`

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession upserts the full session. Called at the terminal
// transition and as a checkpoint on suspension, so the same id may be
// written more than once.
func (s *Store) SaveSession(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	outcome := ""
	if sess.Recommendation != nil {
		outcome = string(sess.Recommendation.Outcome)
	}
	var completedAt any
	if !sess.CompletedAt.IsZero() {
		completedAt = sess.CompletedAt.Unix()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, candidate_name, candidate_email, position, scenario_id, state, outcome, created_at, completed_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			outcome = excluded.outcome,
			completed_at = excluded.completed_at,
			data = excluded.data
	`, sess.ID.String(), sess.Candidate.Name, sess.Candidate.Email, sess.Candidate.Position,
		sess.ScenarioID, string(sess.State), outcome, sess.CreatedAt.Unix(), completedAt, string(data))
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

// LoadSession returns the full session with the given id.
func (s *Store) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM sessions WHERE id = ?`, id.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

// Summary is the list view of a persisted session.
type Summary struct {
	ID          uuid.UUID
	Candidate   string
	Position    string
	ScenarioID  string
	State       session.State
	Outcome     string
	CreatedAt   time.Time
	CompletedAt time.Time
}

// ListSessions returns summaries of all persisted sessions, newest
// first.
func (s *Store) ListSessions(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, candidate_name, position, scenario_id, state, outcome, created_at, completed_at
		FROM sessions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum         Summary
			id          string
			createdAt   int64
			completedAt sql.NullInt64
		)
		if err := rows.Scan(&id, &sum.Candidate, &sum.Position, &sum.ScenarioID,
			&sum.State, &sum.Outcome, &createdAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse session id %q: %w", id, err)
		}
		sum.CreatedAt = time.Unix(createdAt, 0).UTC()
		if completedAt.Valid {
			sum.CompletedAt = time.Unix(completedAt.Int64, 0).UTC()
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// ExportJSON returns the session serialized as indented JSON, suitable
// for handing to external reviewers or the dashboard.
func (s *Store) ExportJSON(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sess, err := s.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", id, err)
	}
	return data, nil
}
