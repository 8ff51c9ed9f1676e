// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/sparrow/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS turns (
	id             TEXT PRIMARY KEY,
	session_id     TEXT NOT NULL,
	seq            INTEGER NOT NULL,
	user_text      TEXT NOT NULL,
	assistant_text TEXT NOT NULL,
	corrected      INTEGER NOT NULL DEFAULT 0,
	created_at     INTEGER NOT NULL,
	UNIQUE (session_id, seq)
);
CREATE INDEX IF NOT EXISTS turns_session_seq ON turns (session_id, seq);
`

// SQLiteDriver implements storage.Driver using SQLite.
type SQLiteDriver struct {
	db *sql.DB
}

// NewSQLiteDriver opens (and migrates) the database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDriver(dbPath string) (*SQLiteDriver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A ":memory:" database lives per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteDriver{db: db}, nil
}

// Append inserts rec with the next sequence number of its session.
func (d *SQLiteDriver) Append(ctx context.Context, rec *storage.Record) error {
	if rec == nil {
		return errors.New("cannot store nil record")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE session_id = ?`,
		rec.SessionID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, seq, user_text, assistant_text, corrected, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, seq, rec.User, rec.Assistant, rec.Corrected, rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record: %w", err)
	}

	rec.Seq = seq
	return nil
}

// List returns the records of sessionID ordered by sequence.
func (d *SQLiteDriver) List(ctx context.Context, sessionID string) ([]*storage.Record, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, session_id, seq, user_text, assistant_text, corrected, created_at
		 FROM turns WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []*storage.Record
	for rows.Next() {
		var (
			rec     storage.Record
			created int64
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Seq, &rec.User, &rec.Assistant, &rec.Corrected, &created); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.CreatedAt = time.Unix(0, created)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	if len(out) == 0 {
		return nil, storage.NotFoundError{SessionID: sessionID}
	}
	return out, nil
}

// Sessions returns a summary per session, oldest first.
func (d *SQLiteDriver) Sessions(ctx context.Context) ([]storage.Session, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT session_id, COUNT(*), MIN(created_at)
		 FROM turns GROUP BY session_id ORDER BY MIN(created_at), session_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []storage.Session
	for rows.Next() {
		var (
			s       storage.Session
			started int64
		)
		if err := rows.Scan(&s.ID, &s.Turns, &started); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.StartedAt = time.Unix(0, started)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (d *SQLiteDriver) Close() error {
	return d.db.Close()
}
