// Package storage persists the audit trail of agent turns. Records are only
// ever appended; resetting an agent's transcript does not remove them.
package storage

import (
	"context"
	"time"
)

// Record is one agent turn as written to the audit trail.
type Record struct {
	// ID is assigned by the driver when empty.
	ID string

	// SessionID groups the records of one agent instance.
	SessionID string

	// Seq is the 1-based position of the record within its session,
	// assigned by the driver.
	Seq int

	// User is the sanitized message sent to the model.
	User string

	// Assistant is the signature-prefixed response.
	Assistant string

	// Corrected is true when the signature had to be prepended.
	Corrected bool

	CreatedAt time.Time
}

// Session summarises the records of one session.
type Session struct {
	ID        string
	Turns     int
	StartedAt time.Time
}

// Driver defines the interface for persisting and retrieving audit records.
type Driver interface {
	// Append stores rec, filling in ID, Seq and CreatedAt when unset.
	Append(ctx context.Context, rec *Record) error

	// List returns the records of a session in order. It returns
	// NotFoundError when the session has no records.
	List(ctx context.Context, sessionID string) ([]*Record, error)

	// Sessions returns every session, oldest first.
	Sessions(ctx context.Context) ([]Session, error)

	// Close releases any resources held by the driver.
	Close() error
}
