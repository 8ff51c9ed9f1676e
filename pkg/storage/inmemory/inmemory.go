// Package inmemory provides a storage.Driver backed by process memory.
package inmemory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/sparrow/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu guards sessions and order; one driver may back several agents.
	mu sync.RWMutex

	// sessions maps a session ID to its records in append order
	sessions map[string][]*storage.Record

	// order is the session IDs in first-append order
	order []string
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		sessions: make(map[string][]*storage.Record),
	}
}

// Append stores a copy of rec.
func (d *Driver) Append(_ context.Context, rec *storage.Record) error {
	if rec == nil {
		return errors.New("cannot store nil record")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	records, ok := d.sessions[rec.SessionID]
	if !ok {
		d.order = append(d.order, rec.SessionID)
	}
	rec.Seq = len(records) + 1

	stored := *rec
	d.sessions[rec.SessionID] = append(records, &stored)
	return nil
}

// List returns copies of the records of sessionID.
func (d *Driver) List(_ context.Context, sessionID string) ([]*storage.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	records, ok := d.sessions[sessionID]
	if !ok {
		return nil, storage.NotFoundError{SessionID: sessionID}
	}

	out := make([]*storage.Record, 0, len(records))
	for _, r := range records {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

// Sessions returns a summary per session in first-append order.
func (d *Driver) Sessions(_ context.Context) ([]storage.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]storage.Session, 0, len(d.order))
	for _, id := range d.order {
		records := d.sessions[id]
		out = append(out, storage.Session{
			ID:        id,
			Turns:     len(records),
			StartedAt: records[0].CreatedAt,
		})
	}
	return out, nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
