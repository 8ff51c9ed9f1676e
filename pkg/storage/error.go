package storage

// NotFoundError is returned when a session has no records.
type NotFoundError struct {
	SessionID string
}

func (e NotFoundError) Error() string {
	if e.SessionID == "" {
		return "session not found"
	}

	return "session not found: " + e.SessionID
}
