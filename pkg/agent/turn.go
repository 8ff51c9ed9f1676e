package agent

import "time"

// Turn is one completed exchange. User is the sanitized message that was
// sent to the model and Assistant always starts with the signature marker.
type Turn struct {
	User      string
	Assistant string
	CreatedAt time.Time
}
