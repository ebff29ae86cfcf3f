package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store persists active sessions keyed by session ID. The value is the
// username that opened the session. Implementations must expire entries
// after the given TTL.
type Store interface {
	Put(ctx context.Context, id, username string, ttl time.Duration) error
	Get(ctx context.Context, id string) (string, error)
	// Refresh extends the TTL of an existing session. Returns ErrNotFound
	// if the session no longer exists.
	Refresh(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
