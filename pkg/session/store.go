package session

import (
	"context"
	"errors"
	"time"
)

// SessionStore defines the interface for session persistence backends.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	// Save persists session state. If sessionID already exists, it is
	// overwritten.
	Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error

	// Load retrieves session state by ID.
	// Returns (nil, nil) if the session doesn't exist or has expired.
	Load(ctx context.Context, sessionID string) ([]byte, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Touch updates the expiration time without loading full state.
	// Touching a missing session is not an error.
	Touch(ctx context.Context, sessionID string, expiresAt time.Time) error

	// SaveAll persists multiple sessions. Used during graceful shutdown
	// to save every connected form.
	SaveAll(ctx context.Context, sessions map[string]SessionData) error

	// Close releases any resources held by the store.
	Close() error
}

// SessionData contains serialized session state with metadata.
type SessionData struct {
	// Data is the serialized session state.
	Data []byte

	// ExpiresAt is when the session should expire.
	ExpiresAt time.Time
}

// ErrStoreClosed is returned when operations are attempted on a closed store.
var ErrStoreClosed = errors.New("session: store is closed")
