package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// CurrentSerializationVersion is the current version of the snapshot format.
// Increment when making breaking changes to the format.
const CurrentSerializationVersion = 1

// Snapshot is the JSON envelope stored for a detached session.
type Snapshot[T any] struct {
	// ID is the session identifier.
	ID string `json:"id"`

	// CreatedAt is when the session was first seen.
	CreatedAt time.Time `json:"created_at"`

	// SavedAt is when the snapshot was taken.
	SavedAt time.Time `json:"saved_at"`

	// State is the component state.
	State T `json:"state"`

	// Version is the serialization format version.
	Version int `json:"version"`
}

// Encode serializes state into a versioned snapshot.
func Encode[T any](id string, createdAt time.Time, state T) ([]byte, error) {
	return json.Marshal(Snapshot[T]{
		ID:        id,
		CreatedAt: createdAt,
		SavedAt:   time.Now(),
		State:     state,
		Version:   CurrentSerializationVersion,
	})
}

// Decode parses a snapshot written by Encode. Snapshots from another
// format version are rejected.
func Decode[T any](data []byte) (*Snapshot[T], error) {
	var snap Snapshot[T]
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("session: decode snapshot: %w", err)
	}
	if snap.Version != CurrentSerializationVersion {
		return nil, fmt.Errorf("session: snapshot version %d, want %d", snap.Version, CurrentSerializationVersion)
	}
	return &snap, nil
}
