// Package session stores detached form state so a live connection that
// drops can resume where it left off.
//
// # Session Storage
//
// The SessionStore interface defines the contract for session persistence:
//
//	store := session.NewMemoryStore()
//	defer store.Close()
//
// # Serialization
//
// Snapshots are versioned JSON envelopes around any JSON-encodable state:
//
//	data, err := session.Encode(id, createdAt, form.State())
//	// Later...
//	snap, err := session.Decode[contact.State](data)
package session
