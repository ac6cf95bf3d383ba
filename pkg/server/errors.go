package server

import "errors"

// Sentinel errors for live channel conditions.
var (
	// ErrHandlerNotFound is returned when no handler is registered for an
	// HID and event at the last render.
	ErrHandlerNotFound = errors.New("server: handler not found")

	// ErrInvalidEvent is returned when a live event is missing its hid or
	// event name.
	ErrInvalidEvent = errors.New("server: invalid live event")

	// ErrServerClosed is returned when a live connection is refused because
	// the server is shutting down.
	ErrServerClosed = errors.New("server: shutting down")
)
