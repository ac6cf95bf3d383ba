// Package contact implements the contact form component.
//
// The component owns a form with four fields (firstName, lastName, email,
// message), validates a field whenever it changes or loses focus, validates
// every field on submit, and after a successful submit shows the submitted
// values back to the user.
//
// Rules:
//
//   - firstName must have at least 5 characters
//   - lastName is required
//   - email must be a valid email address
//   - message is free text
//
// A Form is owned by a single goroutine: one HTTP request or one live
// connection loop.
package contact
