// Package form provides string-valued form state with field-level validation.
//
// # Overview
//
// A Form is declared as an ordered list of fields, each with its validators:
//
//	f := form.New(
//	    form.Field{Name: "firstName", Label: "First Name", Validators: []form.Validator{form.MinLength(5, "")}},
//	    form.Field{Name: "email", Label: "Email", Validators: []form.Validator{form.Email("")}},
//	    form.Field{Name: "message", Label: "Message"},
//	)
//
//	f.Set("firstName", "scout")
//	f.ValidateField("firstName") // recompute one field
//	if f.Validate() {            // recompute every field
//	    values := f.Values()
//	}
//
// The error map holds an entry for a field only while that field fails its
// most recent validation. Messages follow the "<field> <rule message>" form,
// e.g. "firstName must have at least 5 characters.".
//
// # Validation
//
// Built-in validators:
//
//   - Required: non-empty value
//   - MinLength/MaxLength: rune length constraints
//   - Email: basic email address shape
//   - Pattern: regular expression matching
//   - Optional: wraps a validator so empty values pass
//
// A Form is not safe for concurrent use; it is owned by one request or one
// live connection at a time.
package form
