package form

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Validator is an interface for form field validation.
type Validator interface {
	// Validate checks if the value is valid.
	// Returns nil if valid, or an error with a message if invalid.
	Validate(value string) error
}

// ValidatorFunc is a function that implements Validator.
type ValidatorFunc func(value string) error

func (f ValidatorFunc) Validate(value string) error {
	return f(value)
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// Required validates that the value is non-empty.
func Required(msg string) Validator {
	if msg == "" {
		msg = "is a required field."
	}
	return ValidatorFunc(func(value string) error {
		if value == "" {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// MinLength validates that a string has at least n characters.
// An empty string fails unless the validator is wrapped in Optional.
func MinLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("must have at least %d characters.", n)
	}
	return ValidatorFunc(func(value string) error {
		if utf8.RuneCountInString(value) < n {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// MaxLength validates that a string has at most n characters.
func MaxLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("must have at most %d characters.", n)
	}
	return ValidatorFunc(func(value string) error {
		if utf8.RuneCountInString(value) > n {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// emailPattern requires a local part, an @, and a dotted domain with a
// top-level label of at least two letters.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email validates that the value is a valid email address.
// An empty string fails unless the validator is wrapped in Optional.
func Email(msg string) Validator {
	if msg == "" {
		msg = "must be a valid email address."
	}
	return ValidatorFunc(func(value string) error {
		if !emailPattern.MatchString(value) {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// Pattern validates that a string matches the given regular expression.
// It panics if the pattern does not compile.
func Pattern(pattern string, msg string) Validator {
	re := regexp.MustCompile(pattern)
	if msg == "" {
		msg = "must match the required format."
	}
	return ValidatorFunc(func(value string) error {
		if !re.MatchString(value) {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// Optional skips v when the value is empty.
func Optional(v Validator) Validator {
	return ValidatorFunc(func(value string) error {
		if value == "" {
			return nil
		}
		return v.Validate(value)
	})
}
