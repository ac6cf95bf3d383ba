package form

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownField is returned when a field name is not declared on the form.
var ErrUnknownField = errors.New("form: unknown field")

// Field declares one form field.
type Field struct {
	// Name is the key used in values, errors and error messages.
	Name string

	// Label is the human-readable label shown next to the control.
	Label string

	// Validators run in order; the first failure is the field's error.
	Validators []Validator
}

// Form holds the values, errors and interaction state of a set of fields.
type Form struct {
	fields  []Field
	index   map[string]int
	values  map[string]string
	errors  map[string]ValidationError
	touched map[string]bool
	dirty   map[string]bool
}

// New creates a Form with the given fields in display order.
// It panics on an empty or duplicate field name.
func New(fields ...Field) *Form {
	f := &Form{
		fields:  make([]Field, 0, len(fields)),
		index:   make(map[string]int, len(fields)),
		values:  make(map[string]string, len(fields)),
		errors:  make(map[string]ValidationError),
		touched: make(map[string]bool),
		dirty:   make(map[string]bool),
	}
	for _, field := range fields {
		if field.Name == "" {
			panic("form: field without name")
		}
		if _, dup := f.index[field.Name]; dup {
			panic(fmt.Sprintf("form: duplicate field %q", field.Name))
		}
		f.index[field.Name] = len(f.fields)
		f.fields = append(f.fields, field)
		f.values[field.Name] = ""
	}
	return f
}

// Fields returns the declared fields in display order.
func (f *Form) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Has reports whether the field is declared.
func (f *Form) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Get returns the current value of a field.
func (f *Form) Get(name string) string {
	return f.values[name]
}

// Set updates a single field value without validating it.
func (f *Form) Set(name, value string) error {
	if !f.Has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.values[name] = value
	f.dirty[name] = true
	return nil
}

// Values returns a copy of the current values keyed by field name.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// ValidateField validates a single field, updates its entry in the error map
// and marks it touched. Unknown fields are reported as valid.
func (f *Form) ValidateField(name string) bool {
	i, ok := f.index[name]
	if !ok {
		return true
	}
	f.touched[name] = true

	value := f.values[name]
	for _, v := range f.fields[i].Validators {
		if err := v.Validate(value); err != nil {
			f.errors[name] = toValidationError(name, err)
			return false
		}
	}
	delete(f.errors, name)
	return true
}

// Validate runs every field's validators and returns true if the form is valid.
func (f *Form) Validate() bool {
	valid := true
	for _, field := range f.fields {
		if !f.ValidateField(field.Name) {
			valid = false
		}
	}
	return valid
}

// Errors returns a copy of the validation errors keyed by field name.
func (f *Form) Errors() map[string]ValidationError {
	out := make(map[string]ValidationError, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// ErrorList returns the current errors in field display order.
func (f *Form) ErrorList() []ValidationError {
	list := make([]ValidationError, 0, len(f.errors))
	for _, field := range f.fields {
		if err, ok := f.errors[field.Name]; ok {
			list = append(list, err)
		}
	}
	return list
}

// FieldError returns the error for a specific field.
func (f *Form) FieldError(name string) (ValidationError, bool) {
	err, ok := f.errors[name]
	return err, ok
}

// HasError returns true if the field currently fails validation.
func (f *Form) HasError(name string) bool {
	_, ok := f.errors[name]
	return ok
}

// IsValid returns true if there are no validation errors.
func (f *Form) IsValid() bool {
	return len(f.errors) == 0
}

// IsDirty returns true if any field has been modified.
func (f *Form) IsDirty() bool {
	return len(f.dirty) > 0
}

// FieldDirty returns true if the specific field has been modified.
func (f *Form) FieldDirty(name string) bool {
	return f.dirty[name]
}

// IsTouched returns true if the field has been validated at least once.
func (f *Form) IsTouched(name string) bool {
	return f.touched[name]
}

// Reset clears values, errors and interaction state.
func (f *Form) Reset() {
	for name := range f.values {
		f.values[name] = ""
	}
	f.errors = make(map[string]ValidationError)
	f.touched = make(map[string]bool)
	f.dirty = make(map[string]bool)
}

// Snapshot is the serializable state of a Form.
type Snapshot struct {
	Values  map[string]string `json:"values"`
	Touched []string          `json:"touched,omitempty"`
}

// Snapshot captures values and touched fields.
func (f *Form) Snapshot() Snapshot {
	touched := make([]string, 0, len(f.touched))
	for name := range f.touched {
		touched = append(touched, name)
	}
	sort.Strings(touched)
	return Snapshot{Values: f.Values(), Touched: touched}
}

// Restore replaces the form state with a snapshot. Touched fields are
// revalidated so the error map matches the restored values. Unknown field
// names in the snapshot are ignored.
func (f *Form) Restore(s Snapshot) {
	f.Reset()
	for name, value := range s.Values {
		if f.Has(name) {
			f.values[name] = value
			if value != "" {
				f.dirty[name] = true
			}
		}
	}
	for _, name := range s.Touched {
		f.ValidateField(name)
	}
}

func toValidationError(field string, err error) ValidationError {
	var ve ValidationError
	if errors.As(err, &ve) {
		ve.Field = field
		return ve
	}
	return ValidationError{Field: field, Message: err.Error()}
}
