package contact

import (
	"fmt"

	"github.com/vango-dev/contactform/pkg/form"
)

// Field names, as used in form posts, live events and error messages.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldMessage   = "message"
)

// FirstNameMinLength is the minimum rune length of the first name.
const FirstNameMinLength = 5

// FieldNames lists the fields in display order.
var FieldNames = []string{FieldFirstName, FieldLastName, FieldEmail, FieldMessage}

// Submission is the snapshot of field values taken at a successful submit.
type Submission struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Message   string `json:"message,omitempty"`
}

// HasMessage reports whether the optional message was provided.
func (s Submission) HasMessage() bool {
	return s.Message != ""
}

// Hooks observe the outcome of submit attempts.
type Hooks struct {
	// OnSubmit is called after a successful submit.
	OnSubmit func(Submission)

	// OnReject is called when a submit attempt fails validation.
	OnReject func(errs []form.ValidationError)

	// OnFieldError is called when a field change or blur leaves the field
	// failing its rule.
	OnFieldError func(err form.ValidationError)
}

// Option configures a Form.
type Option func(*Form)

// WithHooks installs submit observers.
func WithHooks(h Hooks) Option {
	return func(f *Form) {
		f.hooks = h
	}
}

// Form is the contact form state and validator.
type Form struct {
	fields    *form.Form
	submitted *Submission
	hooks     Hooks
}

// New creates an empty contact form.
func New(opts ...Option) *Form {
	f := &Form{
		fields: form.New(
			form.Field{
				Name:       FieldFirstName,
				Label:      "First Name",
				Validators: []form.Validator{form.MinLength(FirstNameMinLength, "")},
			},
			form.Field{
				Name:       FieldLastName,
				Label:      "Last Name",
				Validators: []form.Validator{form.Required("")},
			},
			form.Field{
				Name:       FieldEmail,
				Label:      "Email",
				Validators: []form.Validator{form.Email("")},
			},
			form.Field{
				Name:  FieldMessage,
				Label: "Message",
			},
		),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetField updates a field and recomputes that field's error.
func (f *Form) SetField(name, value string) error {
	if err := f.fields.Set(name, value); err != nil {
		return err
	}
	f.validate(name)
	return nil
}

// Blur recomputes a field's error without changing its value.
func (f *Form) Blur(name string) error {
	if !f.fields.Has(name) {
		return fmt.Errorf("%w: %q", form.ErrUnknownField, name)
	}
	f.validate(name)
	return nil
}

func (f *Form) validate(name string) {
	if f.fields.ValidateField(name) || f.hooks.OnFieldError == nil {
		return
	}
	if err, ok := f.fields.FieldError(name); ok {
		f.hooks.OnFieldError(err)
	}
}

// Submit validates every field. When all rules pass it records and returns
// the submitted values; otherwise it clears any previous submission and
// returns false, leaving the field values unchanged.
func (f *Form) Submit() (Submission, bool) {
	if !f.fields.Validate() {
		f.submitted = nil
		if f.hooks.OnReject != nil {
			f.hooks.OnReject(f.fields.ErrorList())
		}
		return Submission{}, false
	}

	s := f.Values()
	f.submitted = &s
	if f.hooks.OnSubmit != nil {
		f.hooks.OnSubmit(s)
	}
	return s, true
}

// Submitted returns the values of the last successful submit.
func (f *Form) Submitted() (Submission, bool) {
	if f.submitted == nil {
		return Submission{}, false
	}
	return *f.submitted, true
}

// Values returns the current field values.
func (f *Form) Values() Submission {
	return Submission{
		FirstName: f.fields.Get(FieldFirstName),
		LastName:  f.fields.Get(FieldLastName),
		Email:     f.fields.Get(FieldEmail),
		Message:   f.fields.Get(FieldMessage),
	}
}

// Get returns the current value of one field.
func (f *Form) Get(name string) string {
	return f.fields.Get(name)
}

// Errors returns the current errors in display order.
func (f *Form) Errors() []form.ValidationError {
	return f.fields.ErrorList()
}

// FieldError returns the current error of one field.
func (f *Form) FieldError(name string) (form.ValidationError, bool) {
	return f.fields.FieldError(name)
}

// Labels returns field labels keyed by field name.
func (f *Form) Labels() map[string]string {
	labels := make(map[string]string, len(FieldNames))
	for _, field := range f.fields.Fields() {
		labels[field.Name] = field.Label
	}
	return labels
}

// State is the serializable state of a contact form.
type State struct {
	Form      form.Snapshot `json:"form"`
	Submitted *Submission   `json:"submitted,omitempty"`
}

// State captures the form for a later Restore.
func (f *Form) State() State {
	st := State{Form: f.fields.Snapshot()}
	if f.submitted != nil {
		s := *f.submitted
		st.Submitted = &s
	}
	return st
}

// Restore replaces the form's state. Hooks are not fired.
func (f *Form) Restore(st State) {
	f.fields.Restore(st.Form)
	f.submitted = nil
	if st.Submitted != nil {
		s := *st.Submitted
		f.submitted = &s
	}
}
