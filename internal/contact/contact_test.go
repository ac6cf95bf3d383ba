package contact

import (
	"errors"
	"testing"

	"github.com/vango-dev/contactform/pkg/form"
)

func fill(t *testing.T, f *Form, values map[string]string) {
	t.Helper()
	for name, value := range values {
		if err := f.SetField(name, value); err != nil {
			t.Fatalf("SetField(%q): %v", name, err)
		}
	}
}

func TestSetFieldValidatesOnlyThatField(t *testing.T) {
	f := New()

	fill(t, f, map[string]string{FieldFirstName: "name"})

	errs := f.Errors()
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want one", errs)
	}
	if got := errs[0].Error(); got != "firstName must have at least 5 characters." {
		t.Errorf("error = %q", got)
	}

	fill(t, f, map[string]string{FieldFirstName: "names"})
	if len(f.Errors()) != 0 {
		t.Errorf("errors after fixing firstName = %v", f.Errors())
	}
}

func TestErrorsOnlyForTouchedFields(t *testing.T) {
	f := New()
	if errs := f.Errors(); len(errs) != 0 {
		t.Fatalf("fresh form errors = %v, want none", errs)
	}

	fill(t, f, map[string]string{FieldEmail: "bad"})
	if errs := f.Errors(); len(errs) != 1 || errs[0].Field != FieldEmail {
		t.Fatalf("errors = %v, want only email", errs)
	}

	if _, ok := f.Submit(); ok {
		t.Fatal("empty names submitted")
	}
	if errs := f.Errors(); len(errs) != 3 {
		t.Errorf("errors after submit = %v, want all three", errs)
	}
}

func TestSetFieldUnknown(t *testing.T) {
	f := New()
	if err := f.SetField("phone", "555"); !errors.Is(err, form.ErrUnknownField) {
		t.Errorf("SetField(phone) = %v, want ErrUnknownField", err)
	}
	if err := f.Blur("phone"); !errors.Is(err, form.ErrUnknownField) {
		t.Errorf("Blur(phone) = %v, want ErrUnknownField", err)
	}
}

func TestBlurValidatesUntouchedField(t *testing.T) {
	f := New()
	if err := f.Blur(FieldLastName); err != nil {
		t.Fatal(err)
	}
	err, ok := f.FieldError(FieldLastName)
	if !ok || err.Error() != "lastName is a required field." {
		t.Errorf("FieldError(lastName) = %v, %v", err, ok)
	}
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name       string
		values     map[string]string
		wantOK     bool
		wantErrors []string
	}{
		{
			name:   "all empty",
			values: map[string]string{},
			wantErrors: []string{
				"firstName must have at least 5 characters.",
				"lastName is a required field.",
				"email must be a valid email address.",
			},
		},
		{
			name:       "empty email",
			values:     map[string]string{FieldFirstName: "scout", FieldLastName: "reilly"},
			wantErrors: []string{"email must be a valid email address."},
		},
		{
			name:       "invalid email",
			values:     map[string]string{FieldFirstName: "scout", FieldLastName: "reilly", FieldEmail: "scoutreilly.com"},
			wantErrors: []string{"email must be a valid email address."},
		},
		{
			name:       "empty last name",
			values:     map[string]string{FieldFirstName: "scout", FieldEmail: "test@test.com"},
			wantErrors: []string{"lastName is a required field."},
		},
		{
			name:   "required only",
			values: map[string]string{FieldFirstName: "scout", FieldLastName: "reilly", FieldEmail: "test@test.com"},
			wantOK: true,
		},
		{
			name:   "whitespace last name is not empty",
			values: map[string]string{FieldFirstName: "scout", FieldLastName: " ", FieldEmail: "test@test.com"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			fill(t, f, tt.values)

			s, ok := f.Submit()
			if ok != tt.wantOK {
				t.Fatalf("Submit() ok = %v, want %v (errors %v)", ok, tt.wantOK, f.Errors())
			}

			errs := f.Errors()
			if len(errs) != len(tt.wantErrors) {
				t.Fatalf("errors = %v, want %v", errs, tt.wantErrors)
			}
			for i, want := range tt.wantErrors {
				if errs[i].Error() != want {
					t.Errorf("errors[%d] = %q, want %q", i, errs[i].Error(), want)
				}
			}

			if ok {
				if s != f.Values() {
					t.Errorf("submission %+v differs from values %+v", s, f.Values())
				}
				if got, _ := f.Submitted(); got != s {
					t.Errorf("Submitted() = %+v, want %+v", got, s)
				}
			} else if _, submitted := f.Submitted(); submitted {
				t.Error("rejected submit left a submission")
			}
		})
	}
}

func TestFailedSubmitClearsPreviousSubmission(t *testing.T) {
	f := New()
	fill(t, f, map[string]string{FieldFirstName: "scout", FieldLastName: "reilly", FieldEmail: "test@test.com"})
	if _, ok := f.Submit(); !ok {
		t.Fatal("first submit rejected")
	}

	fill(t, f, map[string]string{FieldEmail: "nope"})
	if _, ok := f.Submitted(); !ok {
		t.Error("editing a field must not clear the submission")
	}

	if _, ok := f.Submit(); ok {
		t.Fatal("second submit accepted")
	}
	if _, ok := f.Submitted(); ok {
		t.Error("failed submit must clear the previous submission")
	}
	if got := f.Get(FieldEmail); got != "nope" {
		t.Errorf("failed submit changed email to %q", got)
	}
}

func TestSubmissionIsSnapshot(t *testing.T) {
	f := New()
	fill(t, f, map[string]string{FieldFirstName: "scout", FieldLastName: "reilly", FieldEmail: "test@test.com"})
	f.Submit()

	fill(t, f, map[string]string{FieldFirstName: "atticus"})
	s, _ := f.Submitted()
	if s.FirstName != "scout" {
		t.Errorf("submission followed a later edit: %q", s.FirstName)
	}
}

func TestHooks(t *testing.T) {
	var (
		submitted   []Submission
		rejected    [][]form.ValidationError
		fieldErrors []string
	)
	f := New(WithHooks(Hooks{
		OnSubmit:     func(s Submission) { submitted = append(submitted, s) },
		OnReject:     func(errs []form.ValidationError) { rejected = append(rejected, errs) },
		OnFieldError: func(err form.ValidationError) { fieldErrors = append(fieldErrors, err.Field) },
	}))

	fill(t, f, map[string]string{FieldFirstName: "abc"})
	if len(fieldErrors) != 1 || fieldErrors[0] != FieldFirstName {
		t.Errorf("field errors = %v", fieldErrors)
	}

	f.Submit()
	if len(rejected) != 1 || len(rejected[0]) != 3 {
		t.Errorf("rejected = %v", rejected)
	}

	fill(t, f, map[string]string{FieldFirstName: "scout", FieldLastName: "reilly", FieldEmail: "a@b.io", FieldMessage: "hi"})
	f.Submit()
	if len(submitted) != 1 || !submitted[0].HasMessage() {
		t.Errorf("submitted = %v", submitted)
	}
}

func TestStateRestore(t *testing.T) {
	f := New()
	fill(t, f, map[string]string{FieldFirstName: "scout", FieldLastName: "reilly", FieldEmail: "test@test.com"})
	f.Submit()
	fill(t, f, map[string]string{FieldEmail: "bad"})

	st := f.State()

	g := New()
	g.Restore(st)

	if g.Values() != f.Values() {
		t.Errorf("values = %+v, want %+v", g.Values(), f.Values())
	}
	if _, ok := g.FieldError(FieldEmail); !ok {
		t.Error("restored form lost the email error")
	}
	s, ok := g.Submitted()
	if !ok || s.Email != "test@test.com" {
		t.Errorf("restored submission = %+v, %v", s, ok)
	}

	// The restored state must not alias the source.
	st.Submitted.FirstName = "changed"
	if s, _ := g.Submitted(); s.FirstName != "scout" {
		t.Error("Restore aliased the submission")
	}
}

func TestLabels(t *testing.T) {
	labels := New().Labels()
	want := map[string]string{
		FieldFirstName: "First Name",
		FieldLastName:  "Last Name",
		FieldEmail:     "Email",
		FieldMessage:   "Message",
	}
	for k, v := range want {
		if labels[k] != v {
			t.Errorf("label[%s] = %q, want %q", k, labels[k], v)
		}
	}
}
