package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/contactform/internal/contact"
	"github.com/vango-dev/contactform/internal/errors"
)

func validateCmd() *cobra.Command {
	var (
		values  = make(map[string]*string, len(contact.FieldNames))
		asJSON  bool
		flagFor = map[string]string{
			contact.FieldFirstName: "first-name",
			contact.FieldLastName:  "last-name",
			contact.FieldEmail:     "email",
			contact.FieldMessage:   "message",
		}
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate contact form values",
		Long: `Run the contact form's submit on the given values.

Prints the submitted snapshot when every required field passes,
otherwise prints one line per failing field and exits non-zero.

Examples:
  contactform validate --first-name=scout --last-name=reilly --email=test@test.com
  contactform validate --email=scoutreilly.com --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := make(map[string]string, len(values))
			for name, v := range values {
				fields[name] = *v
			}
			return runValidate(cmd.OutOrStdout(), fields, asJSON)
		},
	}

	labels := contact.New().Labels()
	for _, name := range contact.FieldNames {
		values[name] = cmd.Flags().String(flagFor[name], "", labels[name]+" value")
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

// validateResult is the JSON output of validate.
type validateResult struct {
	Submitted *contact.Submission `json:"submitted,omitempty"`
	Errors    map[string]string   `json:"errors,omitempty"`
	Error     json.RawMessage     `json:"error,omitempty"`
}

func runValidate(w io.Writer, fields map[string]string, asJSON bool) error {
	f := contact.New()
	for _, name := range contact.FieldNames {
		if err := f.SetField(name, fields[name]); err != nil {
			return err
		}
	}
	sub, ok := f.Submit()

	var rejected *errors.Error
	if !ok {
		rejected = errors.New("CF050").WithDetail(fmt.Sprintf("%d field(s) failed validation.", len(f.Errors())))
	}

	if asJSON {
		res := validateResult{}
		if ok {
			res.Submitted = &sub
		} else {
			res.Errors = make(map[string]string)
			for _, e := range f.Errors() {
				res.Errors[e.Field] = e.Message
			}
			res.Error = json.RawMessage(rejected.FormatJSON())
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if ok {
		success(w, "Submitted")
		info(w, "First Name: %s", sub.FirstName)
		info(w, "Last Name: %s", sub.LastName)
		info(w, "Email: %s", sub.Email)
		if sub.HasMessage() {
			info(w, "Message: %s", sub.Message)
		}
	} else {
		for _, e := range f.Errors() {
			errorMsg(w, "Error: %s", e.Error())
		}
	}

	if !ok {
		return rejected
	}
	return nil
}
