package contact

import (
	"github.com/vango-dev/contactform/pkg/vdom"
)

// Title is the heading shown above the form.
const Title = "Contact Form"

// placeholders mirror the example values shown in empty inputs.
var placeholders = map[string]string{
	FieldFirstName: "Edd",
	FieldLastName:  "Burke",
	FieldEmail:     "bluebill1049@hotmail.com",
}

// autocomplete hints let browsers fill the contact fields.
var autocomplete = map[string]string{
	FieldFirstName: "given-name",
	FieldLastName:  "family-name",
	FieldEmail:     "email",
}

// Render implements vdom.Component.
func (f *Form) Render() *vdom.VNode {
	return vdom.Div(vdom.Class("contact"),
		vdom.Form(
			vdom.Method("post"),
			vdom.Action("/"),
			vdom.Novalidate(),
			vdom.OnSubmit(func() { f.Submit() }),
			vdom.H1(vdom.Text(Title)),
			vdom.Fieldset(
				vdom.Legend(vdom.Text("Your details")),
				f.textInput(FieldFirstName, "text"),
				f.textInput(FieldLastName, "text"),
				f.textInput(FieldEmail, "email"),
				f.messageInput(),
			),
			vdom.Button(vdom.Type("submit"), vdom.Text("Submit")),
		),
		f.display(),
	)
}

// textInput renders a required single-line field with its error.
func (f *Form) textInput(name, inputType string) *vdom.VNode {
	errNode := f.errorNode(name)
	hasErr := errNode != nil

	return vdom.Div(vdom.Class("field"), vdom.ClassIf(hasErr, "field-error"),
		vdom.Label(vdom.For(name), vdom.Text(f.Labels()[name]+"*")),
		vdom.Input(
			vdom.ID(name),
			vdom.Name(name),
			vdom.Type(inputType),
			vdom.Value(f.Get(name)),
			vdom.Placeholder(placeholders[name]),
			vdom.Autocomplete(autocomplete[name]),
			vdom.AriaInvalid(hasErr),
			describedBy(name, hasErr),
			vdom.OnInput(func(v string) { f.SetField(name, v) }),
			vdom.OnBlur(func(string) { f.Blur(name) }),
		),
		errNode,
	)
}

func (f *Form) messageInput() *vdom.VNode {
	return vdom.Div(vdom.Class("field"),
		vdom.Label(vdom.For(FieldMessage), vdom.Text(f.Labels()[FieldMessage])),
		vdom.Textarea(
			vdom.ID(FieldMessage),
			vdom.Name(FieldMessage),
			vdom.Rows(4),
			vdom.OnInput(func(v string) { f.SetField(FieldMessage, v) }),
			vdom.Text(f.Get(FieldMessage)),
		),
	)
}

func (f *Form) errorNode(name string) *vdom.VNode {
	err, ok := f.FieldError(name)
	if !ok {
		return nil
	}
	return vdom.P(
		vdom.ID(name+"-error"),
		vdom.Class("error"),
		vdom.Role("alert"),
		vdom.TestID("error"),
		vdom.Text("Error: "+err.Error()),
	)
}

func describedBy(name string, hasErr bool) vdom.Attr {
	if !hasErr {
		return vdom.Attr{}
	}
	return vdom.AriaDescribedBy(name + "-error")
}

// display shows the last successful submission. The message line is only
// present when a message was submitted.
func (f *Form) display() *vdom.VNode {
	s, ok := f.Submitted()
	if !ok {
		return nil
	}
	return vdom.Div(vdom.Class("display"), vdom.AriaLive("polite"),
		vdom.H2(vdom.Text("You Submitted:")),
		vdom.P(vdom.TestID("firstnameDisplay"), vdom.Text("First Name: "+s.FirstName)),
		vdom.P(vdom.TestID("lastnameDisplay"), vdom.Text("Last Name: "+s.LastName)),
		vdom.P(vdom.TestID("emailDisplay"), vdom.Text("Email: "+s.Email)),
		vdom.If(s.HasMessage(), vdom.P(vdom.TestID("messageDisplay"), vdom.Text("Message: "+s.Message))),
	)
}
