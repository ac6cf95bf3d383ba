// Package vtest provides testing helpers for components.
//
// Render mounts a component and returns a Screen that can be queried and
// driven the way a user would drive the page:
//
//	func TestContactForm_ShortFirstName(t *testing.T) {
//	    screen := vtest.Render(t, contact.New())
//
//	    screen.Type(screen.GetByLabelText("first name"), "name")
//
//	    if n := len(screen.QueryAllByText("must have at least 5 characters")); n != 1 {
//	        t.Errorf("expected one error, got %d", n)
//	    }
//	}
//
// Text and label patterns are case-insensitive regular expressions.
//
// Type sends one input event per rune, like a user typing. Moving to another
// control or clicking a button blurs the previously focused control. Click on
// a submit button submits the enclosing form. The component is re-rendered
// after every event.
//
// # Render Assertions
//
// Assert on rendered HTML output:
//
//	vtest.ExpectContains(t, comp.Render(), "You Submitted:")
//	vtest.ExpectNotContains(t, comp.Render(), "messageDisplay")
package vtest
