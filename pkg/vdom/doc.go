// Package vdom provides the virtual DOM used to describe contact form views.
//
// A view is a tree of VNode values built on the server. Elements are created
// with variadic factory functions that accept attributes, event handlers,
// children and plain strings:
//
//	Form(OnSubmit(submit),
//	    Label(For("firstName"), Text("First Name*")),
//	    Input(ID("firstName"), Name("firstName"), OnInput(setFirstName)),
//	    Button(Type("submit"), Text("Submit")),
//	)
//
// Event handlers stay on the server. The renderer tags interactive elements
// with hydration ids so that browser events can be routed back to them, and
// the query helpers let tests and the live server inspect a rendered tree
// the way a user would: by label, role, text or test id.
package vdom
