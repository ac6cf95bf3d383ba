package vdom

import "fmt"

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "click" becomes "onclick").
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// OnInput handles input events (fired when value changes).
func OnInput(handler any) EventHandler { return event("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler any) EventHandler { return event("change", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) EventHandler { return event("blur", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) EventHandler { return event("submit", handler) }

// Invoke calls a handler with the event value.
//
// Supported shapes are func(), func(string) and func(string) error.
// A func() handler ignores the value.
func Invoke(handler any, value string) error {
	switch h := handler.(type) {
	case nil:
		return fmt.Errorf("vdom: nil handler")
	case func():
		h()
		return nil
	case func(string):
		h(value)
		return nil
	case func(string) error:
		return h(value)
	default:
		return fmt.Errorf("vdom: unsupported handler type %T", handler)
	}
}
