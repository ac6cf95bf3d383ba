package render

import "github.com/vango-dev/contactform/pkg/vdom"

// isVoidElement returns true if the tag is a void element.
func isVoidElement(tag string) bool {
	return vdom.IsVoidElement(tag)
}

// inlineElements are elements that are typically rendered inline
// and don't need newlines in pretty-printed output.
var inlineElements = map[string]bool{
	"a":        true,
	"br":       true,
	"code":     true,
	"em":       true,
	"label":    true,
	"small":    true,
	"span":     true,
	"strong":   true,
	"textarea": true,
	"button":   true,
	"title":    true,
	"h1":       true,
	"h2":       true,
	"h3":       true,
	"p":        true,
}

// isInlineElement returns true if the tag is an inline element.
func isInlineElement(tag string) bool {
	return inlineElements[tag]
}

// booleanAttrs are rendered without a value when true and omitted when false.
var booleanAttrs = map[string]bool{
	"autofocus":  true,
	"checked":    true,
	"disabled":   true,
	"hidden":     true,
	"multiple":   true,
	"novalidate": true,
	"readonly":   true,
	"required":   true,
	"selected":   true,
}

// isBooleanAttr returns true if the attribute is a boolean attribute.
func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
