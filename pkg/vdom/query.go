package vdom

import "strings"

// Expand returns a copy of the tree with every component node replaced by
// its rendered output. Element and text nodes are shared, not cloned.
func Expand(node *VNode) *VNode {
	if node == nil {
		return nil
	}
	if node.Kind == KindComponent {
		if node.Comp == nil {
			return nil
		}
		return Expand(node.Comp.Render())
	}
	if len(node.Children) == 0 {
		return node
	}

	out := *node
	out.Children = make([]*VNode, 0, len(node.Children))
	for _, child := range node.Children {
		if c := Expand(child); c != nil {
			out.Children = append(out.Children, c)
		}
	}
	return &out
}

// Walk visits the tree depth-first in document order.
// Returning false from visit stops the walk.
func Walk(node *VNode, visit func(*VNode) bool) bool {
	if node == nil {
		return true
	}
	if !visit(node) {
		return false
	}
	for _, child := range node.Children {
		if !Walk(child, visit) {
			return false
		}
	}
	return true
}

// FindAll returns every node matching the predicate, in document order.
func FindAll(root *VNode, match func(*VNode) bool) []*VNode {
	var found []*VNode
	Walk(root, func(n *VNode) bool {
		if match(n) {
			found = append(found, n)
		}
		return true
	})
	return found
}

// Find returns the first node matching the predicate.
func Find(root *VNode, match func(*VNode) bool) *VNode {
	var found *VNode
	Walk(root, func(n *VNode) bool {
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByID returns the element with the given id attribute.
func FindByID(root *VNode, id string) *VNode {
	return Find(root, func(n *VNode) bool {
		return n.Kind == KindElement && n.Attr("id") == id
	})
}

// FindByTestID returns the element with the given data-testid.
func FindByTestID(root *VNode, id string) *VNode {
	return Find(root, func(n *VNode) bool {
		return n.Kind == KindElement && n.Attr("data-testid") == id
	})
}

// FindByLabelText returns the form control whose label text satisfies match.
// The control is the element named by the label's for attribute or, failing
// that, the first control nested inside the label.
func FindByLabelText(root *VNode, match func(string) bool) *VNode {
	labels := FindAll(root, func(n *VNode) bool {
		return n.Kind == KindElement && n.Tag == "label" && match(TextContent(n))
	})
	for _, label := range labels {
		if id := label.Attr("for"); id != "" {
			if control := FindByID(root, id); control != nil {
				return control
			}
		}
		if control := Find(label, isControl); control != nil {
			return control
		}
	}
	return nil
}

// FindByRole returns every element with the given ARIA role, explicit or
// implicit ("button", "textbox", "heading", "form", "alert").
func FindByRole(root *VNode, role string) []*VNode {
	return FindAll(root, func(n *VNode) bool {
		return n.Kind == KindElement && RoleOf(n) == role
	})
}

// RoleOf returns the explicit role attribute or the implicit role of the tag.
func RoleOf(n *VNode) string {
	if n == nil || n.Kind != KindElement {
		return ""
	}
	if role := n.Attr("role"); role != "" {
		return role
	}
	switch n.Tag {
	case "button":
		return "button"
	case "textarea":
		return "textbox"
	case "input":
		switch n.Attr("type") {
		case "submit", "button", "reset":
			return "button"
		case "", "text", "email", "tel", "url":
			return "textbox"
		}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "form":
		return "form"
	}
	return ""
}

// Ancestors returns the chain of nodes from root down to (excluding) target,
// or nil if target is not in the tree.
func Ancestors(root, target *VNode) []*VNode {
	if root == nil || target == nil {
		return nil
	}
	var path []*VNode
	var search func(n *VNode) bool
	search = func(n *VNode) bool {
		if n == target {
			return true
		}
		path = append(path, n)
		for _, child := range n.Children {
			if search(child) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if !search(root) {
		return nil
	}
	return path
}

// TextContent concatenates the text of every text node under n.
func TextContent(n *VNode) string {
	var b strings.Builder
	Walk(n, func(c *VNode) bool {
		if c.Kind == KindText {
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

func isControl(n *VNode) bool {
	if n.Kind != KindElement {
		return false
	}
	switch n.Tag {
	case "input", "textarea", "select":
		return true
	}
	return false
}
