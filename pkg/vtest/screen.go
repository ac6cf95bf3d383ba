package vtest

import (
	"regexp"
	"strings"
	"testing"

	"github.com/vango-dev/contactform/pkg/vdom"
)

// Screen is a mounted component with testing-library style queries.
type Screen struct {
	t       testing.TB
	comp    vdom.Component
	tree    *vdom.VNode
	history []*vdom.VNode // earlier renders, oldest first
	focused string        // id of the focused control
}

// Render mounts the component and renders it once.
func Render(t testing.TB, comp vdom.Component) *Screen {
	t.Helper()
	s := &Screen{t: t, comp: comp}
	s.rerender()
	return s
}

// rerender renders the component again and replaces the queried tree.
func (s *Screen) rerender() {
	if s.tree != nil {
		s.history = append(s.history, s.tree)
	}
	s.tree = vdom.Expand(s.comp.Render())
}

// HTML returns the current tree rendered to HTML.
func (s *Screen) HTML() string {
	return RenderToString(s.tree)
}

// matcher compiles a case-insensitive pattern.
func (s *Screen) matcher(pattern string) func(string) bool {
	s.t.Helper()
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		s.t.Fatalf("vtest: bad pattern %q: %v", pattern, err)
	}
	return re.MatchString
}

// QueryAllByText returns every element whose own text matches the pattern.
func (s *Screen) QueryAllByText(pattern string) []*vdom.VNode {
	s.t.Helper()
	match := s.matcher(pattern)
	return vdom.FindAll(s.tree, func(n *vdom.VNode) bool {
		return n.Kind == vdom.KindElement && match(ownText(n))
	})
}

// QueryByText returns the first element whose own text matches, or nil.
func (s *Screen) QueryByText(pattern string) *vdom.VNode {
	s.t.Helper()
	all := s.QueryAllByText(pattern)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// GetByText is QueryByText that fails the test when nothing matches.
func (s *Screen) GetByText(pattern string) *vdom.VNode {
	s.t.Helper()
	n := s.QueryByText(pattern)
	if n == nil {
		s.t.Fatalf("vtest: no element with text matching %q in:\n%s", pattern, truncate(s.HTML(), 1000))
	}
	return n
}

// QueryByTestID returns the element with the given data-testid, or nil.
func (s *Screen) QueryByTestID(id string) *vdom.VNode {
	return vdom.FindByTestID(s.tree, id)
}

// QueryAllByTestID returns every element with the given data-testid.
func (s *Screen) QueryAllByTestID(id string) []*vdom.VNode {
	return vdom.FindAll(s.tree, func(n *vdom.VNode) bool {
		return n.Kind == vdom.KindElement && n.Attr("data-testid") == id
	})
}

// GetByLabelText returns the control labelled by text matching the pattern.
func (s *Screen) GetByLabelText(pattern string) *vdom.VNode {
	s.t.Helper()
	n := vdom.FindByLabelText(s.tree, s.matcher(pattern))
	if n == nil {
		s.t.Fatalf("vtest: no control labelled %q in:\n%s", pattern, truncate(s.HTML(), 1000))
	}
	return n
}

// GetByRole returns the only element with the role; zero or several fail
// the test.
func (s *Screen) GetByRole(role string) *vdom.VNode {
	s.t.Helper()
	all := vdom.FindByRole(s.tree, role)
	if len(all) != 1 {
		s.t.Fatalf("vtest: expected one element with role %q, found %d", role, len(all))
	}
	return all[0]
}

// Type focuses the control and types text into it one rune at a time.
// An empty text only moves focus.
func (s *Screen) Type(node *vdom.VNode, text string) {
	s.t.Helper()
	node = s.current(node)
	s.focus(node)
	node = s.current(node)

	value := valueOf(node)
	for _, r := range text {
		value += string(r)
		s.dispatch(node, "input", value)
		node = s.current(node)
	}
}

// Clear empties the control with a single input event.
func (s *Screen) Clear(node *vdom.VNode) {
	s.t.Helper()
	node = s.current(node)
	s.focus(node)
	s.dispatch(s.current(node), "input", "")
}

// Blur removes focus from the focused control. Like a browser, it commits
// the value with a change event before the blur event.
func (s *Screen) Blur() {
	s.t.Helper()
	if s.focused == "" {
		return
	}
	id := s.focused
	s.focused = ""
	if prev := vdom.FindByID(s.tree, id); prev != nil && prev.Handler("change") != nil {
		s.dispatch(prev, "change", valueOf(prev))
	}
	if prev := vdom.FindByID(s.tree, id); prev != nil && prev.Handler("blur") != nil {
		s.dispatch(prev, "blur", valueOf(prev))
	}
}

// Click clicks the element. Clicking a submit button submits its form.
func (s *Screen) Click(node *vdom.VNode) {
	s.t.Helper()
	node = s.current(node)
	s.Blur()
	node = s.current(node)

	if node.Handler("click") != nil {
		s.dispatch(node, "click", "")
	}
	if !isSubmitButton(node) {
		return
	}
	ancestors := vdom.Ancestors(s.tree, node)
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].Tag == "form" {
			if ancestors[i].Handler("submit") != nil {
				s.dispatch(ancestors[i], "submit", "")
			}
			return
		}
	}
}

func (s *Screen) focus(node *vdom.VNode) {
	s.t.Helper()
	id := node.Attr("id")
	if s.focused != "" && s.focused != id {
		s.Blur()
	}
	s.focused = id
}

func (s *Screen) dispatch(node *vdom.VNode, event, value string) {
	s.t.Helper()
	h := node.Handler(event)
	if h == nil {
		s.t.Fatalf("vtest: <%s> has no %s handler", node.Tag, event)
	}
	if err := vdom.Invoke(h, value); err != nil {
		s.t.Fatalf("vtest: %s handler: %v", event, err)
	}
	s.rerender()
}

// current maps a node from an earlier render to the same element in the
// latest render: by id, else by its position among elements of its tag.
func (s *Screen) current(node *vdom.VNode) *vdom.VNode {
	if id := node.Attr("id"); id != "" {
		if n := vdom.FindByID(s.tree, id); n != nil {
			return n
		}
	}
	if vdom.Find(s.tree, func(n *vdom.VNode) bool { return n == node }) != nil {
		return node
	}
	for i := len(s.history) - 1; i >= 0; i-- {
		k := indexOfTag(s.history[i], node)
		if k < 0 {
			continue
		}
		if same := sameTag(s.tree, node.Tag); k < len(same) {
			return same[k]
		}
		break
	}
	return node
}

func sameTag(root *vdom.VNode, tag string) []*vdom.VNode {
	return vdom.FindAll(root, func(n *vdom.VNode) bool {
		return n.Kind == vdom.KindElement && n.Tag == tag
	})
}

// indexOfTag returns node's position among the elements of its tag in
// root, or -1.
func indexOfTag(root, node *vdom.VNode) int {
	for i, n := range sameTag(root, node.Tag) {
		if n == node {
			return i
		}
	}
	return -1
}

func valueOf(node *vdom.VNode) string {
	if node.Tag == "textarea" {
		return vdom.TextContent(node)
	}
	return node.Attr("value")
}

func isSubmitButton(node *vdom.VNode) bool {
	switch node.Tag {
	case "button":
		t := node.Attr("type")
		return t == "" || t == "submit"
	case "input":
		return node.Attr("type") == "submit"
	}
	return false
}

// ownText joins the element's direct text children.
func ownText(n *vdom.VNode) string {
	var b strings.Builder
	for _, c := range n.Children {
		if c.Kind == vdom.KindText {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}
