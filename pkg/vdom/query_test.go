package vdom

import (
	"strings"
	"testing"
)

func sampleTree() *VNode {
	return Div(
		H1(Text("Contact Form")),
		Form(
			Label(For("firstName"), Text("First Name*")),
			Input(ID("firstName"), Name("firstName")),
			Label(Text("Message"), Textarea(Name("message"))),
			Button(Type("submit"), Text("Submit")),
		),
		P(TestID("emailDisplay"), Text("Email: "), Span(Text("a@b.co"))),
	)
}

func TestFindByLabelText(t *testing.T) {
	root := sampleTree()

	first := FindByLabelText(root, func(s string) bool { return strings.Contains(strings.ToLower(s), "first name") })
	if first == nil || first.Attr("id") != "firstName" {
		t.Fatalf("expected firstName input, got %+v", first)
	}

	msg := FindByLabelText(root, func(s string) bool { return strings.HasPrefix(s, "Message") })
	if msg == nil || msg.Tag != "textarea" {
		t.Fatalf("expected nested textarea, got %+v", msg)
	}

	if FindByLabelText(root, func(s string) bool { return s == "Phone" }) != nil {
		t.Error("expected nil for missing label")
	}
}

func TestFindByRole(t *testing.T) {
	root := sampleTree()

	if got := len(FindByRole(root, "button")); got != 1 {
		t.Errorf("buttons = %d, want 1", got)
	}
	if got := len(FindByRole(root, "textbox")); got != 2 {
		t.Errorf("textboxes = %d, want 2", got)
	}
	if got := len(FindByRole(root, "heading")); got != 1 {
		t.Errorf("headings = %d, want 1", got)
	}
	if got := RoleOf(Div(Role("alert"))); got != "alert" {
		t.Errorf("explicit role = %q", got)
	}
}

func TestFindByTestIDAndTextContent(t *testing.T) {
	root := sampleTree()

	n := FindByTestID(root, "emailDisplay")
	if n == nil {
		t.Fatal("emailDisplay not found")
	}
	if got := TextContent(n); got != "Email: a@b.co" {
		t.Errorf("TextContent = %q", got)
	}
	if FindByTestID(root, "messageDisplay") != nil {
		t.Error("messageDisplay should be absent")
	}
}

func TestAncestors(t *testing.T) {
	root := sampleTree()
	button := FindByRole(root, "button")[0]

	path := Ancestors(root, button)
	if len(path) != 2 {
		t.Fatalf("path length = %d, want 2", len(path))
	}
	if path[0] != root || path[1].Tag != "form" {
		t.Errorf("unexpected path: %s, %s", path[0].Tag, path[1].Tag)
	}

	if Ancestors(root, Div()) != nil {
		t.Error("expected nil for detached node")
	}
}

func TestExpand(t *testing.T) {
	inner := Func(func() *VNode { return Span(Text("inner")) })
	root := Div(inner, Text("after"))

	expanded := Expand(root)
	if expanded == root {
		t.Error("Expand should copy nodes with children")
	}
	if expanded.Children[0].Kind != KindElement || expanded.Children[0].Tag != "span" {
		t.Errorf("component not expanded: %+v", expanded.Children[0])
	}
	if root.Children[0].Kind != KindComponent {
		t.Error("original tree must not be modified")
	}
	if TextContent(expanded) != "innerafter" {
		t.Errorf("TextContent = %q", TextContent(expanded))
	}
}

func TestWalkStops(t *testing.T) {
	visited := 0
	Walk(sampleTree(), func(n *VNode) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Errorf("visited = %d, want 3", visited)
	}
}
