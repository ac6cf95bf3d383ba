package vtest_test

import (
	"testing"

	"github.com/vango-dev/contactform/pkg/vdom"
	"github.com/vango-dev/contactform/pkg/vtest"
)

// echo is a small component: a form whose input mirrors into a paragraph.
type echo struct {
	value     string
	blurs     int
	submitted bool
	clicks    int
}

func (e *echo) Render() *vdom.VNode {
	return vdom.Div(
		vdom.Form(
			vdom.OnSubmit(func() { e.submitted = true }),
			vdom.Label(vdom.For("name"), vdom.Text("Your Name")),
			vdom.Input(
				vdom.ID("name"),
				vdom.Value(e.value),
				vdom.OnInput(func(v string) { e.value = v }),
				vdom.OnBlur(func(string) { e.blurs++ }),
			),
			vdom.Label(vdom.For("other"), vdom.Text("Other")),
			vdom.Input(vdom.ID("other")),
			vdom.Button(vdom.Type("submit"), vdom.Text("Send")),
		),
		vdom.Button(vdom.Type("button"), vdom.OnClick(func() { e.clicks++ }), vdom.Text("Ping")),
		vdom.P(vdom.TestID("echo"), vdom.Text("Echo: "+e.value)),
	)
}

func TestScreenTypeAccumulates(t *testing.T) {
	e := &echo{}
	screen := vtest.Render(t, e)

	screen.Type(screen.GetByLabelText("your name"), "abc")
	if e.value != "abc" {
		t.Errorf("value = %q, want abc", e.value)
	}
	if got := vdom.TextContent(screen.QueryByTestID("echo")); got != "Echo: abc" {
		t.Errorf("echo = %q", got)
	}

	screen.Type(screen.GetByLabelText("your name"), "d")
	if e.value != "abcd" {
		t.Errorf("typing again should append, got %q", e.value)
	}
}

func TestScreenBlurOnFocusChange(t *testing.T) {
	e := &echo{}
	screen := vtest.Render(t, e)

	screen.Type(screen.GetByLabelText("your name"), "x")
	if e.blurs != 0 {
		t.Fatalf("blurs = %d before moving focus", e.blurs)
	}
	screen.Type(screen.GetByLabelText("^other$"), "")
	if e.blurs != 1 {
		t.Errorf("blurs = %d, want 1 after focus moved", e.blurs)
	}
}

func TestScreenClickSubmitsForm(t *testing.T) {
	e := &echo{}
	screen := vtest.Render(t, e)

	screen.Click(screen.GetByText("^send$"))
	if !e.submitted {
		t.Error("clicking a submit button should submit the form")
	}

	screen.Click(screen.GetByText("ping"))
	if e.clicks != 1 {
		t.Errorf("clicks = %d, want 1", e.clicks)
	}
}

func TestScreenClickSubmitsAfterBlurRerender(t *testing.T) {
	tests := []struct {
		name  string
		stale bool
	}{
		{"button queried before typing", true},
		{"button queried after typing", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &echo{}
			screen := vtest.Render(t, e)
			send := screen.GetByText("^send$")

			screen.Type(screen.GetByLabelText("your name"), "abc")
			if !tt.stale {
				send = screen.GetByText("^send$")
			}
			screen.Click(send)

			if e.blurs != 1 {
				t.Errorf("blurs = %d, want 1", e.blurs)
			}
			if !e.submitted {
				t.Error("form not submitted after the focused field blurred")
			}
		})
	}
}

func TestScreenBlurCommitsChange(t *testing.T) {
	var events []string
	var value string
	comp := vdom.Func(func() *vdom.VNode {
		return vdom.Div(
			vdom.Label(vdom.For("city"), vdom.Text("City")),
			vdom.Input(
				vdom.ID("city"),
				vdom.Value(value),
				vdom.OnInput(func(v string) { value = v }),
				vdom.OnChange(func(v string) { events = append(events, "change:"+v) }),
				vdom.OnBlur(func(string) { events = append(events, "blur") }),
			),
		)
	})
	screen := vtest.Render(t, comp)

	screen.Type(screen.GetByLabelText("city"), "Oslo")
	screen.Blur()

	if len(events) != 2 || events[0] != "change:Oslo" || events[1] != "blur" {
		t.Errorf("events = %v, want [change:Oslo blur]", events)
	}
}

func TestScreenClear(t *testing.T) {
	e := &echo{}
	screen := vtest.Render(t, e)

	screen.Type(screen.GetByLabelText("your name"), "abc")
	screen.Clear(screen.GetByLabelText("your name"))
	if e.value != "" {
		t.Errorf("value = %q after Clear", e.value)
	}
	if got := vdom.TextContent(screen.QueryByTestID("echo")); got != "Echo: " {
		t.Errorf("echo = %q", got)
	}
}

func TestScreenQueries(t *testing.T) {
	screen := vtest.Render(t, &echo{value: "hi"})

	if screen.QueryByText("no such text") != nil {
		t.Error("expected nil for missing text")
	}
	if n := len(screen.QueryAllByText("^echo")); n != 1 {
		t.Errorf("QueryAllByText = %d, want 1", n)
	}
	if n := len(screen.QueryAllByTestID("echo")); n != 1 {
		t.Errorf("QueryAllByTestID = %d, want 1", n)
	}
	if screen.QueryByTestID("missing") != nil {
		t.Error("expected nil for missing test id")
	}
}

func TestRenderAssertions(t *testing.T) {
	node := vdom.Div(vdom.TestID("box"), vdom.Span(vdom.Text("Welcome")))

	vtest.ExpectContains(t, node, "Welcome")
	vtest.ExpectNotContains(t, node, "Goodbye")
	vtest.ExpectElement(t, node, "span")
	vtest.ExpectAttribute(t, node, "data-testid", "box")

	if html := vtest.RenderToString(node); html != `<div data-testid="box"><span>Welcome</span></div>` {
		t.Errorf("RenderToString = %q", html)
	}
}
