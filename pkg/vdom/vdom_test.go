package vdom

import (
	"strings"
	"testing"
)

type staticGreeting struct{}

func (staticGreeting) Render() Node {
	return NewElement("p", nil, nil, NewText("hello"))
}

type pointerBadge struct {
	label string
}

func (b *pointerBadge) Render() Node {
	return NewElement("span", nil, nil, NewText("badge"+b.label))
}

func TestToNode(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"string", "hi", "hi"},
		{"int", 42, "42"},
		{"negative_int", -7, "-7"},
		{"int64", int64(9000000000), "9000000000"},
		{"uint", uint(3), "3"},
		{"float", 1.5, "1.5"},
		{"bool_true", true, "true"},
		{"bool_false", false, "false"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTML(ToNode(tt.value)); got != tt.expected {
				t.Errorf("ToNode(%v): expected %q, got %q", tt.value, tt.expected, got)
			}
		})
	}
}

func TestToNodePassesNodesThrough(t *testing.T) {
	el := NewChildlessElement("br", nil, nil)
	if ToNode(el) != Node(el) {
		t.Error("expected the same node back")
	}

	txt := NewText("x")
	if ToNode(txt) != Node(txt) {
		t.Error("expected the same text back")
	}
}

type fakeStringer struct{}

func (fakeStringer) String() string { return "stringed" }

func TestToNodeUsesStringer(t *testing.T) {
	if got := HTML(ToNode(fakeStringer{})); got != "stringed" {
		t.Errorf("expected stringer output, got %q", got)
	}
}

func TestRenderElements(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{
			"childless",
			NewChildlessElement("div", nil, nil),
			"<div></div>",
		},
		{
			"void_tag_no_closing",
			NewChildlessElement("br", nil, nil),
			"<br>",
		},
		{
			"text_child",
			NewElement("p", nil, nil, NewText("hi")),
			"<p>hi</p>",
		},
		{
			"string_attribute",
			NewElement("div", []Attribute{NewAttribute("class", "box")}, nil, NewText("x")),
			`<div class="box">x</div>`,
		},
		{
			"numeric_attribute",
			NewChildlessElement("input", []Attribute{NewAttribute("tabindex", 3)}, nil),
			`<input tabindex="3">`,
		},
		{
			"bool_attribute_true",
			NewChildlessElement("input", []Attribute{NewAttribute("disabled", true)}, nil),
			"<input disabled>",
		},
		{
			"bool_attribute_false",
			NewChildlessElement("input", []Attribute{NewAttribute("disabled", false)}, nil),
			"<input>",
		},
		{
			"nested",
			NewElement("ul", nil, nil, NewList(
				NewElement("li", nil, nil, NewText("one")),
				NewElement("li", nil, nil, NewText("two")),
			)),
			"<ul><li>one</li><li>two</li></ul>",
		},
		{
			"list_of_siblings",
			NewList(NewText("a"), NewText("b")),
			"ab",
		},
		{
			"empty_list",
			NewList(),
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTML(tt.node); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRenderEscapes(t *testing.T) {
	got := HTML(NewElement("p", nil, nil, NewText(`a<b & "c"`)))
	if strings.Contains(got, "<b") || strings.Contains(got, `"c"`) {
		t.Errorf("text not escaped: %q", got)
	}

	got = HTML(NewChildlessElement("div", []Attribute{NewAttribute("title", `">`)}, nil))
	if got != `<div title="&#34;&gt;"></div>` {
		t.Errorf("attribute not escaped: %q", got)
	}
}

func TestEventListenersDoNotSerialize(t *testing.T) {
	fired := false
	listener := Listener(func(Event) { fired = true })

	node := NewElement("button",
		nil,
		[]EventListener{NewEventListener("click", listener)},
		NewText("go"),
	)

	got := HTML(node)
	if got != "<button>go</button>" {
		t.Errorf("expected listeners to be invisible in HTML, got %q", got)
	}
	if fired {
		t.Error("rendering must not invoke listeners")
	}

	// The binding itself is intact and callable.
	node.Events[0].Listener(Event{Name: "click"})
	if !fired {
		t.Error("listener should be callable from the binding")
	}
}

func TestComponentRendering(t *testing.T) {
	node := NewComponent[staticGreeting](nil, nil)

	if node.Name != "staticGreeting" {
		t.Errorf("expected component name staticGreeting, got %q", node.Name)
	}
	if got := HTML(node); got != "<p>hello</p>" {
		t.Errorf("expected rendered component markup, got %q", got)
	}
}

func TestPointerComponentInstantiation(t *testing.T) {
	node := NewComponent[*pointerBadge](nil, nil)

	if node.Name != "pointerBadge" {
		t.Errorf("expected component name pointerBadge, got %q", node.Name)
	}

	// New must allocate the pointee so Render has a receiver.
	if got := HTML(node); got != "<span>badge</span>" {
		t.Errorf("expected rendered pointer component, got %q", got)
	}
}

func TestComponentCarriesBuilderResults(t *testing.T) {
	props := struct{ Done bool }{Done: true}
	node := NewComponent[staticGreeting](props, nil)

	got, ok := node.Props.(struct{ Done bool })
	if !ok || !got.Done {
		t.Errorf("expected props to ride along, got %#v", node.Props)
	}
}

func TestRenderToWriter(t *testing.T) {
	var sb strings.Builder
	err := Render(&sb, NewElement("div", nil, nil, NewText("x")))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if sb.String() != "<div>x</div>" {
		t.Errorf("unexpected output: %q", sb.String())
	}
}
