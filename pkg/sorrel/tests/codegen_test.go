package tests

import (
	goparser "go/parser"
	gotoken "go/token"
	"strings"
	"testing"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/codegen"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
)

func generate(t *testing.T, input string) string {
	t.Helper()

	src, err := codegen.Expression(mustParse(t, input))
	if err != nil {
		t.Fatalf("codegen failed for %q: %s", input, err)
	}
	return src
}

func generateForError(t *testing.T, input string) *serrors.SorrelError {
	t.Helper()

	_, err := codegen.Expression(mustParse(t, input))
	if err == nil {
		t.Fatalf("expected a codegen error for %q", input)
	}
	return err
}

// TestGeneratedExpressions checks the exact constructor calls emitted for
// each markup shape.
func TestGeneratedExpressions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "childless_element",
			input:    "<div></div>",
			expected: `vdom.NewChildlessElement("div", nil, nil)`,
		},
		{
			name:     "void_element",
			input:    "<br>",
			expected: `vdom.NewChildlessElement("br", nil, nil)`,
		},
		{
			name:     "void_element_with_slash",
			input:    "<hr/>",
			expected: `vdom.NewChildlessElement("hr", nil, nil)`,
		},
		{
			name:     "text_child",
			input:    "<div>hi</div>",
			expected: `vdom.NewElement("div", nil, nil, vdom.NewText("hi"))`,
		},
		{
			name:     "property",
			input:    `<div class={cls}>x</div>`,
			expected: `vdom.NewElement("div", []vdom.Attribute{vdom.NewAttribute("class", cls)}, nil, vdom.NewText("x"))`,
		},
		{
			name:     "literal_property",
			input:    `<div class={"box"}>x</div>`,
			expected: `vdom.NewElement("div", []vdom.Attribute{vdom.NewAttribute("class", "box")}, nil, vdom.NewText("x"))`,
		},
		{
			name:     "event",
			input:    `<button @click={h}>go</button>`,
			expected: `vdom.NewElement("button", nil, []vdom.EventListener{vdom.NewEventListener("click", vdom.Listener(h))}, vdom.NewText("go"))`,
		},
		{
			name:     "void_with_attributes",
			input:    `<img src={u} alt={a}>`,
			expected: `vdom.NewChildlessElement("img", []vdom.Attribute{vdom.NewAttribute("src", u), vdom.NewAttribute("alt", a)}, nil)`,
		},
		{
			name:     "interpolation_child",
			input:    "<p>{count}</p>",
			expected: `vdom.NewElement("p", nil, nil, vdom.ToNode(count))`,
		},
		{
			name:     "mixed_children",
			input:    "<p>Hello, {name}!</p>",
			expected: `vdom.NewElement("p", nil, nil, vdom.NewList(vdom.NewText("Hello, "), vdom.ToNode(name), vdom.NewText("!")))`,
		},
		{
			name:     "nested_single_child",
			input:    "<div><span>x</span></div>",
			expected: `vdom.NewElement("div", nil, nil, vdom.NewElement("span", nil, nil, vdom.NewText("x")))`,
		},
		{
			name:     "whitespace_only_body_is_childless",
			input:    "<div>\n  \n</div>",
			expected: `vdom.NewChildlessElement("div", nil, nil)`,
		},
		{
			name:     "top_level_text",
			input:    "hello",
			expected: `vdom.NewText("hello")`,
		},
		{
			name:     "top_level_siblings",
			input:    "<br><br>",
			expected: `vdom.NewList(vdom.NewChildlessElement("br", nil, nil), vdom.NewChildlessElement("br", nil, nil))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := generate(t, tt.input); got != tt.expected {
				t.Errorf("input %q:\nexpected %s\ngot      %s", tt.input, tt.expected, got)
			}
		})
	}
}

// TestEndToEndElement is the full pipeline check: one property, one event,
// and a childless nested element.
func TestEndToEndElement(t *testing.T) {
	got := generate(t, `<div name={"value"} @click={handler}><span></span></div>`)
	expected := `vdom.NewElement("div", []vdom.Attribute{vdom.NewAttribute("name", "value")}, []vdom.EventListener{vdom.NewEventListener("click", vdom.Listener(handler))}, vdom.NewChildlessElement("span", nil, nil))`

	if got != expected {
		t.Errorf("expected %s\ngot      %s", expected, got)
	}
}

func TestAttributeOrderPreserved(t *testing.T) {
	got := generate(t, `<div b={1} a={2} @z={f} @y={g}>x</div>`)

	bIdx := strings.Index(got, `"b"`)
	aIdx := strings.Index(got, `"a"`)
	zIdx := strings.Index(got, `"z"`)
	yIdx := strings.Index(got, `"y"`)

	if bIdx < 0 || aIdx < 0 || zIdx < 0 || yIdx < 0 {
		t.Fatalf("missing attribute names in: %s", got)
	}
	if !(bIdx < aIdx && zIdx < yIdx) {
		t.Errorf("source order not preserved: %s", got)
	}
}

func TestGeneratedExpressionsParseAsGo(t *testing.T) {
	inputs := []string{
		"<div></div>",
		`<div class={cls} @click={h}>text {n} <br></div>`,
		`<ul><li>one</li><li>two</li></ul>`,
		`<Todo done={d} @toggle={f}></Todo>`,
		`<div data={map[string]int{"k": 1}}>x</div>`,
		`<div f={func() string { return "s" }()}>x</div>`,
	}

	for _, input := range inputs {
		src := generate(t, input)
		if _, err := goparser.ParseExpr(src); err != nil {
			t.Errorf("input %q: generated code does not parse: %v\n%s", input, err, src)
		}
	}
}

func TestTextEscaping(t *testing.T) {
	got := generate(t, `<p>say "hi" &amp; wave</p>`)
	expected := `vdom.NewElement("p", nil, nil, vdom.NewText("say \"hi\" &amp; wave"))`
	if got != expected {
		t.Errorf("expected %s\ngot      %s", expected, got)
	}
}

func TestInvalidExpressionDiagnostic(t *testing.T) {
	err := generateForError(t, `<div class={x +}>y</div>`)

	if err.Code != "GEN-0202" {
		t.Fatalf("expected GEN-0202, got %s", err.Code)
	}
	if !strings.Contains(err.Message, `invalid expression "x +"`) {
		t.Errorf("expected the raw expression in the message, got: %s", err.Message)
	}
	if err.Line != 1 || err.Column != 12 {
		t.Errorf("expected position 1:12 (the opening brace), got %d:%d", err.Line, err.Column)
	}
}

func TestInvalidInterpolationDiagnostic(t *testing.T) {
	err := generateForError(t, `<p>{]}</p>`)
	if err.Code != "GEN-0202" {
		t.Fatalf("expected GEN-0202, got %s", err.Code)
	}
}

// TestGeneratedFile checks the emitted file shape: header, package clause,
// import, and a well-formed function.
func TestGeneratedFile(t *testing.T) {
	view := codegen.View{
		Name:   "Greeting",
		Params: "name string",
		Body:   mustParse(t, `<div class={"greeting"}>Hello, {name}!</div>`),
	}

	src, cErr := codegen.File(view, "ui", "greeting.sor")
	if cErr != nil {
		t.Fatalf("File failed: %s", cErr)
	}
	out := string(src)

	for _, want := range []string{
		"// Code generated by sorrel from greeting.sor. DO NOT EDIT.",
		"package ui",
		`import "github.com/sorrel-lang/sorrel/pkg/vdom"`,
		"func Greeting(name string) vdom.Node {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated file missing %q:\n%s", want, out)
		}
	}

	fset := gotoken.NewFileSet()
	if _, err := goparser.ParseFile(fset, "greeting.sor.go", src, 0); err != nil {
		t.Errorf("generated file does not parse: %v\n%s", err, out)
	}
}

func TestGeneratedFileWithoutParams(t *testing.T) {
	view := codegen.View{
		Name:   "Page",
		Params: "",
		Body:   mustParse(t, "<main>ok</main>"),
	}

	src, cErr := codegen.File(view, "ui", "page.sor")
	if cErr != nil {
		t.Fatalf("File failed: %s", cErr)
	}
	if !strings.Contains(string(src), "func Page() vdom.Node {") {
		t.Errorf("expected zero-parameter signature, got:\n%s", src)
	}
}
