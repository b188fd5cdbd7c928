package tests

import (
	goparser "go/parser"
	gotoken "go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/sorrel"
)

func TestParseViewHappyPath(t *testing.T) {
	src := []byte(`// the greeting widget
// takes a display name

view Greeting(name string)

<div class={"greeting"}>Hello, {name}!</div>
`)

	view, err := sorrel.ParseView(src, "greeting.sor")
	if err != nil {
		t.Fatalf("ParseView failed: %s", err)
	}

	if view.Name != "Greeting" {
		t.Errorf("name = %q, want Greeting", view.Name)
	}
	if view.Params != "name string" {
		t.Errorf("params = %q, want %q", view.Params, "name string")
	}
	if view.Body == nil || len(view.Body.Nodes) != 1 {
		t.Fatalf("expected one body node")
	}
	if !strings.Contains(view.Preamble, "greeting widget") {
		t.Errorf("preamble lost: %q", view.Preamble)
	}
}

func TestParseViewWithoutParams(t *testing.T) {
	view, err := sorrel.ParseView([]byte("view Page()\n<main>hi</main>\n"), "page.sor")
	if err != nil {
		t.Fatalf("ParseView failed: %s", err)
	}
	if view.Params != "" {
		t.Errorf("params = %q, want empty", view.Params)
	}
}

func TestParseViewMultipleParams(t *testing.T) {
	src := []byte("view Row(label string, count int, onPick func(int))\n<li>{label}</li>\n")

	view, err := sorrel.ParseView(src, "row.sor")
	if err != nil {
		t.Fatalf("ParseView failed: %s", err)
	}
	if view.Params != "label string, count int, onPick func(int)" {
		t.Errorf("params = %q", view.Params)
	}
}

func TestParseViewHeaderErrors(t *testing.T) {
	tests := []struct {
		name         string
		src          string
		expectedCode string
	}{
		{"empty_file", "", "VIEW-0301"},
		{"comments_only", "// nothing here\n", "VIEW-0301"},
		{"markup_before_header", "<div></div>\n", "VIEW-0301"},
		{"missing_parens", "view Greeting\n<div></div>\n", "VIEW-0301"},
		{"unexported_name", "view greeting()\n<div></div>\n", "VIEW-0304"},
		{"invalid_name", "view My-View()\n<div></div>\n", "VIEW-0304"},
		{"bad_params", "view Greeting(123 oops)\n<div></div>\n", "VIEW-0302"},
		{"unbalanced_params", "view Greeting(a int))\n<div></div>\n", "VIEW-0302"},
		{"empty_body", "view Greeting()\n", "VIEW-0303"},
		{"whitespace_body", "view Greeting()\n\n   \n", "VIEW-0303"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sorrel.ParseView([]byte(tt.src), "bad.sor")
			if err == nil {
				t.Fatal("expected an error")
			}
			if err.Code != tt.expectedCode {
				t.Errorf("code = %s, want %s (%s)", err.Code, tt.expectedCode, err.Message)
			}
			if err.File != "bad.sor" {
				t.Errorf("file = %q, want bad.sor", err.File)
			}
		})
	}
}

// TestParseViewBodyErrorPositions checks that body diagnostics report
// file-absolute line numbers, counting the header and comment lines.
func TestParseViewBodyErrorPositions(t *testing.T) {
	src := []byte(`// comment line 1
view Broken()
<div>
  <span>x</div>
`)

	_, err := sorrel.ParseView(src, "broken.sor")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if err.Code != "PARSE-0106" {
		t.Fatalf("code = %s, want PARSE-0106", err.Code)
	}
	// The offending span opens at <span> on file line 4.
	if err.Line != 4 {
		t.Errorf("line = %d, want 4", err.Line)
	}
}

func TestExpandSnippet(t *testing.T) {
	got, err := sorrel.Expand(`<p>hi {name}</p>`)
	if err != nil {
		t.Fatalf("Expand failed: %s", err)
	}
	want := `vdom.NewElement("p", nil, nil, vdom.NewList(vdom.NewText("hi "), vdom.ToNode(name)))`
	if got != want {
		t.Errorf("expected %s\ngot      %s", want, got)
	}
}

func TestExpandReportsErrors(t *testing.T) {
	_, err := sorrel.Expand("<div></span>")
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Code != "PARSE-0106" {
		t.Errorf("code = %s, want PARSE-0106", err.Code)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		path     string
		opts     sorrel.Options
		expected string
	}{
		{"views/greeting.sor", sorrel.Options{}, filepath.Join("views", "greeting.sor.go")},
		{"greeting.sor", sorrel.Options{}, "greeting.sor.go"},
		{"views/greeting.sor", sorrel.Options{OutDir: "gen"}, filepath.Join("gen", "greeting.sor.go")},
		{"views/greeting.sor", sorrel.Options{Suffix: "_view.go"}, filepath.Join("views", "greeting_view.go")},
	}

	for _, tt := range tests {
		if got := sorrel.OutputPath(tt.path, tt.opts); got != tt.expected {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

func TestPackageName(t *testing.T) {
	if got := sorrel.PackageName("x/ui/greeting.sor", sorrel.Options{}); got != "ui" {
		t.Errorf("package = %q, want ui", got)
	}
	if got := sorrel.PackageName("x/ui/greeting.sor", sorrel.Options{Package: "custom"}); got != "custom" {
		t.Errorf("package override = %q, want custom", got)
	}
	// Directory names that are not identifiers get cleaned.
	if got := sorrel.PackageName("x/my-views/greeting.sor", sorrel.Options{}); got != "myviews" {
		t.Errorf("package = %q, want myviews", got)
	}
}

func TestCompileSource(t *testing.T) {
	src := []byte("view Button(label string)\n<button class={\"btn\"} @click={onClick}>{label}</button>\n")

	out, err := sorrel.CompileSource(src, "ui/button.sor", sorrel.Options{})
	if err != nil {
		t.Fatalf("CompileSource failed: %s", err)
	}

	text := string(out)
	for _, want := range []string{
		"// Code generated by sorrel from button.sor. DO NOT EDIT.",
		"package ui",
		"func Button(label string) vdom.Node {",
		`vdom.NewEventListener("click", vdom.Listener(onClick))`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	if _, perr := goparser.ParseFile(gotoken.NewFileSet(), "button.sor.go", out, 0); perr != nil {
		t.Errorf("output does not parse as Go: %v", perr)
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "hello.sor")
	src := "view Hello()\n<p>hello</p>\n"
	if err := os.WriteFile(srcPath, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := sorrel.NewBufferedLogger()
	outPath, cerr := sorrel.CompileFile(srcPath, sorrel.Options{Logger: logger})
	if cerr != nil {
		t.Fatalf("CompileFile failed: %s", cerr)
	}

	if outPath != filepath.Join(dir, "hello.sor.go") {
		t.Errorf("outPath = %q", outPath)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("generated file not written: %v", err)
	}
	if !strings.Contains(string(out), "func Hello() vdom.Node {") {
		t.Errorf("unexpected output:\n%s", out)
	}

	lines := logger.Lines()
	if len(lines) != 1 || !strings.Contains(lines[0], "[BUILD]") {
		t.Errorf("expected one [BUILD] log line, got %v", lines)
	}
}

func TestCompileFileCheckMode(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "hello.sor")
	if err := os.WriteFile(srcPath, []byte("view Hello()\n<p>x</p>\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	outPath, cerr := sorrel.CompileFile(srcPath, sorrel.Options{Check: true, Logger: sorrel.NullLogger()})
	if cerr != nil {
		t.Fatalf("check failed: %s", cerr)
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Errorf("check mode must not write %s", outPath)
	}
}

func TestCompileFileOutDir(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "hello.sor")
	if err := os.WriteFile(srcPath, []byte("view Hello()\n<p>x</p>\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "gen", "nested")
	outPath, cerr := sorrel.CompileFile(srcPath, sorrel.Options{
		OutDir: outDir,
		Logger: sorrel.NullLogger(),
	})
	if cerr != nil {
		t.Fatalf("CompileFile failed: %s", cerr)
	}
	if outPath != filepath.Join(outDir, "hello.sor.go") {
		t.Errorf("outPath = %q", outPath)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("expected output under outdir: %v", err)
	}
}

func TestCompileFileMissingSource(t *testing.T) {
	_, err := sorrel.CompileFile(filepath.Join(t.TempDir(), "nope.sor"), sorrel.Options{Logger: sorrel.NullLogger()})
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Code != "IO-0401" {
		t.Errorf("code = %s, want IO-0401", err.Code)
	}
}
