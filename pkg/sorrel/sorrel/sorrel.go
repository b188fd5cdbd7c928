// Package sorrel provides the public API for compiling .sor view files into
// Go source.
//
// A view file holds one view: optional // comment lines, a header line
// `view Name(params)`, and a markup body. CompileFile turns one such file
// into a <base>.sor.go file of the target package; Expand turns a bare
// markup snippet into the Go expression it would generate, which is what
// the REPL shows.
package sorrel

import (
	"fmt"
	goparser "go/parser"
	gotoken "go/token"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/codegen"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/parser"
)

// Options control a compilation run. The zero value compiles in place with
// default naming and stdout logging.
type Options struct {
	// Package forces the generated package name. Empty derives it from
	// the view file's directory.
	Package string

	// OutDir redirects generated files. Empty writes beside the source.
	OutDir string

	// Suffix replaces the ".sor.go" generated-file suffix.
	Suffix string

	// Check parses and generates but writes nothing.
	Check bool

	Logger Logger
}

func (o Options) suffix() string {
	if o.Suffix == "" {
		return ".sor.go"
	}
	return o.Suffix
}

func (o Options) logger() Logger {
	if o.Logger == nil {
		return DefaultLogger
	}
	return o.Logger
}

// ViewFile is a parsed .sor source: the header and the markup body.
type ViewFile struct {
	Name     string    // exported view function name
	Params   string    // raw Go parameter text
	Body     *ast.Root // parsed markup body
	Preamble string    // raw lines above the header, kept by the formatter
}

// Expand compiles a markup snippet to the Go expression it generates.
func Expand(source string) (string, *serrors.SorrelError) {
	root, err := parseContent(source, "<input>", 1)
	if err != nil {
		return "", err
	}
	return codegen.Expression(root)
}

// ParseContent parses a markup snippet into a content tree without
// generating code. Tools that only inspect the AST use this.
func ParseContent(source string) (*ast.Root, *serrors.SorrelError) {
	return parseContent(source, "<input>", 1)
}

func parseContent(source, filename string, startLine int) (*ast.Root, *serrors.SorrelError) {
	l := lexer.NewWithPosition(source, filename, startLine)
	p := parser.New(l)
	root := p.ParseRoot()

	if err := p.FirstError(); err != nil {
		return nil, err.WithFile(filename)
	}
	return root, nil
}

// ParseView parses a full .sor source. Leading blank lines and // comments
// are allowed above the header; everything after the header line is body.
func ParseView(src []byte, filename string) (*ViewFile, *serrors.SorrelError) {
	lines := strings.Split(string(src), "\n")

	headerIdx := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		headerIdx = i
		break
	}

	if headerIdx == -1 {
		return nil, serrors.New("VIEW-0301", nil).WithFile(filename)
	}

	header := strings.TrimSpace(lines[headerIdx])
	name, params, err := parseViewHeader(header, headerIdx+1)
	if err != nil {
		return nil, err.WithFile(filename)
	}

	body := strings.Join(lines[headerIdx+1:], "\n")
	root, perr := parseContent(body, filename, headerIdx+2)
	if perr != nil {
		return nil, perr
	}
	if root == nil || len(root.Nodes) == 0 {
		return nil, serrors.NewWithPosition("VIEW-0303", headerIdx+1, 1, nil).WithFile(filename)
	}

	return &ViewFile{
		Name:     name,
		Params:   params,
		Body:     root,
		Preamble: strings.Join(lines[:headerIdx], "\n"),
	}, nil
}

// parseViewHeader splits `view Name(params)` and validates both halves.
func parseViewHeader(header string, line int) (name, params string, err *serrors.SorrelError) {
	rest, ok := strings.CutPrefix(header, "view ")
	if !ok {
		return "", "", serrors.NewWithPosition("VIEW-0301", line, 1, nil)
	}
	rest = strings.TrimSpace(rest)

	open := strings.IndexByte(rest, '(')
	if open < 0 || !strings.HasSuffix(rest, ")") {
		return "", "", serrors.NewWithPosition("VIEW-0301", line, 1, nil)
	}

	name = strings.TrimSpace(rest[:open])
	params = strings.TrimSpace(rest[open+1 : len(rest)-1])

	if !gotoken.IsIdentifier(name) || !startsUpper(name) {
		return "", "", serrors.NewWithPosition("VIEW-0304", line, 1, map[string]any{
			"Name": name,
		})
	}

	// The parameter text must form a valid Go parameter list.
	if params != "" {
		if _, perr := goparser.ParseExpr("func(" + params + ") {}"); perr != nil {
			return "", "", serrors.NewWithPosition("VIEW-0302", line, 1, map[string]any{
				"GoError": perr.Error(),
			})
		}
	}

	return name, params, nil
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// CompileSource compiles .sor file contents to generated Go source. The
// filename determines the generated-code header and, absent an override,
// the package name.
func CompileSource(src []byte, filename string, opts Options) ([]byte, *serrors.SorrelError) {
	view, err := ParseView(src, filename)
	if err != nil {
		return nil, err
	}

	out, err := codegen.File(codegen.View{
		Name:   view.Name,
		Params: view.Params,
		Body:   view.Body,
	}, PackageName(filename, opts), filepath.Base(filename))
	if err != nil {
		return nil, err.WithFile(filename)
	}
	return out, nil
}

// CompileFile compiles one .sor file and writes the generated Go file,
// returning the output path. In check mode nothing is written and the
// returned path is what would have been used.
func CompileFile(path string, opts Options) (string, *serrors.SorrelError) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", serrors.New("IO-0401", map[string]any{
			"Path":    path,
			"GoError": err.Error(),
		})
	}

	out, cerr := CompileSource(src, path, opts)
	if cerr != nil {
		return "", cerr
	}

	outPath := OutputPath(path, opts)
	if opts.Check {
		return outPath, nil
	}

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return "", serrors.New("IO-0402", map[string]any{
				"Path":    outPath,
				"GoError": err.Error(),
			})
		}
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return "", serrors.New("IO-0402", map[string]any{
			"Path":    outPath,
			"GoError": err.Error(),
		})
	}

	opts.logger().LogLine(fmt.Sprintf("[BUILD] %s -> %s", path, outPath))
	return outPath, nil
}

// OutputPath returns where the generated file for a view source goes: the
// source's base name with the generated suffix, beside the source or under
// OutDir.
func OutputPath(path string, opts Options) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := base + opts.suffix()

	if opts.OutDir != "" {
		return filepath.Join(opts.OutDir, name)
	}
	return filepath.Join(filepath.Dir(path), name)
}

// PackageName decides the generated package: the override, or the name of
// the directory holding the view file, cleaned into a Go identifier.
func PackageName(path string, opts Options) string {
	if opts.Package != "" {
		return opts.Package
	}

	dir := filepath.Base(filepath.Dir(absOrSelf(path)))
	if cleaned := cleanPackageName(dir); cleaned != "" {
		return cleaned
	}
	return "views"
}

func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// cleanPackageName strips characters a directory name may carry that a
// package name may not. Returns "" if nothing usable remains.
func cleanPackageName(dir string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(dir) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	name := sb.String()
	if name == "" || !gotoken.IsIdentifier(name) {
		return ""
	}
	return name
}
