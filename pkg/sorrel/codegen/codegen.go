// Package codegen lowers a parsed markup tree to Go source that calls the
// vdom runtime constructors.
//
// Lowering builds go/ast expression trees and prints them, so the emitted
// code is always syntactically valid Go. Attribute and interpolation
// expressions are re-parsed with go/parser before splicing; a malformed
// expression surfaces as a diagnostic pointing at its opening brace.
package codegen

import (
	"bytes"
	"fmt"
	goast "go/ast"
	"go/format"
	goparser "go/parser"
	"go/printer"
	gotoken "go/token"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/ident"
)

// vdomPkg is the package qualifier every generated constructor call uses.
const vdomPkg = "vdom"

// VdomImportPath is the import the generated file needs for its constructors.
const VdomImportPath = "github.com/sorrel-lang/sorrel/pkg/vdom"

// Expression lowers a content root to the source text of one Go expression
// evaluating to a vdom.Node. An empty root lowers to an empty node list.
func Expression(root *ast.Root) (string, *serrors.SorrelError) {
	expr, err := LowerRoot(root)
	if err != nil {
		return "", err
	}
	return render(expr)
}

// ElementExpr lowers a single element to Go source text.
func ElementExpr(el ast.Element) (string, *serrors.SorrelError) {
	expr, err := lowerElement(el)
	if err != nil {
		return "", err
	}
	return render(expr)
}

// LowerRoot returns the go/ast expression for a content root: one node
// lowers to its own expression, several nodes to a vdom.NewList call.
func LowerRoot(root *ast.Root) (goast.Expr, *serrors.SorrelError) {
	nodes := contentNodes(root)

	if len(nodes) == 1 {
		return lowerNode(nodes[0])
	}

	var elts []goast.Expr
	for _, n := range nodes {
		ex, err := lowerNode(n)
		if err != nil {
			return nil, err
		}
		elts = append(elts, ex)
	}
	return call(vdomSel("NewList"), elts...), nil
}

func contentNodes(root *ast.Root) []ast.ContentNode {
	if root == nil {
		return nil
	}
	return root.Nodes
}

func lowerNode(n ast.ContentNode) (goast.Expr, *serrors.SorrelError) {
	switch t := n.(type) {
	case *ast.Text:
		return call(vdomSel("NewText"), strLit(t.Value)), nil
	case *ast.Interpolation:
		ex, err := parseValueExpr(t.Expr)
		if err != nil {
			return nil, err
		}
		return call(vdomSel("ToNode"), ex), nil
	case ast.Element:
		return lowerElement(t)
	default:
		panic(fmt.Sprintf("codegen: unsupported content node %T", n))
	}
}

func lowerElement(el ast.Element) (goast.Expr, *serrors.SorrelError) {
	switch t := el.(type) {
	case *ast.NormalElement:
		if t.Opening.Name.Kind == ast.TagComponent {
			return lowerComponent(t)
		}
		return lowerMarkupElement(t)
	case *ast.SelfClosingElement:
		return lowerVoidElement(t)
	default:
		panic(fmt.Sprintf("codegen: unsupported element %T", el))
	}
}

// lowerMarkupElement emits vdom.NewElement for elements with children and
// vdom.NewChildlessElement otherwise. A body whose nodes all normalized
// away counts as no children.
func lowerMarkupElement(el *ast.NormalElement) (goast.Expr, *serrors.SorrelError) {
	props, err := lowerProps(el.Opening.Props)
	if err != nil {
		return nil, err
	}
	events, err := lowerEvents(el.Opening.Events)
	if err != nil {
		return nil, err
	}

	name := strLit(el.Opening.Name.Name)

	if len(contentNodes(el.Child)) == 0 {
		return call(vdomSel("NewChildlessElement"), name, props, events), nil
	}

	child, err := LowerRoot(el.Child)
	if err != nil {
		return nil, err
	}
	return call(vdomSel("NewElement"), name, props, events, child), nil
}

func lowerVoidElement(el *ast.SelfClosingElement) (goast.Expr, *serrors.SorrelError) {
	props, err := lowerProps(el.Tag.Props)
	if err != nil {
		return nil, err
	}
	events, err := lowerEvents(el.Tag.Events)
	if err != nil {
		return nil, err
	}
	return call(vdomSel("NewChildlessElement"), strLit(el.Tag.Name.Name), props, events), nil
}

// lowerComponent emits vdom.NewComponent[Name] fed by the component's two
// builder chains. Component tags take no children.
func lowerComponent(el *ast.NormalElement) (goast.Expr, *serrors.SorrelError) {
	name := el.Opening.Name.Name

	if len(contentNodes(el.Child)) > 0 {
		span := el.Child.Span()
		return nil, serrors.NewWithPosition("GEN-0201", span.Line, span.Column, map[string]any{
			"Name": name,
		})
	}

	props, err := lowerBuilderChain("New"+name+"Props", el.Opening.Props, false)
	if err != nil {
		return nil, err
	}
	events, err := lowerBuilderChain("New"+name+"Events", el.Opening.Events, true)
	if err != nil {
		return nil, err
	}

	ctor := &goast.IndexExpr{
		X:     vdomSel("NewComponent"),
		Index: goast.NewIdent(name),
	}
	return call(ctor, props, events), nil
}

// lowerBuilderChain emits NewXProps().SetterA(a).SetterB(b).Build(). Setter
// names are the upper-camel form of the attribute name. Event values are
// wrapped in the vdom.Listener conversion.
func lowerBuilderChain(entry string, attrs []*ast.Attribute, wrapListener bool) (goast.Expr, *serrors.SorrelError) {
	chain := call(goast.NewIdent(entry))

	for _, attr := range attrs {
		value, err := parseValueExpr(attr.Value)
		if err != nil {
			return nil, err
		}
		if wrapListener {
			value = call(vdomSel("Listener"), value)
		}
		chain = call(&goast.SelectorExpr{
			X:   chain,
			Sel: goast.NewIdent(ident.UpperCamel(attr.Name.Name)),
		}, value)
	}

	return call(&goast.SelectorExpr{
		X:   chain,
		Sel: goast.NewIdent("Build"),
	}), nil
}

// lowerProps emits a []vdom.Attribute literal, or nil for no properties.
func lowerProps(attrs []*ast.Attribute) (goast.Expr, *serrors.SorrelError) {
	if len(attrs) == 0 {
		return goast.NewIdent("nil"), nil
	}

	var elts []goast.Expr
	for _, attr := range attrs {
		value, err := parseValueExpr(attr.Value)
		if err != nil {
			return nil, err
		}
		elts = append(elts, call(vdomSel("NewAttribute"), strLit(attr.Name.Name), value))
	}

	return &goast.CompositeLit{
		Type: &goast.ArrayType{Elt: vdomSel("Attribute")},
		Elts: elts,
	}, nil
}

// lowerEvents emits a []vdom.EventListener literal, or nil for no events.
func lowerEvents(attrs []*ast.Attribute) (goast.Expr, *serrors.SorrelError) {
	if len(attrs) == 0 {
		return goast.NewIdent("nil"), nil
	}

	var elts []goast.Expr
	for _, attr := range attrs {
		value, err := parseValueExpr(attr.Value)
		if err != nil {
			return nil, err
		}
		listener := call(vdomSel("Listener"), value)
		elts = append(elts, call(vdomSel("NewEventListener"), strLit(attr.Name.Name), listener))
	}

	return &goast.CompositeLit{
		Type: &goast.ArrayType{Elt: vdomSel("EventListener")},
		Elts: elts,
	}, nil
}

// parseValueExpr re-parses an embedded Go expression so malformed input
// fails here, with a source position, instead of in the emitted file.
func parseValueExpr(e ast.Expr) (goast.Expr, *serrors.SorrelError) {
	ex, err := goparser.ParseExpr(e.Raw)
	if err != nil {
		span := e.Span()
		return nil, serrors.NewWithPosition("GEN-0202", span.Line, span.Column, map[string]any{
			"Expr":    e.Raw,
			"GoError": err.Error(),
		})
	}
	return ex, nil
}

func render(expr goast.Expr) (string, *serrors.SorrelError) {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, gotoken.NewFileSet(), expr); err != nil {
		return "", serrors.NewSimple(serrors.ClassGenerate, "failed to print generated code: "+err.Error())
	}
	return buf.String(), nil
}

func call(fun goast.Expr, args ...goast.Expr) *goast.CallExpr {
	return &goast.CallExpr{Fun: fun, Args: args}
}

func strLit(s string) goast.Expr {
	return &goast.BasicLit{Kind: gotoken.STRING, Value: fmt.Sprintf("%q", s)}
}

func vdomSel(name string) goast.Expr {
	return &goast.SelectorExpr{
		X:   goast.NewIdent(vdomPkg),
		Sel: goast.NewIdent(name),
	}
}

// View is one compiled view: an exported function name, its raw Go
// parameter text, and the parsed body.
type View struct {
	Name   string
	Params string
	Body   *ast.Root
}

// File renders a complete generated Go file for a view. The source name
// appears in the generated-code header; pkg is the target package.
func File(view View, pkg, source string) ([]byte, *serrors.SorrelError) {
	body, err := Expression(view.Body)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by sorrel from %s. DO NOT EDIT.\n\n", source)
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	fmt.Fprintf(&buf, "import %q\n\n", VdomImportPath)
	fmt.Fprintf(&buf, "func %s(%s) vdom.Node {\n\treturn %s\n}\n", view.Name, view.Params, body)

	src, gofmtErr := format.Source(buf.Bytes())
	if gofmtErr != nil {
		// Reaching here means the assembled file is not valid Go, which a
		// validated header and lowered body should rule out.
		return nil, serrors.NewSimple(serrors.ClassGenerate,
			"generated file does not format: "+gofmtErr.Error())
	}
	return src, nil
}
