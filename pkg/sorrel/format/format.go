// Package format provides canonical formatting for view source files.
//
// Formatting is tree-based: the parsed view is printed back in a single
// canonical layout, so the output never depends on the input's whitespace.
// Elements whose canonical form fits on one line print inline; longer
// elements break their children onto indented lines. A child sequence
// containing raw text always prints inline, because moving text to its own
// line would change the whitespace the view renders. Attributes print
// properties first, then event bindings, each in source order.
package format

import (
	"strings"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
)

// Line width - the target maximum line length for inline elements
const MaxLineWidth = 92

// Indentation - gofmt style: one tab per level
const (
	IndentWidth  = 4 // display width of one indent level
	IndentString = "\t"
)

// FormatView prints a whole view file: the preamble lines above the
// header, the header line, a blank line, and the formatted body.
func FormatView(preamble, name, params string, body *ast.Root) string {
	p := newPrinter()

	if pre := strings.TrimSpace(preamble); pre != "" {
		p.write(pre)
		p.newline()
	}

	p.write("view " + name + "(" + params + ")")
	p.newline()
	p.newline()
	p.formatRoot(body)

	return p.String()
}

// FormatRoot prints a markup tree with no surrounding view header.
func FormatRoot(root *ast.Root) string {
	p := newPrinter()
	p.formatRoot(root)
	return p.String()
}

// formatRoot prints a content sequence, one node per line. Sequences
// containing raw text collapse onto a single line.
func (p *printer) formatRoot(root *ast.Root) {
	if root == nil {
		return
	}

	if hasTextContent(root.Nodes) {
		p.writeIndent()
		for _, node := range root.Nodes {
			p.write(node.String())
		}
		p.newline()
		return
	}

	for _, node := range root.Nodes {
		p.formatNode(node)
	}
}

// formatNode prints one content node on its own line.
func (p *printer) formatNode(node ast.ContentNode) {
	switch n := node.(type) {
	case *ast.NormalElement:
		p.formatElement(n)
	default:
		p.writeIndent()
		p.write(node.String())
		p.newline()
	}
}

// formatElement prints an element inline when its canonical form fits,
// otherwise it breaks the children onto indented lines between the tags.
func (p *printer) formatElement(el *ast.NormalElement) {
	inline := el.String()

	children := childNodes(el)
	if len(children) == 0 || hasTextContent(children) || p.wouldFitOnLine(inline, MaxLineWidth) {
		p.writeIndent()
		p.write(inline)
		p.newline()
		return
	}

	p.writeIndent()
	p.write(el.Opening.String())
	p.newline()

	p.indentInc()
	for _, child := range children {
		p.formatNode(child)
	}
	p.indentDec()

	p.writeIndent()
	p.write(el.Closing.String())
	p.newline()
}

func childNodes(el *ast.NormalElement) []ast.ContentNode {
	if el.Child == nil {
		return nil
	}
	return el.Child.Nodes
}

// hasTextContent reports whether a child sequence contains raw text.
// Interpolations and elements can move to their own lines because the
// whitespace between lines normalizes away; text cannot.
func hasTextContent(nodes []ast.ContentNode) bool {
	for _, node := range nodes {
		if _, ok := node.(*ast.Text); ok {
			return true
		}
	}
	return false
}
