package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// Span is a source range in 1-based line/column coordinates, used to anchor
// diagnostics. All spans within one parse come from the same lexer, so Join
// is total.
type Span struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// SpanOf builds a span from a token's recorded positions.
func SpanOf(tok lexer.Token) Span {
	return Span{Line: tok.Line, Column: tok.Column, EndLine: tok.EndLine, EndColumn: tok.EndColumn}
}

// Join returns the smallest span covering both s and o.
func (s Span) Join(o Span) Span {
	out := s
	if o.Line < out.Line || (o.Line == out.Line && o.Column < out.Column) {
		out.Line = o.Line
		out.Column = o.Column
	}
	if o.EndLine > out.EndLine || (o.EndLine == out.EndLine && o.EndColumn > out.EndColumn) {
		out.EndLine = o.EndLine
		out.EndColumn = o.EndColumn
	}
	return out
}

// IsZero reports whether the span carries no position.
func (s Span) IsZero() bool {
	return s.Line == 0
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// ContentNode represents nodes that may appear in element content: nested
// elements, text runs, and interpolated expressions.
type ContentNode interface {
	Node
	Span() Span
	contentNode()
}

// Element represents a markup element, either a normal open/close pair or a
// self-closing void element. The set is closed: consumers switch over the two
// concrete types.
type Element interface {
	ContentNode
	elementNode()
}

// TagKind discriminates plain markup tags from component tags.
type TagKind int

const (
	TagMarkup    TagKind = iota // lower-kebab markup tag like 'div' or 'my-widget'
	TagComponent                // upper-camel component reference like 'Counter'
)

func (k TagKind) String() string {
	switch k {
	case TagMarkup:
		return "markup"
	case TagComponent:
		return "component"
	default:
		return "unknown"
	}
}

// TagName is a disambiguated tag identity: the kebab-joined name of a markup
// tag, or the identifier of a component.
type TagName struct {
	Kind TagKind
	Name string
	Span Span
}

func (tn TagName) String() string { return tn.Name }

// Matches reports whether two names agree in both kind and text.
func (tn TagName) Matches(other TagName) bool {
	return tn.Kind == other.Kind && tn.Name == other.Name
}

// AttributeName is a validated, dash-joined attribute identity.
type AttributeName struct {
	Name string
	Span Span
}

func (an AttributeName) String() string { return an.Name }

// Expr is an opaque Go expression taken verbatim from a braced block.
// The translator never interprets it; the Go compiler checks it later.
type Expr struct {
	Token lexer.Token // the lexer.EXPR token
	Raw   string      // source text between the braces
}

func (e Expr) Span() Span { return SpanOf(e.Token) }

func (e Expr) String() string { return "{" + strings.TrimSpace(e.Raw) + "}" }

// Attribute represents one 'name={expr}' binding like 'class={"box"}' or
// '@click={handler}'. Event is true when the '@' sigil was present.
type Attribute struct {
	Token lexer.Token // the '@' sigil or the first name token
	Event bool
	Name  AttributeName
	Value Expr
}

func (a *Attribute) TokenLiteral() string { return a.Token.Literal }
func (a *Attribute) String() string {
	var out bytes.Buffer
	if a.Event {
		out.WriteString("@")
	}
	out.WriteString(a.Name.Name)
	out.WriteString("=")
	out.WriteString(a.Value.String())
	return out.String()
}

// OpeningTag represents '<name attr={x} @evt={y}>'. Attributes are
// partitioned into properties and events, each keeping source order.
type OpeningTag struct {
	Token  lexer.Token // the '<' token
	Name   TagName
	Props  []*Attribute
	Events []*Attribute
}

func (ot *OpeningTag) TokenLiteral() string { return ot.Token.Literal }
func (ot *OpeningTag) String() string {
	var out bytes.Buffer
	out.WriteString("<")
	out.WriteString(ot.Name.Name)
	writeAttributes(&out, ot.Props, ot.Events)
	out.WriteString(">")
	return out.String()
}

// ClosingTag represents '</name>'.
type ClosingTag struct {
	Token lexer.Token // the '<' token
	Name  TagName
}

func (ct *ClosingTag) TokenLiteral() string { return ct.Token.Literal }
func (ct *ClosingTag) String() string       { return "</" + ct.Name.Name + ">" }

// SelfClosingTag represents a void tag like '<br/>' or '<img src={s}>'.
// The slash is optional in source; String always prints it.
type SelfClosingTag struct {
	Token  lexer.Token // the '<' token
	Name   TagName
	Props  []*Attribute
	Events []*Attribute
}

func (st *SelfClosingTag) TokenLiteral() string { return st.Token.Literal }
func (st *SelfClosingTag) String() string {
	var out bytes.Buffer
	out.WriteString("<")
	out.WriteString(st.Name.Name)
	writeAttributes(&out, st.Props, st.Events)
	out.WriteString("/>")
	return out.String()
}

// NormalElement represents an element with explicit open and close tags,
// like '<div>content</div>'. Child is nil when the opening tag is followed
// immediately by the closing tag.
type NormalElement struct {
	Opening *OpeningTag
	Child   *Root
	Closing *ClosingTag
}

func (ne *NormalElement) contentNode()         {}
func (ne *NormalElement) elementNode()         {}
func (ne *NormalElement) TokenLiteral() string { return ne.Opening.Token.Literal }
func (ne *NormalElement) Span() Span {
	return SpanOf(ne.Opening.Token).Join(ne.Closing.Name.Span)
}
func (ne *NormalElement) String() string {
	var out bytes.Buffer
	out.WriteString(ne.Opening.String())
	if ne.Child != nil {
		out.WriteString(ne.Child.String())
	}
	out.WriteString(ne.Closing.String())
	return out.String()
}

// SelfClosingElement represents a void element such as '<br/>'.
type SelfClosingElement struct {
	Tag *SelfClosingTag
}

func (se *SelfClosingElement) contentNode()         {}
func (se *SelfClosingElement) elementNode()         {}
func (se *SelfClosingElement) TokenLiteral() string { return se.Tag.Token.Literal }
func (se *SelfClosingElement) Span() Span {
	return SpanOf(se.Tag.Token).Join(se.Tag.Name.Span)
}
func (se *SelfClosingElement) String() string { return se.Tag.String() }

// Text is a normalized text run between tags.
type Text struct {
	Token lexer.Token // the lexer.TEXT token (raw literal)
	Value string      // whitespace-normalized text
}

func (t *Text) contentNode()         {}
func (t *Text) TokenLiteral() string { return t.Token.Literal }
func (t *Text) Span() Span           { return SpanOf(t.Token) }
func (t *Text) String() string       { return t.Value }

// Interpolation is a braced expression in content position, like 'Hi {name}'.
type Interpolation struct {
	Token lexer.Token // the lexer.EXPR token
	Expr  Expr
}

func (ip *Interpolation) contentNode()         {}
func (ip *Interpolation) TokenLiteral() string { return ip.Token.Literal }
func (ip *Interpolation) Span() Span           { return SpanOf(ip.Token) }
func (ip *Interpolation) String() string       { return ip.Expr.String() }

// Root is a sequence of content nodes: an element body, or a whole view body.
type Root struct {
	Nodes []ContentNode
}

func (r *Root) contentNode() {}
func (r *Root) TokenLiteral() string {
	if len(r.Nodes) > 0 {
		return r.Nodes[0].TokenLiteral()
	}
	return ""
}
func (r *Root) Span() Span {
	if len(r.Nodes) == 0 {
		return Span{}
	}
	return r.Nodes[0].Span().Join(r.Nodes[len(r.Nodes)-1].Span())
}
func (r *Root) String() string {
	var out bytes.Buffer
	for _, n := range r.Nodes {
		out.WriteString(n.String())
	}
	return out.String()
}

func writeAttributes(out *bytes.Buffer, props, events []*Attribute) {
	for _, a := range props {
		out.WriteString(" ")
		out.WriteString(a.String())
	}
	for _, a := range events {
		out.WriteString(" ")
		out.WriteString(a.String())
	}
}
