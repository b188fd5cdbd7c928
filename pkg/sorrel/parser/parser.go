package parser

import (
	"strings"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/ident"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// voidTags is the fixed set of tags that are always self-closing. It is
// process-wide static configuration: loaded once, never mutated, and
// consulted by the classifier before an element production is chosen.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoidTag returns true if the tag is a void element that never takes
// children or a closing tag.
func IsVoidTag(tag string) bool {
	return voidTags[tag]
}

// Parser is a recursive descent parser over the markup grammar. It makes all
// decisions in a single forward pass using one token of lookahead.
type Parser struct {
	l *lexer.Lexer

	structuredErrors []*serrors.SorrelError

	prevToken lexer.Token
	curToken  lexer.Token
	peekToken lexer.Token
}

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns parser errors as plain strings.
// Prefer StructuredErrors() for production code.
func (p *Parser) Errors() []string {
	result := make([]string, len(p.structuredErrors))
	for i, err := range p.structuredErrors {
		result[i] = err.String()
	}
	return result
}

// StructuredErrors returns parser errors as structured SorrelError objects.
func (p *Parser) StructuredErrors() []*serrors.SorrelError {
	return p.structuredErrors
}

// FirstError returns the first recorded error, or nil.
func (p *Parser) FirstError() *serrors.SorrelError {
	if len(p.structuredErrors) == 0 {
		return nil
	}
	return p.structuredErrors[0]
}

// addStructuredError adds a structured error from the catalog.
// Only the first error is recorded - subsequent errors are usually cascading noise.
func (p *Parser) addStructuredError(code string, line, column int, data map[string]any) {
	if len(p.structuredErrors) > 0 {
		return
	}

	p.structuredErrors = append(p.structuredErrors, serrors.NewWithPosition(code, line, column, data))
}

// addMismatchedTagError records the tag-agreement failure, with a typo hint
// when the closing name is close to the opening name.
func (p *Parser) addMismatchedTagError(openName, closeName string, span ast.Span) {
	if len(p.structuredErrors) > 0 {
		return
	}

	p.structuredErrors = append(p.structuredErrors, serrors.NewMismatchedTag(openName, closeName, span.Line, span.Column))
}

// nextToken advances prevToken, curToken, and peekToken
func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// tokenDescription renders a token for "got X" error messages.
func tokenDescription(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of file"
	case lexer.TEXT:
		return "text"
	case lexer.EXPR:
		return "{" + strings.TrimSpace(tok.Literal) + "}"
	default:
		return tok.Literal
	}
}

// expectError records a generic expected/got diagnostic at the current token.
func (p *Parser) expectError(expected string) {
	p.addStructuredError("PARSE-0101", p.curToken.Line, p.curToken.Column, map[string]any{
		"Expected": expected,
		"Got":      tokenDescription(p.curToken),
	})
}

// ParseRoot parses a whole content sequence (a view body) until end of file.
func (p *Parser) ParseRoot() *ast.Root {
	root := p.parseRoot(false)
	if len(p.structuredErrors) > 0 {
		return nil
	}
	return root
}

// ParseElement parses a single element. Exposed for tools that expand one
// markup occurrence at a time.
func (p *Parser) ParseElement() ast.Element {
	el := p.parseElement()
	if len(p.structuredErrors) > 0 {
		return nil
	}
	return el
}

// AtEOF reports whether all input has been consumed.
func (p *Parser) AtEOF() bool {
	return p.curTokenIs(lexer.EOF)
}

// parseRoot parses content nodes. With stopAtClose it returns when a closing
// tag is ahead (without consuming it), for use inside an element body;
// otherwise a closing tag at this level is an error.
func (p *Parser) parseRoot(stopAtClose bool) *ast.Root {
	root := &ast.Root{}

	for {
		switch {
		case p.curTokenIs(lexer.EOF):
			return root

		case p.curTokenIs(lexer.LANGLE) && p.peekTokenIs(lexer.SLASH):
			if stopAtClose {
				return root
			}
			p.expectError("a tag or content")
			return nil

		case p.curTokenIs(lexer.LANGLE):
			el := p.parseElement()
			if el == nil {
				return nil
			}
			root.Nodes = append(root.Nodes, el)

		case p.curTokenIs(lexer.EXPR):
			if p.curToken.Incomplete {
				p.addStructuredError("LEX-0001", p.curToken.Line, p.curToken.Column, nil)
				return nil
			}
			root.Nodes = append(root.Nodes, &ast.Interpolation{
				Token: p.curToken,
				Expr:  ast.Expr{Token: p.curToken, Raw: p.curToken.Literal},
			})
			p.nextToken()

		case p.curTokenIs(lexer.TEXT):
			if value := normalizeText(p.curToken.Literal); value != "" {
				root.Nodes = append(root.Nodes, &ast.Text{Token: p.curToken, Value: value})
			}
			p.nextToken()

		default:
			p.expectError("a tag or content")
			return nil
		}
	}
}

// parseElement dispatches on the void-tag classification. The classifier
// looks one token past the '<' without consuming anything, because the two
// productions expect incompatible closings and committing to the wrong one
// would force backtracking.
func (p *Parser) parseElement() ast.Element {
	if p.isSelfClosingAhead() {
		return p.parseSelfClosingElement()
	}
	return p.parseNormalElement()
}

// isSelfClosingAhead reports whether the upcoming tag is a void tag. It
// inspects the current '<' and the identifier behind it without consuming.
func (p *Parser) isSelfClosingAhead() bool {
	return p.curTokenIs(lexer.LANGLE) &&
		p.peekTokenIs(lexer.IDENT) &&
		voidTags[p.peekToken.Literal]
}

// parseNormalElement parses '<name ...>content</name>' and validates that
// the opening and closing names agree.
func (p *Parser) parseNormalElement() *ast.NormalElement {
	opening := p.parseOpeningTag()
	if opening == nil {
		return nil
	}

	// Check if this tag is closed next.
	var child *ast.Root
	if !(p.curTokenIs(lexer.LANGLE) && p.peekTokenIs(lexer.SLASH)) {
		child = p.parseRoot(true)
		if child == nil {
			return nil
		}
	}

	closing := p.parseClosingTag()
	if closing == nil {
		return nil
	}

	openName, closeName := opening.Name, closing.Name
	if openName.Kind != closeName.Kind {
		span := openName.Span.Join(closeName.Span)
		p.addStructuredError("PARSE-0107", span.Line, span.Column, map[string]any{
			"Open":      openName.Name,
			"Close":     closeName.Name,
			"OpenKind":  openName.Kind.String(),
			"CloseKind": closeName.Kind.String(),
		})
		return nil
	}
	if openName.Name != closeName.Name {
		p.addMismatchedTagError(openName.Name, closeName.Name, openName.Span.Join(closeName.Span))
		return nil
	}

	return &ast.NormalElement{Opening: opening, Child: child, Closing: closing}
}

// parseSelfClosingElement parses a void element. The classifier has already
// guaranteed the tag name is a void markup tag; a component name reaching
// this path would be a coordination bug, not a user error.
func (p *Parser) parseSelfClosingElement() *ast.SelfClosingElement {
	tag := p.parseSelfClosingTag()
	if tag == nil {
		return nil
	}
	if tag.Name.Kind != ast.TagMarkup {
		panic("parser: void-tag classifier admitted a component tag")
	}
	return &ast.SelfClosingElement{Tag: tag}
}

// parseOpeningTag parses '<name attr={x} @evt={y}>'.
func (p *Parser) parseOpeningTag() *ast.OpeningTag {
	if !p.curTokenIs(lexer.LANGLE) {
		p.expectError("'<'")
		return nil
	}
	tagToken := p.curToken
	p.nextToken()

	name, ok := p.parseTagName()
	if !ok {
		return nil
	}

	var attributes []*ast.Attribute
	for !p.curTokenIs(lexer.RANGLE) {
		if p.curTokenIs(lexer.EOF) {
			p.expectError("'>'")
			return nil
		}
		attr := p.parseAttribute()
		if attr == nil {
			return nil
		}
		attributes = append(attributes, attr)
	}
	p.nextToken() // consume '>'

	props, events := partitionAttributes(attributes)
	return &ast.OpeningTag{Token: tagToken, Name: name, Props: props, Events: events}
}

// parseClosingTag parses '</name>'. No attributes are permitted.
func (p *Parser) parseClosingTag() *ast.ClosingTag {
	if !p.curTokenIs(lexer.LANGLE) {
		p.expectError("'</'")
		return nil
	}
	tagToken := p.curToken
	p.nextToken()

	if !p.curTokenIs(lexer.SLASH) {
		p.expectError("'/'")
		return nil
	}
	p.nextToken()

	name, ok := p.parseTagName()
	if !ok {
		return nil
	}

	if !p.curTokenIs(lexer.RANGLE) {
		p.expectError("'>'")
		return nil
	}
	p.nextToken()

	return &ast.ClosingTag{Token: tagToken, Name: name}
}

// parseSelfClosingTag parses '<name attr={x}/>' or '<name attr={x}>'.
// The slash is optional and has no semantic effect.
func (p *Parser) parseSelfClosingTag() *ast.SelfClosingTag {
	if !p.curTokenIs(lexer.LANGLE) {
		p.expectError("'<'")
		return nil
	}
	tagToken := p.curToken
	p.nextToken()

	name, ok := p.parseTagName()
	if !ok {
		return nil
	}

	var attributes []*ast.Attribute
	for !p.curTokenIs(lexer.SLASH) && !p.curTokenIs(lexer.RANGLE) {
		if p.curTokenIs(lexer.EOF) {
			p.expectError("'>'")
			return nil
		}
		attr := p.parseAttribute()
		if attr == nil {
			return nil
		}
		attributes = append(attributes, attr)
	}

	if p.curTokenIs(lexer.SLASH) {
		p.nextToken()
	}
	if !p.curTokenIs(lexer.RANGLE) {
		p.expectError("'>'")
		return nil
	}
	p.nextToken()

	props, events := partitionAttributes(attributes)
	return &ast.SelfClosingTag{Token: tagToken, Name: name, Props: props, Events: events}
}

// parseTagName reads one or more dash-separated identifiers and classifies
// the result. A name whose first identifier is already upper-camel denotes a
// component and must be a single segment; anything else must join into a
// strict lower-kebab markup name.
func (p *Parser) parseTagName() (ast.TagName, bool) {
	segments, span, ok := p.parseNameSegments("a tag")
	if !ok {
		return ast.TagName{}, false
	}

	if ident.IsUpperCamel(segments[0]) {
		if len(segments) != 1 {
			p.addStructuredError("PARSE-0105", span.Line, span.Column, nil)
			return ast.TagName{}, false
		}
		return ast.TagName{Kind: ast.TagComponent, Name: segments[0], Span: span}, true
	}

	joined := strings.Join(segments, "-")
	if !ident.IsKebab(joined) {
		p.addStructuredError("PARSE-0103", span.Line, span.Column, map[string]any{
			"Kebab": ident.Kebab(joined),
		})
		return ast.TagName{}, false
	}

	return ast.TagName{Kind: ast.TagMarkup, Name: joined, Span: span}, true
}

// parseAttributeName reads a dash-separated attribute name, which must
// always be strict lower-kebab.
func (p *Parser) parseAttributeName() (ast.AttributeName, bool) {
	segments, span, ok := p.parseNameSegments("an attribute")
	if !ok {
		return ast.AttributeName{}, false
	}

	joined := strings.Join(segments, "-")
	if !ident.IsKebab(joined) {
		p.addStructuredError("PARSE-0104", span.Line, span.Column, map[string]any{
			"Kebab": ident.Kebab(joined),
		})
		return ast.AttributeName{}, false
	}

	return ast.AttributeName{Name: joined, Span: span}, true
}

// parseNameSegments collects IDENT (DASH IDENT)* and the covering span.
func (p *Parser) parseNameSegments(what string) ([]string, ast.Span, bool) {
	if !p.curTokenIs(lexer.IDENT) {
		p.nameError(what)
		return nil, ast.Span{}, false
	}

	segments := []string{p.curToken.Literal}
	span := ast.SpanOf(p.curToken)
	p.nextToken()

	for p.curTokenIs(lexer.DASH) {
		p.nextToken()
		if !p.curTokenIs(lexer.IDENT) {
			p.nameError(what)
			return nil, ast.Span{}, false
		}
		segments = append(segments, p.curToken.Literal)
		span = span.Join(ast.SpanOf(p.curToken))
		p.nextToken()
	}

	return segments, span, true
}

// nameError reports a missing or malformed name, with specific diagnostics
// for lexer-level failures.
func (p *Parser) nameError(what string) {
	switch {
	case p.curTokenIs(lexer.ILLEGAL):
		p.addStructuredError("LEX-0002", p.curToken.Line, p.curToken.Column, map[string]any{
			"Char": p.curToken.Literal,
		})
	case p.curTokenIs(lexer.EXPR) && p.curToken.Incomplete:
		p.addStructuredError("LEX-0001", p.curToken.Line, p.curToken.Column, nil)
	default:
		p.addStructuredError("PARSE-0102", p.curToken.Line, p.curToken.Column, map[string]any{
			"What": what,
		})
	}
}

// parseAttribute parses one '[@]name={expr}' unit.
func (p *Parser) parseAttribute() *ast.Attribute {
	attrToken := p.curToken

	event := false
	if p.curTokenIs(lexer.AT) {
		event = true
		p.nextToken()
	}

	name, ok := p.parseAttributeName()
	if !ok {
		return nil
	}

	if !p.curTokenIs(lexer.ASSIGN) {
		p.expectError("'='")
		return nil
	}
	p.nextToken()

	if !p.curTokenIs(lexer.EXPR) {
		p.expectError("an expression in braces")
		return nil
	}
	if p.curToken.Incomplete {
		p.addStructuredError("LEX-0001", p.curToken.Line, p.curToken.Column, nil)
		return nil
	}

	value := ast.Expr{Token: p.curToken, Raw: p.curToken.Literal}
	p.nextToken()

	return &ast.Attribute{Token: attrToken, Event: event, Name: name, Value: value}
}

// partitionAttributes splits attributes into properties and events,
// preserving source order within each group.
func partitionAttributes(attributes []*ast.Attribute) (props, events []*ast.Attribute) {
	for _, attr := range attributes {
		if attr.Event {
			events = append(events, attr)
		} else {
			props = append(props, attr)
		}
	}
	return props, events
}

// normalizeText collapses whitespace in a raw text run: interior whitespace
// runs containing a newline become a single space, runs at either edge that
// contain a newline are removed, and pure-space runs are kept as written.
// Returns "" for text that is whitespace only.
func normalizeText(raw string) string {
	var out strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if !isSpaceByte(c) {
			out.WriteByte(c)
			i++
			continue
		}

		j := i
		hasNewline := false
		for j < len(raw) && isSpaceByte(raw[j]) {
			if raw[j] == '\n' {
				hasNewline = true
			}
			j++
		}

		if hasNewline {
			if out.Len() > 0 && j < len(raw) {
				out.WriteByte(' ')
			}
		} else {
			out.WriteString(raw[i:j])
		}
		i = j
	}

	result := out.String()
	if strings.TrimSpace(result) == "" {
		return ""
	}
	return result
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
