package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Content tokens
	TEXT // raw text run between tags
	EXPR // braced Go expression: { user.Name }

	// Tag structure
	IDENT  // div, br, my, attr, Counter, ...
	LANGLE // <
	RANGLE // >
	SLASH  // /
	AT     // @
	ASSIGN // =
	DASH   // -
)

// Token represents a single token
type Token struct {
	Type       TokenType
	Literal    string
	Line       int  // 1-based line of the first character
	Column     int  // 1-based column of the first character
	EndLine    int  // 1-based line of the last character
	EndColumn  int  // 1-based column of the last character
	Incomplete bool // true for an EXPR cut off by EOF before its closing brace
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case TEXT:
		return "TEXT"
	case EXPR:
		return "EXPR"
	case IDENT:
		return "IDENT"
	case LANGLE:
		return "LANGLE"
	case RANGLE:
		return "RANGLE"
	case SLASH:
		return "SLASH"
	case AT:
		return "AT"
	case ASSIGN:
		return "ASSIGN"
	case DASH:
		return "DASH"
	default:
		return "UNKNOWN"
	}
}

// Lexer turns markup source into tokens. It is modal: between '<' and '>'
// it produces tag-structure tokens and skips whitespace; everywhere else it
// produces raw TEXT runs and EXPR blocks, preserving whitespace.
type Lexer struct {
	filename     string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination (first byte)
	chRune       rune // current character as a rune (for Unicode support)
	chSize       int  // byte size of current character (1 for ASCII, 1-4 for UTF-8)
	line         int  // current line number
	column       int  // current column number
	inTag        bool // whether we are between '<' and '>'
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithPosition(input, "<input>", 1)
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	return NewWithPosition(input, filename, 1)
}

// NewWithPosition creates a lexer whose first line reports as startLine.
// Used when the markup body begins partway into a larger file.
func NewWithPosition(input string, filename string, startLine int) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     startLine,
		column:   0,
	}
	l.readChar()
	return l
}

// Filename returns the name the lexer reports positions against.
func (l *Lexer) Filename() string {
	return l.filename
}

// LexerState holds the state of a lexer for save/restore
type LexerState struct {
	position     int
	readPosition int
	ch           byte
	chRune       rune
	chSize       int
	line         int
	column       int
	inTag        bool
}

// SaveState saves the current lexer state for potential restoration
func (l *Lexer) SaveState() LexerState {
	return LexerState{
		position:     l.position,
		readPosition: l.readPosition,
		ch:           l.ch,
		chRune:       l.chRune,
		chSize:       l.chSize,
		line:         l.line,
		column:       l.column,
		inTag:        l.inTag,
	}
}

// RestoreState restores the lexer to a previously saved state
func (l *Lexer) RestoreState(state LexerState) {
	l.position = state.position
	l.readPosition = state.readPosition
	l.ch = state.ch
	l.chRune = state.chRune
	l.chSize = state.chSize
	l.line = state.line
	l.column = state.column
	l.inTag = state.inTag
}

// PeekToken returns the next token without consuming it.
// Used for lookahead when the parser needs to see beyond its own peek token.
func (l *Lexer) PeekToken() Token {
	state := l.SaveState()
	tok := l.NextToken()
	l.RestoreState(state)
	return tok
}

// readChar reads the next character and advances position.
// Uses a hybrid approach: ASCII fast-path for single-byte characters,
// UTF-8 decoding for multi-byte characters (to support Unicode text).
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL character represents EOF
		l.chRune = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	b := l.input[l.readPosition]

	// ASCII fast-path: single-byte characters (most common case)
	if b < utf8.RuneSelf {
		l.ch = b
		l.chRune = rune(b)
		l.chSize = 1
		l.position = l.readPosition
		l.readPosition++

		if l.ch == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
		return
	}

	// Non-ASCII: decode the full UTF-8 rune
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = b
	l.chRune = r
	l.chSize = size
	l.position = l.readPosition
	l.readPosition += size

	l.column++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	if !l.inTag {
		return l.nextContentToken()
	}

	l.skipWhitespace()

	var tok Token
	switch l.ch {
	case 0:
		tok = Token{Type: EOF, Literal: "", Line: l.line, Column: l.column}
		return tok
	case '<':
		tok = newToken(LANGLE, l.ch, l.line, l.column)
	case '>':
		tok = newToken(RANGLE, l.ch, l.line, l.column)
		l.inTag = false
	case '/':
		tok = newToken(SLASH, l.ch, l.line, l.column)
	case '@':
		tok = newToken(AT, l.ch, l.line, l.column)
	case '=':
		tok = newToken(ASSIGN, l.ch, l.line, l.column)
	case '-':
		tok = newToken(DASH, l.ch, l.line, l.column)
	case '{':
		return l.readExpression()
	default:
		if isLetter(l.ch) || isLetterRune(l.chRune) {
			return l.readIdentifier()
		}
		tok = newToken(ILLEGAL, l.ch, l.line, l.column)
		if l.chSize > 1 {
			tok.Literal = l.input[l.position : l.position+l.chSize]
		}
	}

	l.readChar()
	return tok
}

// nextContentToken scans outside tags: text runs, expressions, and the '<'
// that hands control back to tag mode.
func (l *Lexer) nextContentToken() Token {
	switch l.ch {
	case 0:
		return Token{Type: EOF, Literal: "", Line: l.line, Column: l.column}
	case '<':
		tok := newToken(LANGLE, l.ch, l.line, l.column)
		l.inTag = true
		l.readChar()
		return tok
	case '{':
		return l.readExpression()
	default:
		return l.readText()
	}
}

// readText reads a raw text run up to the next '<', '{', or EOF.
// The literal is untouched source text; normalization is the parser's job.
func (l *Lexer) readText() Token {
	startLine := l.line
	startCol := l.column
	position := l.position

	endLine := l.line
	endCol := l.column
	for l.ch != '<' && l.ch != '{' && l.ch != 0 {
		endLine = l.line
		endCol = l.column
		l.readChar()
	}

	return Token{
		Type:      TEXT,
		Literal:   l.input[position:l.position],
		Line:      startLine,
		Column:    startCol,
		EndLine:   endLine,
		EndColumn: endCol,
	}
}

// readExpression reads a balanced-brace expression block starting at '{'.
// The literal is the raw Go source between the braces. Brace depth ignores
// braces inside string, rune, and raw-string literals and inside Go comments,
// so `{ fmt.Sprintf("}{") }` lexes as one token.
func (l *Lexer) readExpression() Token {
	startLine := l.line
	startCol := l.column

	l.readChar() // consume '{'
	innerStart := l.position
	depth := 1

	for depth > 0 && l.ch != 0 {
		switch l.ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				continue // leave the closing brace for after the loop
			}
		case '"':
			l.skipString('"')
			continue
		case '\'':
			l.skipString('\'')
			continue
		case '`':
			l.skipRawString()
			continue
		case '/':
			if l.peekChar() == '/' {
				l.skipLineComment()
				continue
			}
			if l.peekChar() == '*' {
				l.skipBlockComment()
				continue
			}
		}
		l.readChar()
	}

	if l.ch == 0 {
		return Token{
			Type:       EXPR,
			Literal:    l.input[innerStart:l.position],
			Line:       startLine,
			Column:     startCol,
			EndLine:    l.line,
			EndColumn:  l.column,
			Incomplete: true,
		}
	}

	inner := l.input[innerStart:l.position]
	endLine := l.line
	endCol := l.column
	l.readChar() // consume '}'

	return Token{
		Type:      EXPR,
		Literal:   inner,
		Line:      startLine,
		Column:    startCol,
		EndLine:   endLine,
		EndColumn: endCol,
	}
}

// skipString consumes a quoted literal, honoring backslash escapes.
func (l *Lexer) skipString(quote byte) {
	l.readChar() // consume opening quote
	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
		}
		if l.ch != 0 {
			l.readChar()
		}
	}
	if l.ch != 0 {
		l.readChar() // consume closing quote
	}
}

// skipRawString consumes a backtick raw string (no escapes).
func (l *Lexer) skipRawString() {
	l.readChar()
	for l.ch != '`' && l.ch != 0 {
		l.readChar()
	}
	if l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() {
	l.readChar() // consume '/'
	l.readChar() // consume '*'
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

// readIdentifier reads an identifier.
// Supports Unicode identifiers via isLetterRune.
func (l *Lexer) readIdentifier() Token {
	startLine := l.line
	startCol := l.column
	position := l.position

	endLine := l.line
	endCol := l.column
	for isLetterRune(l.chRune) || isDigit(l.ch) {
		endLine = l.line
		endCol = l.column
		l.readChar()
	}

	return Token{
		Type:      IDENT,
		Literal:   l.input[position:l.position],
		Line:      startLine,
		Column:    startCol,
		EndLine:   endLine,
		EndColumn: endCol,
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func newToken(tokenType TokenType, ch byte, line, column int) Token {
	return Token{
		Type:      tokenType,
		Literal:   string(ch),
		Line:      line,
		Column:    column,
		EndLine:   line,
		EndColumn: column,
	}
}

// isLetter checks if a byte represents a letter (ASCII fast-path).
// For non-ASCII bytes (>=0x80), this returns false - use isLetterRune for Unicode.
func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isLetterRune checks if a rune is a valid identifier character (letter or underscore).
func isLetterRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isDigit checks if the character is a digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
