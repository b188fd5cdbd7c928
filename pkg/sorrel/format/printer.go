package format

import (
	"strings"
)

// printer manages formatting state and output.
type printer struct {
	output strings.Builder
	indent int // current indentation level
}

func newPrinter() *printer {
	return &printer{}
}

// String returns the formatted output.
func (p *printer) String() string {
	return p.output.String()
}

// write appends a string to the output.
func (p *printer) write(s string) {
	p.output.WriteString(s)
}

// newline writes a newline character.
func (p *printer) newline() {
	p.output.WriteString("\n")
}

// writeIndent writes the current indentation.
func (p *printer) writeIndent() {
	p.output.WriteString(strings.Repeat(IndentString, p.indent))
}

// indentInc increases the indentation level.
func (p *printer) indentInc() {
	p.indent++
}

// indentDec decreases the indentation level.
func (p *printer) indentDec() {
	if p.indent > 0 {
		p.indent--
	}
}

// wouldFitOnLine checks if a string would fit on one line starting from
// the current indent position.
func (p *printer) wouldFitOnLine(s string, threshold int) bool {
	if strings.Contains(s, "\n") {
		return false
	}
	return p.indent*IndentWidth+len(s) <= threshold
}
