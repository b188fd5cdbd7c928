// Package errors provides structured error types for the sorrel compiler.
//
// This package defines SorrelError, a unified error type that can represent
// lexing, parsing, generation, and driver errors with rich metadata for
// display and programmatic handling.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassLex      ErrorClass = "lex"      // Tokenization errors
	ClassParse    ErrorClass = "parse"    // Grammar/validation errors
	ClassGenerate ErrorClass = "generate" // Code generation errors
	ClassView     ErrorClass = "view"     // View-file header/body errors
	ClassConfig   ErrorClass = "config"   // Configuration loading
	ClassIO       ErrorClass = "io"       // File operations
)

// SorrelError represents any error from compiling a template.
type SorrelError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "PARSE-0103")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`  // File path (if known)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *SorrelError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *SorrelError) String() string {
	var sb strings.Builder

	// Location prefix
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	// Message
	sb.WriteString(e.Message)

	// Hints
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *SorrelError) PrettyString() string {
	var sb strings.Builder

	// Error type header
	switch e.Class {
	case ClassLex, ClassParse, ClassView:
		sb.WriteString("Parse error")
	case ClassGenerate:
		sb.WriteString("Codegen error")
	default:
		sb.WriteString("Build error")
	}

	// Location
	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	// Message
	sb.WriteString(e.Message)

	// Hints
	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Use: ")
		} else {
			sb.WriteString(" or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *SorrelError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ToJSONIndent returns the error as indented JSON bytes.
func (e *SorrelError) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// WithFile returns a copy of the error with the file path set.
func (e *SorrelError) WithFile(file string) *SorrelError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *SorrelError) WithPosition(line, column int) *SorrelError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsParseError returns true if this error came from reading the template
// (lexing, parsing, or the view header) rather than generating code.
func (e *SorrelError) IsParseError() bool {
	return e.Class == ClassLex || e.Class == ClassParse || e.Class == ClassView
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Lexing errors (LEX-0xxx)
	// ========================================
	"LEX-0001": {
		Class:    ClassLex,
		Template: "unterminated expression",
		Hints:    []string{"every '{' needs a matching '}'"},
	},
	"LEX-0002": {
		Class:    ClassLex,
		Template: "unexpected character '{{.Char}}' in tag",
	},

	// ========================================
	// Parse errors (PARSE-01xx)
	// ========================================
	"PARSE-0101": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0102": {
		Class:    ClassParse,
		Template: "expected {{.What}} name",
	},
	"PARSE-0103": {
		Class:    ClassParse,
		Template: "tag name in kebab case only like {{.Kebab}}.",
		Hints:    []string{"<{{.Kebab}}>"},
	},
	"PARSE-0104": {
		Class:    ClassParse,
		Template: "attribute name in kebab case only like {{.Kebab}}.",
		Hints:    []string{"{{.Kebab}}={ ... }"},
	},
	"PARSE-0105": {
		Class:    ClassParse,
		Template: "no dashes in a component tag allowed.",
	},
	"PARSE-0106": {
		Class:    ClassParse,
		Template: "opening and closing tag must be same.",
		Hints:    []string{"</{{.Open}}>"},
	},
	"PARSE-0107": {
		Class:    ClassParse,
		Template: "opening and closing tag must be same.",
		Hints:    []string{"<{{.Open}}> is a {{.OpenKind}} tag but </{{.Close}}> is a {{.CloseKind}} tag"},
	},

	// ========================================
	// Generation errors (GEN-02xx)
	// ========================================
	"GEN-0201": {
		Class:    ClassGenerate,
		Template: "component tag <{{.Name}}> cannot contain children",
		Hints:    []string{"<{{.Name}}></{{.Name}}>"},
	},
	"GEN-0202": {
		Class:    ClassGenerate,
		Template: "invalid expression {{printf \"%q\" .Expr}}: {{.GoError}}",
	},

	// ========================================
	// View-file errors (VIEW-03xx)
	// ========================================
	"VIEW-0301": {
		Class:    ClassView,
		Template: "missing view declaration",
		Hints:    []string{"view Name(params) above the markup"},
	},
	"VIEW-0302": {
		Class:    ClassView,
		Template: "invalid view parameters: {{.GoError}}",
	},
	"VIEW-0303": {
		Class:    ClassView,
		Template: "view body is empty",
	},
	"VIEW-0304": {
		Class:    ClassView,
		Template: "view name must be an exported identifier, got '{{.Name}}'",
	},

	// ========================================
	// Configuration errors (CONFIG-0xxx)
	// ========================================
	"CONFIG-0001": {
		Class:    ClassConfig,
		Template: "invalid config file '{{.Path}}': {{.GoError}}",
	},

	// ========================================
	// I/O errors (IO-04xx)
	// ========================================
	"IO-0401": {
		Class:    ClassIO,
		Template: "failed to read '{{.Path}}': {{.GoError}}",
	},
	"IO-0402": {
		Class:    ClassIO,
		Template: "failed to write '{{.Path}}': {{.GoError}}",
	},
}

// New creates a SorrelError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *SorrelError {
	def, ok := ErrorCatalog[code]
	if !ok {
		// Unknown code - create a generic error
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &SorrelError{
			Class:   ClassParse, // Default class
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	// Render the message template
	msg := renderTemplate(def.Template, data)

	// Render hint templates
	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &SorrelError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a SorrelError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *SorrelError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *SorrelError {
	return &SorrelError{
		Class:   class,
		Message: message,
	}
}

// NewSimpleWithHints creates a simple error with hints.
func NewSimpleWithHints(class ErrorClass, message string, hints ...string) *SorrelError {
	return &SorrelError{
		Class:   class,
		Message: message,
		Hints:   hints,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Create matrix
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// FuzzyMatch represents a fuzzy match result with its distance.
type FuzzyMatch struct {
	Value    string
	Distance int
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within the threshold, otherwise empty string.
// The threshold is calculated dynamically based on the length of the input.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	// Normalize input to lowercase for comparison
	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)

		dist := levenshteinDistance(inputLower, candidateLower)

		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate // Return original case
		}
	}

	// Calculate threshold based on input length
	// Short words (1-3): max 1 edit
	// Medium words (4-6): max 2 edits
	// Longer words (7+): max 3 edits
	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	// Don't suggest if distance is 0 (exact match) or over threshold
	if bestDistance <= 0 || bestDistance > threshold {
		return ""
	}

	return bestMatch
}

// FindTopMatches returns the top N closest matches to the input.
// Useful for showing multiple suggestions.
func FindTopMatches(input string, candidates []string, n int) []string {
	if len(input) == 0 || len(candidates) == 0 || n <= 0 {
		return nil
	}

	inputLower := strings.ToLower(input)

	// Calculate distances for all candidates
	var matches []FuzzyMatch
	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)
		dist := levenshteinDistance(inputLower, candidateLower)
		// Exclude exact matches
		if dist > 0 {
			matches = append(matches, FuzzyMatch{Value: candidate, Distance: dist})
		}
	}

	// Sort by distance
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	// Return top N matches within threshold
	var result []string
	for i := 0; i < len(matches) && i < n; i++ {
		if matches[i].Distance <= threshold {
			result = append(result, matches[i].Value)
		}
	}

	return result
}

// NewMismatchedTag creates a mismatched-tag error, adding a "Did you mean?"
// hint when the closing name looks like a typo of the opening name.
func NewMismatchedTag(openName, closeName string, line, column int) *SorrelError {
	data := map[string]any{"Open": openName, "Close": closeName}
	err := NewWithPosition("PARSE-0106", line, column, data)

	if suggestion := FindClosestMatch(closeName, []string{openName}); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `</"+suggestion+">`?")
	}

	return err
}
