package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/peterh/liner"

	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/parser"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/sorrel"
)

const PROMPT = ">> "
const PROMPT_TREE = "t> "
const CONTINUATION_PROMPT = ".. "

const SORREL_LOGO = `
█▀ █▀█ █▀█ █▀█ █▀▀ █░░
▄█ █▄█ █▀▄ █▀▄ ██▄ █▄▄ `

// Tag names for tab completion
var completionWords = []string{
	// Container tags
	"div", "span", "p", "a", "ul", "ol", "li", "table", "thead", "tbody",
	"tr", "td", "th", "form", "label", "button", "select", "option",
	"header", "footer", "main", "section", "article", "aside", "nav",
	"h1", "h2", "h3", "h4", "h5", "h6", "pre", "code", "strong", "em",
	// Void tags
	"area", "base", "br", "col", "embed", "hr", "img", "input", "link",
	"meta", "param", "source", "track", "wbr",
}

// Start starts the REPL with line editing, history, and tab completion.
// Each complete piece of markup is expanded to the Go expression it
// generates; tree mode shows the parsed tree instead.
func Start(in io.Reader, out io.Writer, version string) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	// Set up tab completion
	line.SetCompleter(func(line string) []string {
		return filterCompletions(line)
	})

	// Load command history from file
	historyFile := filepath.Join(os.TempDir(), ".sorrel_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	// Save history on exit
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "%s", SORREL_LOGO)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type markup to see the Go it becomes")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder
	treeMode := false // When true, show the parsed tree instead of generated Go
	basePrompt := PROMPT

	for {
		currentPrompt := basePrompt
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			// Ctrl+D or Ctrl+C
			if err == liner.ErrPromptAborted {
				// Ctrl+C - clear any buffered input and return to main prompt
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				// Ctrl+D - exit
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		// Check for exit command
		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		// Handle REPL commands (start with :)
		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			newTreeMode, handled := handleReplCommand(trimmed, out, treeMode)
			if handled {
				treeMode = newTreeMode
				if treeMode {
					basePrompt = PROMPT_TREE
				} else {
					basePrompt = PROMPT
				}
			}
			continue
		}

		// Skip empty lines when no input buffered
		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		// Add to input buffer
		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		// Check if input is complete (no open tags or expressions)
		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			// Continue multi-line input
			continue
		}

		// Input is complete - add to history and expand
		if trimmed != "" {
			line.AppendHistory(fullInput)
		}

		if treeMode {
			root, err := sorrel.ParseContent(fullInput)
			if err != nil {
				printError(out, err)
			} else {
				io.WriteString(out, spew.Sdump(root))
			}
		} else {
			code, err := sorrel.Expand(fullInput)
			if err != nil {
				printError(out, err)
			} else {
				io.WriteString(out, code)
				io.WriteString(out, "\n")
			}
		}

		// Clear buffer for next input
		inputBuffer.Reset()
	}
}

// handleReplCommand handles REPL meta-commands that start with ':'
// Returns (newTreeMode, handled) - if handled is true, the command was recognized
func handleReplCommand(cmd string, out io.Writer, treeMode bool) (bool, bool) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :ast            Toggle tree mode")
		fmt.Fprintln(out, "  exit, quit      Exit the REPL")
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Output Modes:")
		fmt.Fprintln(out, "  >> (normal)     Shows the Go expression the markup becomes")
		fmt.Fprintln(out, "  t> (tree)       Shows the parsed tree")
		return treeMode, true

	case ":ast":
		newMode := !treeMode
		if newMode {
			fmt.Fprintln(out, "Tree mode ON (showing parsed trees)")
		} else {
			fmt.Fprintln(out, "Tree mode OFF (showing generated Go)")
		}
		return newMode, true

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
		return treeMode, true
	}
}

// filterCompletions returns completion suggestions based on current input.
// Candidates replace the whole line, so each match is the line with its
// last token completed.
func filterCompletions(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	// Don't complete if line ends with whitespace
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	// The token being typed starts after the last delimiter, so tag names
	// complete after '<' and '</'
	prefix, word := "", line
	if i := strings.LastIndexAny(line, "</@={} \t"); i >= 0 {
		prefix, word = line[:i+1], line[i+1:]
	}
	if word == "" {
		return nil
	}

	var matches []string
	for _, w := range completionWords {
		if strings.HasPrefix(w, word) {
			matches = append(matches, prefix+w)
		}
	}
	return matches
}

// needsMoreInput checks if the input still has an open tag or an
// unterminated expression, meaning the user is mid-element.
func needsMoreInput(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}

	l := lexer.New(input)
	depth := 0
	lastOpenCounted := false // whether the most recent '<name' bumped depth
	var prev lexer.Token

	for {
		tok := l.NextToken()
		if tok.Type == lexer.EOF {
			break
		}

		switch tok.Type {
		case lexer.EXPR:
			if tok.Incomplete {
				return true
			}
		case lexer.IDENT:
			if prev.Type == lexer.LANGLE {
				if parser.IsVoidTag(tok.Literal) {
					lastOpenCounted = false
				} else {
					depth++
					lastOpenCounted = true
				}
			}
		case lexer.SLASH:
			if prev.Type == lexer.LANGLE {
				// '</' starts a closing tag
				if depth > 0 {
					depth--
				}
				lastOpenCounted = false
			} else if lastOpenCounted {
				// A '/' inside the open tag self-closes it
				if depth > 0 {
					depth--
				}
				lastOpenCounted = false
			}
		}
		prev = tok
	}

	return depth > 0
}

// printError prints a build error in its multi-line form
func printError(out io.Writer, err *serrors.SorrelError) {
	io.WriteString(out, err.PrettyString())
	io.WriteString(out, "\n")
}
