package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/config"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/format"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/repl"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/sorrel"
)

// Version is set at compile time via -ldflags
var Version = "0.3.1"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")

	// Build flags
	pkgFlag        = flag.String("p", "", "Package name for generated files")
	pkgLongFlag    = flag.String("pkg", "", "Package name for generated files")
	outDirFlag     = flag.String("o", "", "Write generated files to this directory")
	outDirLongFlag = flag.String("outdir", "", "Write generated files to this directory")
	configFlag     = flag.String("config", "", "Path to sorrel.yaml")
	checkFlag      = flag.Bool("check", false, "Check view files without writing output")
	watchFlag      = flag.Bool("w", false, "Rebuild when view files change")
	watchLongFlag  = flag.Bool("watch", false, "Rebuild when view files change")
	quietFlag      = flag.Bool("q", false, "Suppress per-file build output")
	quietLongFlag  = flag.Bool("quiet", false, "Suppress per-file build output")

	// Debug flags
	astFlag = flag.Bool("ast", false, "Print the parsed tree instead of generating code")
)

func main() {
	// Check for subcommands first (before flag parsing)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "fmt":
			fmtCommand(os.Args[2:])
			return
		case "repl":
			repl.Start(os.Stdin, os.Stdout, Version)
			return
		}
	}

	// Customize flag usage message
	flag.Usage = printHelp
	flag.Parse()

	// Check for help flag
	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	// Check for version flag
	if *versionFlag || *versionLongFlag {
		fmt.Printf("sorrel version %s\n", Version)
		os.Exit(0)
	}

	// Load project config; flags override file values
	cfg := loadConfig()
	opts := buildOptions(cfg)

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := collectViewFiles(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	watch := *watchFlag || *watchLongFlag
	if len(files) == 0 && !watch {
		fmt.Fprintln(os.Stderr, "Error: no .sor files found")
		os.Exit(2)
	}

	// Mode dispatch
	switch {
	case *astFlag:
		os.Exit(dumpFiles(files))
	case watch:
		os.Exit(watchAndBuild(paths, files, cfg, opts))
	default:
		os.Exit(buildFiles(files, opts))
	}
}

func printHelp() {
	fmt.Printf(`sorrel - view compiler for Go version %s

Usage:
  sorrel [options] [path ...]
  sorrel fmt [options] <file>...
  sorrel repl

Commands:
  fmt                   Format view source files
  repl                  Expand markup interactively

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information

Build Options:
  -p, --pkg <name>      Package name for generated files
  -o, --outdir <dir>    Write generated files to this directory
  --config <path>       Path to sorrel.yaml
  --check               Check view files without writing output
  -w, --watch           Rebuild when view files change
  -q, --quiet           Suppress per-file build output
  --ast                 Print the parsed tree instead of generating code

Config Resolution:
  1. --config flag
  2. SORREL_CONFIG environment variable
  3. ./sorrel.yaml

Examples:
  sorrel                    Compile every .sor file under the current directory
  sorrel views/             Compile every .sor file under views/
  sorrel views/todo.sor     Compile a single view file
  sorrel -w views/          Recompile whenever a view changes
  sorrel --check views/     Report errors without writing files
  sorrel -p ui views/       Force package ui in generated files
  sorrel fmt -w todo.sor    Format a view file in place
  sorrel repl               Explore the expansion interactively

For more information, visit: https://github.com/sorrel-lang/sorrel
`, Version)
}

// loadConfig loads sorrel.yaml, exiting on a malformed file. A missing
// config is not an error; defaults apply.
func loadConfig() *config.Config {
	cfg, _, err := config.LoadWithPath(*configFlag, os.Getenv)
	if err != nil {
		if serr, ok := err.(*serrors.SorrelError); ok {
			fmt.Fprintln(os.Stderr, serr.PrettyString())
		} else {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		}
		os.Exit(2)
	}
	return cfg
}

// buildOptions merges config values and flags into compile options.
// Flags win over the config file; short flags win over long ones.
func buildOptions(cfg *config.Config) sorrel.Options {
	opts := sorrel.Options{
		Package: cfg.Package,
		OutDir:  cfg.OutDir,
		Suffix:  cfg.Suffix,
		Check:   *checkFlag,
	}

	pkg := *pkgFlag
	if pkg == "" {
		pkg = *pkgLongFlag
	}
	if pkg != "" {
		opts.Package = pkg
	}

	outDir := *outDirFlag
	if outDir == "" {
		outDir = *outDirLongFlag
	}
	if outDir != "" {
		opts.OutDir = outDir
	}

	if *quietFlag || *quietLongFlag || cfg.Quiet {
		opts.Logger = sorrel.NullLogger()
	}

	return opts
}

// collectViewFiles expands paths into the list of .sor files to compile.
// Files are taken as given; directories are walked recursively, skipping
// hidden entries.
func collectViewFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			add(path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil // Skip unreadable entries
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && p != path {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(p) == ".sor" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// buildFiles compiles each view file, printing diagnostics for failures
func buildFiles(files []string, opts sorrel.Options) int {
	hasErrors := false

	for _, filename := range files {
		if _, err := sorrel.CompileFile(filename, opts); err != nil {
			printCompileError(filename, err)
			hasErrors = true
		}
	}

	if hasErrors {
		return 1
	}
	return 0
}

// dumpFiles prints the parsed tree of each view file instead of compiling it
func dumpFiles(files []string) int {
	hasErrors := false

	for _, filename := range files {
		src, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			hasErrors = true
			continue
		}

		view, perr := sorrel.ParseView(src, filename)
		if perr != nil {
			printCompileError(filename, perr)
			hasErrors = true
			continue
		}

		fmt.Printf("%s: view %s(%s)\n", filename, view.Name, view.Params)
		spew.Dump(view.Body)
	}

	if hasErrors {
		return 1
	}
	return 0
}

// printCompileError prints a build error with source context when the
// error carries a position
func printCompileError(filename string, err *serrors.SorrelError) {
	fmt.Fprintln(os.Stderr, err.PrettyString())

	if err.Line <= 0 {
		return
	}
	content, readErr := os.ReadFile(filename)
	if readErr != nil {
		return
	}
	printSourceContext(strings.Split(string(content), "\n"), err.Line, err.Column)
}

// printSourceContext prints the source line and error pointer
func printSourceContext(lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := lines[lineNum-1]

	// Calculate how many columns to trim from the left
	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == ' ' || sourceLine[i] == '\t' {
			if sourceLine[i] == '\t' {
				trimCount += 8
			} else {
				trimCount++
			}
		} else {
			break
		}
	}

	// Show the trimmed line with slight indentation
	trimmedLine := strings.TrimLeft(sourceLine, " \t")
	fmt.Fprintf(os.Stderr, "    %s\n", trimmedLine)

	// Show pointer to the error position
	if colNum > 0 {
		// Calculate visual column accounting for tabs (8 spaces each)
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}

		adjustedCol := max(visualCol-trimCount, 0)

		pointer := strings.Repeat(" ", adjustedCol) + "^"
		fmt.Fprintf(os.Stderr, "    %s\n", pointer)
	}
}

// fmtCommand handles the 'sorrel fmt' subcommand
func fmtCommand(args []string) {
	fmtFlags := flag.NewFlagSet("fmt", flag.ExitOnError)
	writeFlag := fmtFlags.Bool("w", false, "Write result to source file instead of stdout")
	diffFlag := fmtFlags.Bool("d", false, "Display diffs instead of rewriting files")
	listFlag := fmtFlags.Bool("l", false, "List files whose formatting differs from sorrel fmt's")

	fmtFlags.Usage = func() {
		fmt.Fprintf(os.Stderr, `sorrel fmt - format view source files

Usage:
  sorrel fmt [options] <file>...

Options:
  -w    Write result to source file instead of stdout
  -d    Display diffs instead of rewriting files
  -l    List files whose formatting differs from sorrel fmt's

Examples:
  sorrel fmt todo.sor        Print formatted output to stdout
  sorrel fmt -w todo.sor     Format file in place
  sorrel fmt -l views/*.sor  List files that need formatting
  sorrel fmt -d todo.sor     Show what would change
`)
	}

	if err := fmtFlags.Parse(args); err != nil {
		os.Exit(1)
	}

	files := fmtFlags.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no files specified")
		fmtFlags.Usage()
		os.Exit(1)
	}

	exitCode := 0
	for _, filename := range files {
		if err := formatFile(filename, *writeFlag, *diffFlag, *listFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting %s: %v\n", filename, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

// formatFile formats a single view file
func formatFile(filename string, write, diff, list bool) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	source := string(content)

	view, perr := sorrel.ParseView(content, filename)
	if perr != nil {
		printCompileError(filename, perr)
		return fmt.Errorf("parse errors")
	}

	formatted := format.FormatView(view.Preamble, view.Name, view.Params, view.Body)

	// Ensure file ends with newline
	if !strings.HasSuffix(formatted, "\n") {
		formatted += "\n"
	}

	// Check if formatting changed anything
	changed := formatted != source

	if list {
		// List mode: just print filename if it would change
		if changed {
			fmt.Println(filename)
		}
		return nil
	}

	if diff {
		// Diff mode: show what would change
		if changed {
			showDiff(filename, source, formatted)
		}
		return nil
	}

	if write {
		// Write mode: update file in place
		if changed {
			if err := os.WriteFile(filename, []byte(formatted), 0644); err != nil {
				return fmt.Errorf("writing file: %w", err)
			}
		}
		return nil
	}

	// Default: print to stdout
	fmt.Print(formatted)
	return nil
}

// showDiff displays a simple diff between original and formatted content
func showDiff(filename, original, formatted string) {
	fmt.Printf("diff %s\n", filename)

	origLines := strings.Split(original, "\n")
	fmtLines := strings.Split(formatted, "\n")

	// Simple line-by-line diff (not a full unified diff, but useful)
	maxLines := max(len(fmtLines), len(origLines))

	for i := range maxLines {
		origLine := ""
		fmtLine := ""
		if i < len(origLines) {
			origLine = origLines[i]
		}
		if i < len(fmtLines) {
			fmtLine = fmtLines[i]
		}

		if origLine != fmtLine {
			if origLine != "" {
				fmt.Printf("-%d: %s\n", i+1, origLine)
			}
			if fmtLine != "" {
				fmt.Printf("+%d: %s\n", i+1, fmtLine)
			}
		}
	}
}
