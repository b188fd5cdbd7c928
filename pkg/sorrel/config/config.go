// Package config loads project settings from sorrel.yaml.
//
// Every key is optional; a missing config file is not an error. CLI flags
// override config values, which override the defaults.
package config

import (
	"fmt"
	"go/token"
	"strings"
)

// Config holds the project-level settings for the sorrel compiler.
type Config struct {
	// Package forces the package name of generated files. Empty means
	// "derive from the view file's directory".
	Package string `yaml:"package"`

	// OutDir is where generated files go. Empty writes each generated
	// file beside its source. Relative paths resolve against the config
	// file's directory.
	OutDir string `yaml:"outdir"`

	// Suffix is appended to the view file's base name. Must end in ".go".
	Suffix string `yaml:"suffix"`

	// Quiet suppresses per-file build logging.
	Quiet bool `yaml:"quiet"`

	Watch WatchConfig `yaml:"watch"`

	// BaseDir is the directory the config file was loaded from, used to
	// resolve relative paths. Empty when no config file was found.
	BaseDir string `yaml:"-"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	// DebounceMs coalesces bursts of filesystem events into one rebuild.
	DebounceMs int `yaml:"debounce_ms"`
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Suffix: ".sor.go",
		Watch: WatchConfig{
			DebounceMs: 100,
		},
	}
}

// validate checks the loaded values for errors.
func validate(cfg *Config) error {
	var errs []string

	if cfg.Package != "" && !token.IsIdentifier(cfg.Package) {
		errs = append(errs, fmt.Sprintf("package must be a valid Go identifier, got %q", cfg.Package))
	}

	if !strings.HasSuffix(cfg.Suffix, ".go") {
		errs = append(errs, fmt.Sprintf("suffix must end in .go, got %q", cfg.Suffix))
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Sprintf("watch.debounce_ms must not be negative, got %d", cfg.Watch.DebounceMs))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
