package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
)

func noEnv(string) string { return "" }

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sorrel.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Suffix != ".sor.go" {
		t.Errorf("suffix = %q, want .sor.go", cfg.Suffix)
	}
	if cfg.Watch.DebounceMs != 100 {
		t.Errorf("debounce = %d, want 100", cfg.Watch.DebounceMs)
	}
	if cfg.Package != "" || cfg.OutDir != "" || cfg.Quiet {
		t.Errorf("unexpected non-zero defaults: %+v", cfg)
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	// Run from a directory with no sorrel.yaml.
	t.Chdir(t.TempDir())

	cfg, path, err := LoadWithPath("", noEnv)
	if err != nil {
		t.Fatalf("expected defaults when no config exists, got %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if cfg.Suffix != ".sor.go" {
		t.Errorf("expected default suffix, got %q", cfg.Suffix)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	path := writeConfig(t, "package: ui\nquiet: true\nwatch:\n  debounce_ms: 250\n")

	cfg, resolved, err := LoadWithPath(path, noEnv)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Package != "ui" {
		t.Errorf("package = %q, want ui", cfg.Package)
	}
	if !cfg.Quiet {
		t.Error("quiet = false, want true")
	}
	if cfg.Watch.DebounceMs != 250 {
		t.Errorf("debounce = %d, want 250", cfg.Watch.DebounceMs)
	}
	// Unset keys keep their defaults.
	if cfg.Suffix != ".sor.go" {
		t.Errorf("suffix = %q, want default", cfg.Suffix)
	}
	if !filepath.IsAbs(resolved) {
		t.Errorf("resolved path %q is not absolute", resolved)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noEnv)
	if err == nil {
		t.Fatal("expected an error for a missing explicit config")
	}

	serr, ok := err.(*serrors.SorrelError)
	if !ok || serr.Code != "CONFIG-0001" {
		t.Errorf("expected CONFIG-0001, got %v", err)
	}
}

func TestLoadFromEnvVar(t *testing.T) {
	path := writeConfig(t, "package: widgets\n")
	getenv := func(key string) string {
		if key == "SORREL_CONFIG" {
			return path
		}
		return ""
	}

	cfg, err := Load("", getenv)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Package != "widgets" {
		t.Errorf("package = %q, want widgets", cfg.Package)
	}
}

func TestEnvInterpolation(t *testing.T) {
	path := writeConfig(t, "package: ${SORREL_PKG}\noutdir: ${MISSING:-/tmp/gen}\n")
	getenv := func(key string) string {
		if key == "SORREL_PKG" {
			return "views"
		}
		return ""
	}

	cfg, err := Load(path, getenv)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Package != "views" {
		t.Errorf("package = %q, want views", cfg.Package)
	}
	if cfg.OutDir != "/tmp/gen" {
		t.Errorf("outdir = %q, want the ${VAR:-default} fallback", cfg.OutDir)
	}
}

func TestRelativeOutdirResolvesAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sorrel.yaml")
	if err := os.WriteFile(path, []byte("outdir: gen\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, noEnv)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := filepath.Join(dir, "gen")
	if cfg.OutDir != want {
		t.Errorf("outdir = %q, want %q", cfg.OutDir, want)
	}
	if cfg.BaseDir != dir {
		t.Errorf("basedir = %q, want %q", cfg.BaseDir, dir)
	}
}

func TestInvalidYAML(t *testing.T) {
	path := writeConfig(t, "package: [broken\n")

	_, err := Load(path, noEnv)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "invalid config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "bad package identifier",
			yaml:    "package: my-views\n",
			wantErr: "valid Go identifier",
		},
		{
			name:    "suffix without go extension",
			yaml:    "suffix: .sor.txt\n",
			wantErr: "must end in .go",
		},
		{
			name:    "negative debounce",
			yaml:    "watch:\n  debounce_ms: -5\n",
			wantErr: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)

			_, err := Load(path, noEnv)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
