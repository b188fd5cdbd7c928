package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations; finding none
// returns Defaults() with no error.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the
// resolved path. The path is empty when no config file was found.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Defaults(), "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", configError(path, err)
	}

	// Interpolate environment variables
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", configError(path, err)
	}

	// Relative output paths resolve against the config file, not the cwd.
	cfg.BaseDir = filepath.Dir(absPath)
	if cfg.OutDir != "" && !filepath.IsAbs(cfg.OutDir) {
		cfg.OutDir = filepath.Join(cfg.BaseDir, cfg.OutDir)
	}

	if err := validate(cfg); err != nil {
		return nil, "", configError(path, err)
	}

	return cfg, absPath, nil
}

func configError(path string, err error) *serrors.SorrelError {
	return serrors.New("CONFIG-0001", map[string]any{
		"Path":    path,
		"GoError": err.Error(),
	})
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > SORREL_CONFIG env > ./sorrel.yaml.
// An empty result with nil error means "no config, use defaults".
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", configError(explicit, fmt.Errorf("config file not found"))
		}
		return explicit, nil
	}

	if envPath := getenv("SORREL_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", configError(envPath, fmt.Errorf("SORREL_CONFIG file not found"))
		}
		return envPath, nil
	}

	if _, err := os.Stat("sorrel.yaml"); err == nil {
		return "sorrel.yaml", nil
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}
