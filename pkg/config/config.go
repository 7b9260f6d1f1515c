// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable
// expansion. Both $VAR and ${VAR} are expanded; ${VAR:-fallback} uses
// fallback when VAR is unset or empty.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// Reload loads filename on top of a fresh value from defaults. The caller's
// current configuration is untouched when loading fails.
func Reload[T any](filename string, defaults func() *T) (*T, error) {
	target := defaults()
	if err := Load(filename, target); err != nil {
		return nil, err
	}
	return target, nil
}

// ExpandEnv replaces $VAR, ${VAR} and ${VAR:-fallback} in s.
func ExpandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		name, fallback, ok := strings.Cut(key, ":-")
		v := os.Getenv(name)
		if ok && v == "" {
			return fallback
		}
		return v
	})
}
