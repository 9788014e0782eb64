// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
// Values absent from the file keep whatever target already holds. Each prepare
// step runs on the decoded value, in order, before it is validated once.
func Load[T any](filename string, target *T, prepare ...func(*T) error) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	return finish(target, prepare)
}

// LoadOptional is Load for a file that may not exist. A missing file leaves
// target as it is before the prepare steps and validation.
func LoadOptional[T any](filename string, target *T, prepare ...func(*T) error) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return finish(target, prepare)
	}
	return Load(filename, target, prepare...)
}

func finish[T any](target *T, prepare []func(*T) error) error {
	for _, step := range prepare {
		if err := step(target); err != nil {
			return err
		}
	}
	return validate(target)
}

func validate(target any) error {
	if validator, ok := target.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
