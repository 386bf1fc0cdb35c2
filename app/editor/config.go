// Package editor holds the rich-text editor toolbar integration: the placeholder
// dropdown, the command it drives and the toolbar it is registered on
package editor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCommand is the editor command invoked with the chosen placeholder
const DefaultCommand = "insertPlaceholder"

// Config is the editor configuration file
type Config struct {
	Toolbar      []string          `yaml:"toolbar"`
	Placeholders PlaceholderConfig `yaml:"placeholders"`
}

// PlaceholderConfig configures the placeholder dropdown
type PlaceholderConfig struct {
	Label   string   `yaml:"label"`
	Command string   `yaml:"command"`
	Tokens  []string `yaml:"tokens"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Toolbar: []string{"bold", "italic", "link", PlaceholderItemName},
		Placeholders: PlaceholderConfig{
			Label:   "Placeholders",
			Command: DefaultCommand,
			Tokens:  []string{},
		},
	}
}

// LoadConfig reads a YAML editor configuration. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read editor config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse editor config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithTokens replaces the placeholder tokens when tokens is non-empty
func (c *Config) WithTokens(tokens []string) *Config {
	if len(tokens) == 0 {
		return c
	}
	clone := *c
	clone.Placeholders.Tokens = append([]string(nil), tokens...)
	clone.normalize()
	return &clone
}

func (c *Config) normalize() {
	if c.Placeholders.Command == "" {
		c.Placeholders.Command = DefaultCommand
	}
	if c.Placeholders.Label == "" {
		c.Placeholders.Label = "Placeholders"
	}
	tokens := make([]string, 0, len(c.Placeholders.Tokens))
	for _, t := range c.Placeholders.Tokens {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	c.Placeholders.Tokens = tokens
}

// Validate checks placeholder tokens are unique and free of template braces
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(c.Placeholders.Tokens))
	for _, t := range c.Placeholders.Tokens {
		if strings.ContainsAny(t, "{}") {
			errs = append(errs, fmt.Errorf("placeholder %q must not contain braces", t))
		}
		if _, dup := seen[t]; dup {
			errs = append(errs, fmt.Errorf("duplicate placeholder %q", t))
		}
		seen[t] = struct{}{}
	}
	return errors.Join(errs...)
}
