package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfig overrides the config file location.
const EnvConfig = "OPENCODE_HELIX_CONFIG"

const (
	appDir     = "opencode-helix"
	configFile = "config.yaml"
)

// Config holds the user's settings. Every field is optional; command-line
// flags take precedence.
type Config struct {
	// Theme is one of minimal, hacker, matrix or crt.
	Theme string `yaml:"theme"`

	// Animations toggles blink, typewriter and scanline effects.
	Animations *bool `yaml:"animations"`

	// Port skips discovery and talks to this server directly.
	Port int `yaml:"port"`

	// Host is the server host used with Port. Defaults to localhost.
	Host string `yaml:"server_url_host"`

	// Timeout bounds each request to the server, e.g. "5s".
	Timeout time.Duration `yaml:"timeout"`

	// Username for basic auth when the server has a password.
	Username string `yaml:"username"`

	// Prompts add to or override the built-in prompt templates.
	Prompts []Prompt `yaml:"prompts"`

	// Path is the file this config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// AnimationsEnabled reports whether effects are on. Unset means on.
func (c *Config) AnimationsEnabled() bool {
	return c.Animations == nil || *c.Animations
}

// Dir returns the opencode-helix config directory, honoring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDir), nil
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config at path, or at DefaultPath when path is empty.
// A missing file yields an empty Config; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Path = path
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", c.Timeout)
	}
	for i, p := range c.Prompts {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("prompt %d has no name", i+1)
		}
		if strings.TrimSpace(p.Prompt) == "" {
			return fmt.Errorf("prompt %q has no text", p.Name)
		}
	}
	return nil
}
