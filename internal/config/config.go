// Package config loads Smart-Receptionist configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Smart-Receptionist configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Oracle (LLM) configuration
	LLM LLMConfig `yaml:"llm"`

	// Layout/session store configuration
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the generative oracle.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // gemini
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Timeout     string  `yaml:"timeout"`
	Temperature float64 `yaml:"temperature"`
}

// StorageConfig configures the persistent store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	Watch        bool   `yaml:"watch"` // relay external layout changes
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "SmartReceptionist",
		Version: "1.0.0",

		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-3-flash-preview",
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
			Timeout:     "120s",
			Temperature: 0.1,
		},

		Storage: StorageConfig{
			DatabasePath: "data/receptionist.db",
			Watch:        true,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("RECEPTIONIST_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if path := os.Getenv("RECEPTIONIST_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY or llm.api_key)")
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage database_path not configured")
	}
	if _, err := c.LLMTimeout(); err != nil {
		return fmt.Errorf("invalid llm.timeout: %w", err)
	}
	return nil
}

// LLMTimeout parses the configured oracle timeout.
func (c *Config) LLMTimeout() (time.Duration, error) {
	if c.LLM.Timeout == "" {
		return 2 * time.Minute, nil
	}
	return time.ParseDuration(c.LLM.Timeout)
}
