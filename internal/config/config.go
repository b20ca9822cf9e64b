// Package config loads user preferences from ~/.pmdesk/config.yaml with
// PMDESK_* environment overrides. A .env file in the working directory is
// honored for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	ServerURL string `yaml:"server_url" json:"server_url"` // Base URL of the API server
	PageSize  int    `yaml:"page_size" json:"page_size"`   // Rows per page in list views

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logPath := ""
	if home != "" {
		logPath = filepath.Join(home, ".pmdesk", "logs", "pmdesk.log")
	}

	return &Config{
		ServerURL:  "http://localhost:8000/api",
		PageSize:   5,
		LogLevel:   "INFO",
		LogFile:    logPath,
		LogConsole: false,
	}
}

// Load reads ~/.pmdesk/config.yaml, then applies environment overrides.
// A missing config file just yields the defaults.
func Load() (*Config, error) {
	// ignore a missing .env, that's the normal case
	_ = godotenv.Load()

	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	configPath := filepath.Join(home, ".pmdesk", "config.yaml")

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PMDESK_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("PMDESK_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PageSize = n
		}
	}
	if v := os.Getenv("PMDESK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PMDESK_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("PMDESK_LOG_CONSOLE"); v != "" {
		c.LogConsole = v == "true"
	}
}

// Save writes the config to ~/.pmdesk/config.yaml
func (c *Config) Save() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".pmdesk")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
