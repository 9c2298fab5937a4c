package config

import (
	"os"
	"path/filepath"
)

// Config holds the application configuration.
type Config struct {
	LogLevel      string            `yaml:"log_level"`
	LogFile       string            `yaml:"log_file"`
	DBPath        string            `yaml:"db_path"`
	User          string            `yaml:"user"`
	Frameworks    []string          `yaml:"frameworks"`
	IncludeSchema bool              `yaml:"include_schema"`
	IncludeTiming bool              `yaml:"include_timing"`
	ListenAddr    string            `yaml:"listen_addr"`
	APITokens     map[string]string `yaml:"api_tokens"`
	RemoteURL     string            `yaml:"remote_url"`
	RemoteToken   string            `yaml:"remote_token"`
	Theme         string            `yaml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel:   "info",
		Frameworks: []string{"vitest"},
		ListenAddr: "127.0.0.1:8080",
		Theme:      "catppuccin-mocha",
	}
}

// InsightDB returns the sqlite path for local insights, defaulting to
// ~/.local/share/capscope/insights.db.
func (c Config) InsightDB() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "capscope", "insights.db")
}

// LocalUser is the identity used when saving insights from the CLI.
func (c Config) LocalUser() string {
	if c.User != "" {
		return c.User
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
