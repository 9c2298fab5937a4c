package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Path returns the config file location, ~/.config/capscope/config.yaml.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "capscope", "config.yaml"), nil
}

// Load loads configuration from ~/.config/capscope/config.yaml, then
// applies CAPSCOPE_* environment overrides. A .env file in the working
// directory is read first; it never replaces variables already set.
func Load() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path, err := Path(); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			next := cfg
			if yaml.Unmarshal(data, &next) == nil {
				cfg = next
			}
		}
	}
	applyEnv(&cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	str := map[string]*string{
		"CAPSCOPE_LOG_LEVEL":    &cfg.LogLevel,
		"CAPSCOPE_LOG_FILE":     &cfg.LogFile,
		"CAPSCOPE_DB_PATH":      &cfg.DBPath,
		"CAPSCOPE_USER":         &cfg.User,
		"CAPSCOPE_LISTEN_ADDR":  &cfg.ListenAddr,
		"CAPSCOPE_REMOTE_URL":   &cfg.RemoteURL,
		"CAPSCOPE_REMOTE_TOKEN": &cfg.RemoteToken,
		"CAPSCOPE_THEME":        &cfg.Theme,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	flags := map[string]*bool{
		"CAPSCOPE_INCLUDE_SCHEMA": &cfg.IncludeSchema,
		"CAPSCOPE_INCLUDE_TIMING": &cfg.IncludeTiming,
	}
	for key, dst := range flags {
		if v, ok := os.LookupEnv(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	if v, ok := os.LookupEnv("CAPSCOPE_FRAMEWORKS"); ok {
		cfg.Frameworks = splitList(v)
	}
	if v, ok := os.LookupEnv("CAPSCOPE_API_TOKENS"); ok {
		// token=user pairs, comma separated
		tokens := map[string]string{}
		for _, pair := range splitList(v) {
			if token, user, ok := strings.Cut(pair, "="); ok && token != "" && user != "" {
				tokens[token] = user
			}
		}
		cfg.APITokens = tokens
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
