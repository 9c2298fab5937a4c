package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	configDir := filepath.Join(home, ".config", "capscope")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	got := DefaultConfig()

	if got.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", got.LogLevel)
	}
	if !reflect.DeepEqual(got.Frameworks, []string{"vitest"}) {
		t.Fatalf("Frameworks = %v, want [vitest]", got.Frameworks)
	}
	if got.ListenAddr != "127.0.0.1:8080" {
		t.Fatalf("ListenAddr = %q", got.ListenAddr)
	}
	if got.Theme != "catppuccin-mocha" {
		t.Fatalf("Theme = %q, want catppuccin-mocha", got.Theme)
	}
}

func TestLoadReturnsDefaultsWhenConfigMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	got := Load()
	want := DefaultConfig()

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load() = %#v, want defaults %#v", got, want)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, home, `log_level: debug
log_file: /tmp/capscope.log
db_path: /tmp/insights.db
user: alice
frameworks: [jest, playwright]
include_schema: true
include_timing: true
listen_addr: ":9090"
api_tokens:
  t0k3n: alice
remote_url: https://capscope.example.com
remote_token: secret
theme: nord
`)

	got := Load()
	want := Config{
		LogLevel:      "debug",
		LogFile:       "/tmp/capscope.log",
		DBPath:        "/tmp/insights.db",
		User:          "alice",
		Frameworks:    []string{"jest", "playwright"},
		IncludeSchema: true,
		IncludeTiming: true,
		ListenAddr:    ":9090",
		APITokens:     map[string]string{"t0k3n": "alice"},
		RemoteURL:     "https://capscope.example.com",
		RemoteToken:   "secret",
		Theme:         "nord",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load() = %#v, want %#v", got, want)
	}
	if got.InsightDB() != "/tmp/insights.db" {
		t.Errorf("InsightDB() = %q", got.InsightDB())
	}
	if got.LocalUser() != "alice" {
		t.Errorf("LocalUser() = %q", got.LocalUser())
	}
}

func TestLoadMergesPartialConfigWithDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, home, "theme: gruvbox\n")

	got := Load()
	want := DefaultConfig()
	want.Theme = "gruvbox"

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load() = %#v, want %#v", got, want)
	}
}

func TestLoadInvalidYAMLKeepsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, home, "theme: [\n")

	got := Load()
	want := DefaultConfig()

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load() = %#v, want defaults %#v", got, want)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, home, "log_level: warn\ntheme: nord\n")

	t.Setenv("CAPSCOPE_LOG_LEVEL", "debug")
	t.Setenv("CAPSCOPE_FRAMEWORKS", "mocha, jest,")
	t.Setenv("CAPSCOPE_INCLUDE_TIMING", "true")
	t.Setenv("CAPSCOPE_INCLUDE_SCHEMA", "not-a-bool")
	t.Setenv("CAPSCOPE_API_TOKENS", "a=alice,b=bob,broken")

	got := Load()
	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", got.LogLevel)
	}
	if got.Theme != "nord" {
		t.Errorf("Theme = %q, want nord from file", got.Theme)
	}
	if !reflect.DeepEqual(got.Frameworks, []string{"mocha", "jest"}) {
		t.Errorf("Frameworks = %v", got.Frameworks)
	}
	if !got.IncludeTiming || got.IncludeSchema {
		t.Errorf("IncludeTiming/IncludeSchema = %v/%v", got.IncludeTiming, got.IncludeSchema)
	}
	if !reflect.DeepEqual(got.APITokens, map[string]string{"a": "alice", "b": "bob"}) {
		t.Errorf("APITokens = %v", got.APITokens)
	}
}

func TestInsightDBDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	want := filepath.Join(home, ".local", "share", "capscope", "insights.db")
	if got := DefaultConfig().InsightDB(); got != want {
		t.Errorf("InsightDB() = %q, want %q", got, want)
	}
}
