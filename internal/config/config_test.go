package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	clerrors "clipsaver/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTP.Port != 8574 {
		t.Errorf("got port %d, want 8574", cfg.HTTP.Port)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("got interval %v, want 1s", cfg.PollInterval)
	}
	if cfg.Clipboard.Backend != "auto" {
		t.Errorf("got backend %q, want auto", cfg.Clipboard.Backend)
	}
	if !strings.HasSuffix(cfg.Destination, "clipboard_log.txt") {
		t.Errorf("unexpected destination %q", cfg.Destination)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Destination = "/tmp/clips.txt"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "port zero picks a free port", mutate: func(c *Config) { c.HTTP.Port = 0 }},
		{name: "empty destination", mutate: func(c *Config) { c.Destination = "  " }, wantErr: "destination"},
		{name: "interval too short", mutate: func(c *Config) { c.PollInterval = 10 * time.Millisecond }, wantErr: "poll_interval"},
		{name: "interval too long", mutate: func(c *Config) { c.PollInterval = 2 * time.Hour }, wantErr: "poll_interval"},
		{name: "unknown backend", mutate: func(c *Config) { c.Clipboard.Backend = "x11" }, wantErr: "clipboard.backend"},
		{name: "invalid port - too high", mutate: func(c *Config) { c.HTTP.Port = 99999 }, wantErr: "http.port"},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "negative backups", mutate: func(c *Config) { c.Log.MaxBackups = -1 }, wantErr: "log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if clerrors.KindOf(err) != clerrors.KindValidation {
				t.Errorf("kind = %q", clerrors.KindOf(err))
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateExpandsTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(home, ".local", "share", "clipsaver", "clipboard_log.txt")
	if cfg.Destination != want {
		t.Errorf("got %s, want %s", cfg.Destination, want)
	}
}

func TestLoadFrom(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	doc := `
destination: /var/tmp/clips.txt
poll_interval: 250ms
clipboard:
  backend: command
http:
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTP.Port != 9000 {
		t.Errorf("got port %d, want 9000", cfg.HTTP.Port)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("got interval %v, want 250ms", cfg.PollInterval)
	}
	if cfg.Clipboard.Backend != "command" {
		t.Errorf("got backend %q", cfg.Clipboard.Backend)
	}
	if cfg.Log.Level != "info" || !cfg.HTTP.Enabled {
		t.Error("defaults should fill fields the file leaves out")
	}
}

func TestLoadFromErrors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(tmpDir, "nope.yaml"))
		if err == nil || !strings.Contains(err.Error(), "clipsaver init") {
			t.Errorf("expected init hint, got %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.yaml")
		os.WriteFile(path, []byte("destination: [unclosed"), 0644)
		if _, err := LoadFrom(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(tmpDir, "invalid.yaml")
		os.WriteFile(path, []byte("destination: /tmp/x\npoll_interval: 1ms\n"), 0644)
		if _, err := LoadFrom(path); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Destination = "/srv/clips.txt"
	cfg.PollInterval = 2 * time.Second

	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "poll_interval: 2s") {
		t.Errorf("interval not written as a duration:\n%s", data)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["destination"] != "/srv/clips.txt" {
		t.Errorf("destination = %v", raw["destination"])
	}
}

func TestConfigDirPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}

	expectedConfigDir := filepath.Join(home, ".config", "clipsaver")
	if configDir != expectedConfigDir {
		t.Errorf("got config dir %s, want %s", configDir, expectedConfigDir)
	}

	dataDir, err := DataDir()
	if err != nil {
		t.Fatal(err)
	}

	expectedDataDir := filepath.Join(home, ".local", "share", "clipsaver")
	if dataDir != expectedDataDir {
		t.Errorf("got data dir %s, want %s", dataDir, expectedDataDir)
	}
}

func TestInitConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := InitConfig(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load after init: %v", err)
	}
	if !strings.HasPrefix(cfg.Destination, home) {
		t.Errorf("destination %q not under home", cfg.Destination)
	}

	if err := InitConfig(); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadOrDefault()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Port != DefaultPort {
		t.Errorf("got port %d", cfg.HTTP.Port)
	}
}

func TestDiff(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   Changes
	}{
		{"no change", func(*Config) {}, Changes{}},
		{"destination", func(c *Config) { c.Destination = "/elsewhere" }, Changes{Destination: true}},
		{"interval", func(c *Config) { c.PollInterval = 5 * time.Second }, Changes{Session: true}},
		{"backend", func(c *Config) { c.Clipboard.Backend = "command" }, Changes{Session: true}},
		{"port", func(c *Config) { c.HTTP.Port = 9999 }, Changes{Restart: true}},
		{"log level", func(c *Config) { c.Log.Level = "debug" }, Changes{Restart: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := *base
			tt.mutate(&next)
			got := Diff(base, &next)
			if got != tt.want {
				t.Errorf("Diff() = %+v, want %+v", got, tt.want)
			}
			if got.Any() != (tt.want != Changes{}) {
				t.Errorf("Any() = %v", got.Any())
			}
		})
	}
}
