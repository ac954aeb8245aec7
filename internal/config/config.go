package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	clerrors "clipsaver/internal/errors"
)

const (
	DefaultPort         = 8574
	DefaultPollInterval = time.Second
	MinPollInterval     = 100 * time.Millisecond
	MaxPollInterval     = time.Hour
	journalFileName     = "clipboard_log.txt"
)

// Config represents the application configuration
type Config struct {
	Destination  string          `yaml:"destination"`
	PollInterval time.Duration   `yaml:"poll_interval"`
	Clipboard    ClipboardConfig `yaml:"clipboard"`
	HTTP         HTTPConfig      `yaml:"http"`
	Log          LogConfig       `yaml:"log"`
}

type ClipboardConfig struct {
	Backend string `yaml:"backend"`
}

// HTTPConfig contains control API settings
type HTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       bool   `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Destination:  filepath.Join("~", ".local", "share", "clipsaver", journalFileName),
		PollInterval: DefaultPollInterval,
		Clipboard: ClipboardConfig{
			Backend: "auto",
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Port:    DefaultPort,
		},
		Log: LogConfig{
			Level:      "info",
			File:       true,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// ConfigDir returns the config directory path (~/.config/clipsaver)
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "clipsaver"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns the data directory path (~/.local/share/clipsaver)
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "clipsaver"), nil
}

// Load reads and parses the config file
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s (run 'clipsaver init' to create)", path)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFrom(path)
}

// Save writes cfg to path through a temporary file so readers never see
// a partial document.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename config file: %w", err)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// Validate checks if the config is valid and expands the destination path
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Destination) == "" {
		return clerrors.NewValidation("destination", "is required")
	}

	dest, err := ExpandPath(c.Destination)
	if err != nil {
		return err
	}
	c.Destination = dest

	if c.PollInterval < MinPollInterval || c.PollInterval > MaxPollInterval {
		return clerrors.NewValidation("poll_interval",
			fmt.Sprintf("must be between %s and %s", MinPollInterval, MaxPollInterval))
	}

	switch c.Clipboard.Backend {
	case "auto", "native", "command", "headless":
	default:
		return clerrors.NewValidation("clipboard.backend",
			fmt.Sprintf("unknown backend %q, must be one of auto, native, command, headless", c.Clipboard.Backend))
	}

	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return clerrors.NewValidation("http.port", "must be between 0 and 65535")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return clerrors.NewValidation("log.level",
			fmt.Sprintf("unknown level %q, must be one of debug, info, warn, error", c.Log.Level))
	}

	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return clerrors.NewValidation("log", "max_size_mb and max_backups must not be negative")
	}

	return nil
}

// EnsureDestinationDir creates the directory the journal lives in.
func (c *Config) EnsureDestinationDir() error {
	if err := os.MkdirAll(filepath.Dir(c.Destination), 0755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	return nil
}

// Changes describes what differs between two configs and how much of the
// running daemon each difference affects.
type Changes struct {
	Destination bool
	Session     bool
	Restart     bool
}

func Diff(prev, next *Config) Changes {
	return Changes{
		Destination: prev.Destination != next.Destination,
		Session: prev.PollInterval != next.PollInterval ||
			prev.Clipboard.Backend != next.Clipboard.Backend,
		Restart: prev.HTTP != next.HTTP || prev.Log != next.Log,
	}
}

func (c Changes) Any() bool {
	return c.Destination || c.Session || c.Restart
}

// InitConfig creates a default config file and necessary directories
func InitConfig() error {
	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	dataDir, err := DataDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := Save(DefaultConfig(), configPath); err != nil {
		return err
	}

	fmt.Printf("Created config file at %s\n", configPath)
	fmt.Printf("Created data directory at %s\n", dataDir)
	fmt.Println("\nClipboard entries will be appended to the destination set in the config file.")

	return nil
}
