package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, destination string) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Destination = destination
	if err := Save(cfg, path); err != nil {
		t.Fatalf("save config: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return loaded
}

func ignoreReload(Reload) {}

func TestWatcherCreation(t *testing.T) {
	t.Run("creates watcher with valid path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		cfg := writeConfig(t, configPath, "/tmp/a.txt")

		watcher, err := NewWatcher(configPath, cfg, ignoreReload, slog.Default())
		if err != nil {
			t.Fatalf("NewWatcher: %v", err)
		}
		defer watcher.Close()

		if watcher.path != configPath {
			t.Errorf("config path mismatch: %s", watcher.path)
		}
		if watcher.debounce != 500*time.Millisecond {
			t.Errorf("debounce = %v", watcher.debounce)
		}
		if watcher.Current() != cfg {
			t.Error("Current should start as the initial config")
		}
	})

	t.Run("fails with non-existent directory", func(t *testing.T) {
		watcher, err := NewWatcher("/nonexistent/path/config.yaml", DefaultConfig(), ignoreReload, nil)
		if err == nil {
			t.Error("expected error for non-existent directory")
			watcher.Close()
		}
	})
}

func TestWatcherClose(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := writeConfig(t, configPath, "/tmp/a.txt")

	watcher, err := NewWatcher(configPath, cfg, ignoreReload, slog.Default())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	if err := watcher.Close(); err != nil {
		t.Errorf("first close: %v", err)
	}
	if err := watcher.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestWatcherStartRespectsContext(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := writeConfig(t, configPath, "/tmp/a.txt")

	watcher, err := NewWatcher(configPath, cfg, ignoreReload, slog.Default())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- watcher.Start(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(time.Second):
		t.Error("watcher did not exit after context cancellation")
	}
}

func TestWatcherReportsOnlyRealChanges(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	initial := writeConfig(t, configPath, "/tmp/first.txt")

	reloads := make(chan Reload, 4)
	watcher, err := NewWatcher(configPath, initial, func(r Reload) { reloads <- r }, slog.Default())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	watcher.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)

	// Unrelated files in the directory are ignored.
	os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644)

	// An invalid edit is rejected.
	os.WriteFile(configPath, []byte("destination: /tmp/x\npoll_interval: 1ms\n"), 0644)
	time.Sleep(100 * time.Millisecond)

	// Rewriting the same settings is not a change.
	writeConfig(t, configPath, "/tmp/first.txt")
	time.Sleep(100 * time.Millisecond)

	select {
	case r := <-reloads:
		t.Fatalf("unexpected reload: %+v", r.Changes)
	default:
	}

	writeConfig(t, configPath, "/tmp/second.txt")

	select {
	case r := <-reloads:
		if r.Prev.Destination != "/tmp/first.txt" || r.Next.Destination != "/tmp/second.txt" {
			t.Errorf("reload = %s -> %s", r.Prev.Destination, r.Next.Destination)
		}
		if !r.Changes.Destination || r.Changes.Session || r.Changes.Restart {
			t.Errorf("changes = %+v", r.Changes)
		}
		if watcher.Current() != r.Next {
			t.Error("Current should track the applied config")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after config change")
	}
}
