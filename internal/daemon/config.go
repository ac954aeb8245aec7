package daemon

import (
	"context"
	"log/slog"
	"os"

	"clipsaver/internal/config"
)

func (d *Daemon) startConfigWatcher(ctx context.Context) error {
	configPath := d.configPath
	if configPath == "" {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		configPath = path
	}

	if _, err := os.Stat(configPath); err != nil {
		return err
	}

	watcher, err := config.NewWatcher(configPath, d.Config(), func(r config.Reload) {
		d.handleConfigChange(ctx, r)
	}, d.logger.Logger)
	if err != nil {
		return err
	}

	go func() {
		if err := watcher.Start(ctx); err != nil {
			d.logger.Error("config watcher error",
				slog.String("error", err.Error()))
		}
	}()

	d.logger.Info("config watcher started", slog.String("path", configPath))
	return nil
}

func (d *Daemon) handleConfigChange(ctx context.Context, r config.Reload) {
	d.configMu.Lock()
	d.config = r.Next
	d.configMu.Unlock()

	changes := r.Changes
	oldConfig, newConfig := r.Prev, r.Next

	if changes.Destination {
		if err := newConfig.EnsureDestinationDir(); err != nil {
			d.logger.Error("new destination is not writable", slog.String("error", err.Error()))
		}
		d.logger.Info("destination changed",
			slog.String("old", oldConfig.Destination),
			slog.String("new", newConfig.Destination))
	}

	if changes.Session {
		if err := d.restartWatcher(ctx, newConfig); err != nil {
			d.logger.Error("failed to apply watcher settings", slog.String("error", err.Error()))
		}
	}

	if changes.Restart {
		if oldConfig.HTTP.Port != newConfig.HTTP.Port {
			d.logger.Warn("http port changed, restart required",
				slog.Int("old_port", oldConfig.HTTP.Port),
				slog.Int("new_port", newConfig.HTTP.Port))
		} else {
			d.logger.Warn("http or log settings changed, restart required")
		}
	}
}
