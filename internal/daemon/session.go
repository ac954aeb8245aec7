package daemon

import (
	"context"
	"log/slog"

	"clipsaver/internal/clipsource"
	"clipsaver/internal/config"
	"clipsaver/internal/watcher"
)

func (d *Daemon) buildWatcher(cfg *config.Config) (*watcher.Watcher, error) {
	backend, err := clipsource.ParseBackend(cfg.Clipboard.Backend)
	if err != nil {
		return nil, err
	}
	src, err := d.newSource(backend)
	if err != nil {
		return nil, err
	}

	return watcher.New(src, watcher.PathFunc(d.Destination), d.queue,
		watcher.WithInterval(cfg.PollInterval),
		watcher.WithLogger(d.logger.Logger)), nil
}

func (d *Daemon) currentWatcher() *watcher.Watcher {
	d.watcherMu.Lock()
	defer d.watcherMu.Unlock()
	return d.watcher
}

func (d *Daemon) setWatcher(w *watcher.Watcher) {
	d.watcherMu.Lock()
	defer d.watcherMu.Unlock()
	d.watcher = w
}

// restartWatcher replaces the watcher after an interval or backend change.
// Monitoring resumes only if it was active before.
func (d *Daemon) restartWatcher(ctx context.Context, cfg *config.Config) error {
	d.watcherMu.Lock()
	defer d.watcherMu.Unlock()

	wasRunning := false
	if d.watcher != nil {
		wasRunning = d.watcher.IsRunning()
		stopCtx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
		err := d.watcher.StopAndWait(stopCtx)
		cancel()
		if err != nil {
			return err
		}
	}

	next, err := d.buildWatcher(cfg)
	if err != nil {
		return err
	}
	d.watcher = next

	if !wasRunning {
		return nil
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := next.Start(startCtx); err != nil {
		return err
	}

	d.logger.Info("watcher restarted with new settings",
		slog.Duration("interval", cfg.PollInterval),
		slog.String("backend", string(clipsource.Name(next.Source()))))
	return nil
}

// controller exposes whichever watcher is current to the control API.
type controller struct {
	d *Daemon
}

func (c controller) Start(ctx context.Context) error {
	c.d.watcherMu.Lock()
	defer c.d.watcherMu.Unlock()
	return c.d.watcher.Start(ctx)
}

func (c controller) Stop() {
	c.d.currentWatcher().Stop()
}

func (c controller) State() watcher.State {
	return c.d.currentWatcher().State()
}

func (c controller) IsRunning() bool {
	return c.d.currentWatcher().IsRunning()
}

func (c controller) Session() string {
	return c.d.currentWatcher().Session()
}
