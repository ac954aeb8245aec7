package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"clipsaver/internal/clipsource"
	"clipsaver/internal/config"
	"clipsaver/internal/daemon"
	"clipsaver/internal/logger"
	"clipsaver/internal/notify"
	"clipsaver/internal/watcher"

	"github.com/urfave/cli/v2"
)

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Monitor the clipboard in the foreground until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "destination",
				Aliases: []string{"d"},
				Usage:   "File to append clipboard text to",
			},
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Time between clipboard reads",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Clipboard backend: auto, native, command or headless",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadOrDefault()
			if err != nil {
				return err
			}
			if err := applyRunFlags(c, cfg); err != nil {
				return err
			}

			backend, err := clipsource.ParseBackend(cfg.Clipboard.Backend)
			if err != nil {
				return err
			}
			src, err := clipsource.New(backend)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runForeground(ctx, c, cfg, src)
		},
	}
}

func applyRunFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("destination") {
		cfg.Destination = c.String("destination")
	}
	if c.IsSet("interval") {
		cfg.PollInterval = c.Duration("interval")
	}
	if c.IsSet("backend") {
		cfg.Clipboard.Backend = c.String("backend")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	return cfg.Validate()
}

// runForeground monitors until ctx ends or the watcher stops itself after
// a write failure.
func runForeground(ctx context.Context, c *cli.Context, cfg *config.Config, src watcher.Source) error {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(c.App.ErrWriter, level)

	if err := cfg.EnsureDestinationDir(); err != nil {
		return err
	}

	tracker := notify.NewTracker()
	queue := notify.NewQueue(notify.Multi{
		notify.NewConsole(c.App.Writer),
		notify.NewLogObserver(log.Logger),
		tracker,
	}, log.Logger)
	defer queue.Close()

	destination := cfg.Destination
	w := watcher.New(src, watcher.PathFunc(func() string { return destination }), queue,
		watcher.WithInterval(cfg.PollInterval),
		watcher.WithLogger(log.Logger))

	fmt.Fprintf(c.App.Writer, "Saving clipboard text to %s (Ctrl+C to stop)\n", destination)
	log.Debug("foreground monitor starting",
		slog.String("backend", string(clipsource.Name(src))),
		slog.Duration("interval", cfg.PollInterval))

	if err := w.Start(ctx); err != nil {
		return err
	}

	stopped := make(chan struct{})
	go func() {
		w.Wait(context.Background())
		close(stopped)
	}()

	select {
	case <-ctx.Done():
	case <-stopped:
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), daemon.ShutdownTimeout)
	defer cancel()
	if err := w.StopAndWait(stopCtx); err != nil {
		log.Error("watcher did not stop in time, exiting anyway")
	}
	queue.Close()

	if snap := tracker.Snapshot(); ctx.Err() == nil && snap.LastError != nil {
		return errors.New("monitoring stopped: " + snap.LastError.Message)
	}
	return nil
}
