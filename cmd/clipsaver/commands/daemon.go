package commands

import (
	"fmt"
	"time"

	"clipsaver/internal/config"
	"clipsaver/internal/daemon"
	"clipsaver/internal/logger"

	"github.com/urfave/cli/v2"
)

func DaemonCommand() *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "Manage the clipsaver daemon",
		Subcommands: []*cli.Command{
			{
				Name:   "start",
				Usage:  "Start the daemon in the foreground",
				Action: func(c *cli.Context) error { return daemonStart(c) },
			},
			{
				Name:   "stop",
				Usage:  "Stop the running daemon",
				Action: func(c *cli.Context) error { return daemonStop(c) },
			},
			{
				Name:  "restart",
				Usage: "Restart the daemon",
				Action: func(c *cli.Context) error {
					if daemon.IsRunning() {
						fmt.Fprintln(c.App.Writer, "Stopping daemon...")
						if err := daemonStop(c); err != nil {
							return fmt.Errorf("failed to stop daemon: %w", err)
						}
						time.Sleep(500 * time.Millisecond)
					}

					fmt.Fprintln(c.App.Writer, "Starting daemon...")
					return daemonStart(c)
				},
			},
			{
				Name:   "status",
				Usage:  "Check whether the daemon is running",
				Action: func(c *cli.Context) error { return daemonStatus(c) },
			},
		},
	}
}

func daemonStart(c *cli.Context) error {
	if daemon.IsRunning() {
		return fmt.Errorf("daemon is already running (PID %d)", daemon.GetPID())
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := newDaemonLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	d := daemon.New(cfg, log)
	return d.Run(c.Context)
}

// newDaemonLogger logs to the rotated file when enabled, otherwise to stdout.
func newDaemonLogger(cfg *config.Config) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if !cfg.Log.File {
		return logger.New(level), nil
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	return logger.NewFileLogger(logger.FileOptions{
		Dir:        dataDir,
		Level:      level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
}

func daemonStop(c *cli.Context) error {
	if !daemon.IsRunning() {
		fmt.Fprintln(c.App.Writer, "Daemon is not running")
		return nil
	}

	fmt.Fprintf(c.App.Writer, "Stopping daemon (PID %d)...\n", daemon.GetPID())
	return daemon.StopDaemon()
}

func daemonStatus(c *cli.Context) error {
	out := c.App.Writer
	if !daemon.IsRunning() {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	fmt.Fprintf(out, "Daemon is running (PID %d)\n", daemon.GetPID())

	client, err := newClient()
	if err != nil {
		fmt.Fprintf(out, "Control API: %v\n", err)
		return nil
	}
	status, err := client.Status(c.Context)
	if err != nil {
		fmt.Fprintf(out, "Control API unreachable: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "Watcher: %s\n", status.Status)
	fmt.Fprintf(out, "Uptime: %d seconds\n", status.UptimeSeconds)
	return nil
}
