package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clipsaver/internal/config"
	"clipsaver/internal/journal"

	"github.com/urfave/cli/v2"
)

func TailCommand() *cli.Command {
	return &cli.Command{
		Name:  "tail",
		Usage: "Follow the clipboard log as entries are appended",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "from-start",
				Usage: "Print the existing log before following it",
			},
			&cli.BoolFlag{
				Name:  "poll",
				Usage: "Poll for changes instead of using inotify",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadOrDefault()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := c.App.Writer
			return journal.Follow(ctx, cfg.Destination, journal.FollowOptions{
				FromStart: c.Bool("from-start"),
				Poll:      c.Bool("poll"),
			}, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
}
