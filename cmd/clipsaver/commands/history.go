package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"clipsaver/internal/config"
	"clipsaver/internal/journal"
	"clipsaver/internal/watcher"

	"github.com/urfave/cli/v2"
)

func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show the most recently saved clipboard entries",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "number",
				Aliases: []string{"n"},
				Value:   10,
				Usage:   "Number of entries to show (0 for all)",
			},
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Print whole entries instead of one-line previews",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadOrDefault()
			if err != nil {
				return err
			}

			entries, err := journal.Tail(cfg.Destination, c.Int("number"))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintf(c.App.Writer, "Nothing saved yet (%s does not exist)\n", cfg.Destination)
					return nil
				}
				return fmt.Errorf("read %s: %w", cfg.Destination, err)
			}

			out := c.App.Writer
			if len(entries) == 0 {
				fmt.Fprintln(out, "Nothing saved yet")
				return nil
			}

			for _, e := range entries {
				if c.Bool("full") {
					fmt.Fprintf(out, "[%s]\n%s\n\n", e.Timestamp(), strings.TrimRight(e.Text, "\n"))
					continue
				}
				fmt.Fprintf(out, "[%s] %s\n", e.Timestamp(), watcher.Preview(e.Text))
			}
			return nil
		},
	}
}
