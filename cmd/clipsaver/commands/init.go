package commands

import (
	"fmt"

	"clipsaver/internal/config"

	"github.com/urfave/cli/v2"
)

func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create the config file and data directory",
		Action: func(c *cli.Context) error {
			if err := config.InitConfig(); err != nil {
				return err
			}

			configPath, _ := config.ConfigPath()
			out := c.App.Writer
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Optionally change the destination file:")
			fmt.Fprintf(out, "     clipsaver config set-destination <path>   (or edit %s)\n", configPath)
			fmt.Fprintln(out, "  2. Start monitoring:")
			fmt.Fprintln(out, "     clipsaver run              (foreground)")
			fmt.Fprintln(out, "     clipsaver daemon start     (with control API)")
			return nil
		},
	}
}
