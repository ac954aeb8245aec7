package commands

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli/v2"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GitDirty  = "unknown"
)

func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "short",
				Aliases: []string{"s"},
				Usage:   "Show only the version",
			},
		},
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			if c.Bool("short") {
				fmt.Fprintln(out, Version)
				return nil
			}

			fmt.Fprintf(out, "clipsaver version:  %s\n", Version)
			fmt.Fprintf(out, "git commit:         %s", GitCommit)
			if GitDirty == "true" {
				fmt.Fprint(out, " (dirty)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "build time:         %s\n", BuildTime)
			fmt.Fprintf(out, "go version:         %s\n", runtime.Version())
			fmt.Fprintf(out, "platform:           %s/%s\n", runtime.GOOS, runtime.GOARCH)

			return nil
		},
	}
}
