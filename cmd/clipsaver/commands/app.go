package commands

import (
	"github.com/urfave/cli/v2"
)

func NewApp() *cli.App {
	return &cli.App{
		Name:                 "clipsaver",
		Usage:                "Append everything you copy to a text file",
		Version:              Version,
		HideVersion:          true,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			InitCommand(),
			RunCommand(),
			DaemonCommand(),
			StartCommand(),
			StopCommand(),
			StatusCommand(),
			ConfigCommand(),
			HistoryCommand(),
			TailCommand(),
			VersionCommand(),
		},
	}
}
