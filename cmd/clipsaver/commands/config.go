package commands

import (
	"fmt"
	"os"
	"os/exec"

	"clipsaver/internal/config"

	"github.com/urfave/cli/v2"
)

func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage clipsaver configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Display configuration",
				Action: func(c *cli.Context) error {
					path, err := config.ConfigPath()
					if err != nil {
						return fmt.Errorf("get config path: %w", err)
					}

					data, err := os.ReadFile(path)
					if err != nil {
						if os.IsNotExist(err) {
							return fmt.Errorf("config file not found at %s (run 'clipsaver init' to create)", path)
						}
						return fmt.Errorf("read config file: %w", err)
					}

					fmt.Fprint(c.App.Writer, string(data))
					return nil
				},
			},
			{
				Name:  "path",
				Usage: "Show config file path",
				Action: func(c *cli.Context) error {
					path, err := config.ConfigPath()
					if err != nil {
						return fmt.Errorf("get config path: %w", err)
					}

					fmt.Fprintln(c.App.Writer, path)
					return nil
				},
			},
			{
				Name:  "edit",
				Usage: "Edit config in $EDITOR",
				Action: func(c *cli.Context) error {
					path, err := config.ConfigPath()
					if err != nil {
						return fmt.Errorf("get config path: %w", err)
					}

					if _, err := os.Stat(path); os.IsNotExist(err) {
						return fmt.Errorf("config file not found at %s (run 'clipsaver init' to create)", path)
					}

					editor := os.Getenv("EDITOR")
					if editor == "" {
						editor = "vi"
					}

					cmd := exec.Command(editor, path)
					cmd.Stdin = os.Stdin
					cmd.Stdout = os.Stdout
					cmd.Stderr = os.Stderr

					if err := cmd.Run(); err != nil {
						return fmt.Errorf("failed to run editor: %w", err)
					}

					if _, err := config.LoadFrom(path); err != nil {
						return fmt.Errorf("validate config after edit: %w", err)
					}

					fmt.Fprintln(c.App.Writer, "Configuration validated successfully")
					return nil
				},
			},
			{
				Name:      "set-destination",
				Usage:     "Change the file clipboard text is appended to",
				ArgsUsage: "<path>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one path argument")
					}
					return setDestination(c, c.Args().First())
				},
			},
		},
	}
}

// setDestination rewrites the config file; a running daemon picks the
// change up through its config watcher.
func setDestination(c *cli.Context, dest string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return err
	}

	cfg.Destination = dest
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Destination set to %s\n", cfg.Destination)
	return nil
}
