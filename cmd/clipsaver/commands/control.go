package commands

import (
	"fmt"
	"io"
	"time"

	"clipsaver/internal/api"
	"clipsaver/internal/daemon"

	"github.com/urfave/cli/v2"
)

func StartCommand() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "Start monitoring in the running daemon",
		Action: func(c *cli.Context) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			resp, err := client.Start(c.Context)
			if err != nil {
				return fmt.Errorf("start monitoring: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "Monitoring (%s)\n", resp.State)
			return nil
		},
	}
}

func StopCommand() *cli.Command {
	return &cli.Command{
		Name:  "stop",
		Usage: "Stop monitoring without stopping the daemon",
		Action: func(c *cli.Context) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			resp, err := client.Stop(c.Context)
			if err != nil {
				return fmt.Errorf("stop monitoring: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "Stopping (%s)\n", resp.State)
			return nil
		},
	}
}

func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show monitoring status and the last saved entry",
		Action: func(c *cli.Context) error {
			if !daemon.IsRunning() {
				fmt.Fprintln(c.App.Writer, "Daemon is not running (start it with 'clipsaver daemon start')")
				return nil
			}

			client, err := newClient()
			if err != nil {
				return err
			}
			status, err := client.Status(c.Context)
			if err != nil {
				return err
			}
			printStatus(c.App.Writer, status)
			return nil
		},
	}
}

func printStatus(out io.Writer, s *api.StatusResponse) {
	fmt.Fprintf(out, "Status:       %s\n", s.Status)
	fmt.Fprintf(out, "Destination:  %s\n", s.Destination)
	fmt.Fprintf(out, "Saved:        %d\n", s.Saves)
	if s.Errors > 0 {
		fmt.Fprintf(out, "Errors:       %d\n", s.Errors)
	}
	if s.LastSaved != nil {
		fmt.Fprintf(out, "Last saved:   [%s] %s\n", s.LastSaved.Time.Format(time.DateTime), s.LastSaved.Preview)
	}
	if s.LastError != nil {
		fmt.Fprintf(out, "Last error:   %s\n", s.LastError.Message)
	}
}
