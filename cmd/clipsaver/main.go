package main

import (
	"fmt"
	"os"

	"clipsaver/cmd/clipsaver/commands"
)

func main() {
	if err := commands.NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
