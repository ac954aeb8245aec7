package main

import (
	"fmt"
	"os"

	"clipsaver/internal/config"
	"clipsaver/internal/daemon"
	"clipsaver/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	log := logger.New(level)
	if cfg.Log.File {
		dataDir, err := config.DataDir()
		if err != nil {
			return err
		}
		log, err = logger.NewFileLogger(logger.FileOptions{
			Dir:        dataDir,
			Level:      level,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		})
		if err != nil {
			return err
		}
	}
	defer log.Close()

	d := daemon.New(cfg, log)
	return d.Start()
}
