package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"playbridge/internal/services"
	"playbridge/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	registry, err := services.NewRegistryFromConfig(config)
	if err != nil {
		logger.Fatalf("failed to configure services: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Registry:   registry,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "playbridge",
		Usage:    "Sync playlists between Spotify & Apple Music",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
