package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"playbridge/internal/shared"
)

// SetupConfig writes a starter config.toml for the user to fill in.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("✓ Created %s\n\n", configPath)
	r.writePlain("Fill in your Spotify and Apple Music credentials, then run:\n")
	r.writePlain("  playbridge auth spotify\n")
	return nil
}

// SetupDatabase initializes the SQLite database and applies migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if configPath != r.configPath {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		config = loaded
	}

	if config.Database.Path == "" {
		return fmt.Errorf("%w: database.path not set in %s", shared.ErrMissingConfig, configPath)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Info("database initialized", "path", config.Database.Path)
	r.writePlain("✓ Database initialized at %s\n", config.Database.Path)
	return nil
}
