package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/modsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template, the profile directory and the run history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("using existing config file", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
		r.config = config
		r.wire()
	}

	if err := os.MkdirAll(r.config.ProfilesDir(), 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if err := r.openHistory(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	r.writePlain("✓ Setup complete\n")
	r.writePlain("Config: %s\n", configPath)
	r.writePlain("Profiles: %s\n", r.config.ProfilesDir())
	r.writePlain("Run history: %s\n", r.config.Database.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. modsync profile create \"My Server\" --url http://host/mods.html\n")
	r.writePlain("2. modsync sync \"My Server\"\n")
	return nil
}
