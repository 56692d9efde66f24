package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if cmd.Bool("force") {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to replace config file: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w (use --force to overwrite)", err)
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("%s Config written to %s\n", r.palette.OK("✓"), path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Create an OAuth client (Desktop app) in the Google Cloud console with the YouTube Data API enabled\n")
	r.writePlain("2. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET, or fill in [credentials.google]\n")
	r.writePlain("3. Run 'mixtape auth login'\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations. With --rollback it reverts
// the most recent migration instead.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.database()
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		r.logger.Warn("rolled back latest migration", "path", r.config.Database.Path)
		return r.writePlain("%s Rolled back latest migration in %s\n", r.palette.Warn("!"), r.config.Database.Path)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("%s Database ready at %s\n", r.palette.OK("✓"), r.config.Database.Path)
}
