package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/wpx/internal/services"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// SetupDatabase writes a default config when none exists, then initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	config.ApplyEnv()

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	r.writePlain("✓ Config at %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set site.url and site.api_url in %s (or WP_SITE_URL / WP_API_URL)\n", configPath)
	r.writePlain("2. Run 'wpx auth login' to sign in\n")
	return nil
}

// SetupMigrations prints the migration status, optionally rolling back the latest migration first.
func (r *Runner) SetupMigrations(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("rollback") {
		r.logger.Warn("rolling back latest migration")
		if err := shared.RollbackMigration(r.db); err != nil {
			return err
		}
		r.writePlain("✓ Rolled back latest migration\n\n")
	}

	states, err := shared.MigrationStatus(r.db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range states {
		mark := "✗ pending"
		if s.Applied {
			mark = "✓ applied"
		}
		r.writePlain("%04d %-30s %s\n", s.Version, s.Name, mark)
	}
	return nil
}

// SetupToken signs in with the bearer token of a request copied from browser DevTools.
//
// The token is checked against /wp/v2/users/me before the session is stored.
func (r *Runner) SetupToken(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	r.logger.Info("parsing cURL command for a bearer token")

	var req *shared.CurlRequest
	var err error

	if curlFile != "" {
		req, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		req, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	token, err := req.BearerToken()
	if err != nil {
		return err
	}

	apiRoot := r.wp.BaseURL()
	if root := req.APIRoot(); root != "" && root != apiRoot {
		r.logger.Warn("cURL request targets a different site than the configured API", "curl", root, "config", apiRoot)
	}

	check := services.NewWordPressService(apiRoot, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), r.httpClient)
	user, err := check.Me(ctx)
	if err != nil {
		return fmt.Errorf("%w: token rejected by %s: %v", shared.ErrAuthFailed, apiRoot, err)
	}

	if err := r.session.Login(token, services.UserToSession(user)); err != nil {
		return err
	}

	r.logger.Info("signed in with imported token", "user", user.Name)
	return r.writePlain("✓ Signed in as %s\n", user.Name)
}
