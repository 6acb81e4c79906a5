package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/wpx/internal/formatter"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SettingsShow prints the stored settings, or the defaults when none are stored.
func (r *Runner) SettingsShow(ctx context.Context, cmd *cli.Command) error {
	settings, stored, err := r.settings.Load()
	if err != nil {
		return err
	}

	title := "Settings"
	if !stored {
		title += " (defaults)"
	}
	r.writePlainHeader(title)
	r.writePlain("emailNotifications: %t\n", settings.EmailNotifications)
	r.writePlain("newsletter:         %t\n", settings.Newsletter)
	r.writePlain("darkMode:           %t\n", settings.DarkMode)
	r.writePlain("language:           %s\n", settings.Language)
	r.writePlain("timezone:           %s\n", settings.Timezone)
	return nil
}

// SettingsSet changes one setting and saves the result.
func (r *Runner) SettingsSet(ctx context.Context, cmd *cli.Command) error {
	key, value := cmd.StringArg("key"), cmd.StringArg("value")
	if key == "" {
		return fmt.Errorf("%w: setting name", shared.ErrMissingArgument)
	}

	settings, _, err := r.settings.Load()
	if err != nil {
		return err
	}
	if err := settings.Set(key, value); err != nil {
		return err
	}
	if err := r.settings.Save(settings); err != nil {
		return err
	}

	r.logger.Debug("setting saved", "key", key)
	return r.writePlain("✓ %s = %s\n", key, value)
}

// SettingsExport writes the settings as json or yaml.
func (r *Runner) SettingsExport(ctx context.Context, cmd *cli.Command) error {
	settings, _, err := r.settings.Load()
	if err != nil {
		return err
	}

	data, err := formatter.ExportSettings(settings, cmd.String("format"))
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write settings file: %w", err)
		}
		return r.writePlain("✓ Settings exported to %s\n", path)
	}
	return r.writeBytes(data)
}

// SettingsReset removes the stored settings so the defaults apply again.
func (r *Runner) SettingsReset(ctx context.Context, cmd *cli.Command) error {
	if err := r.settings.Reset(); err != nil {
		return err
	}
	defaults := models.DefaultSettings()
	r.logger.Info("settings reset", "language", defaults.Language, "timezone", defaults.Timezone)
	return r.writePlain("✓ Settings restored to defaults\n")
}
