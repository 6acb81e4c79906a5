package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/wpx/internal/shared"
)

// Settings are client preferences stored under their own key, apart from the session.
type Settings struct {
	EmailNotifications bool   `json:"emailNotifications" yaml:"emailNotifications"`
	Newsletter         bool   `json:"newsletter" yaml:"newsletter"`
	DarkMode           bool   `json:"darkMode" yaml:"darkMode"`
	Language           string `json:"language" yaml:"language"`
	Timezone           string `json:"timezone" yaml:"timezone"`
}

// SettingKeys lists the names accepted by [Settings.Set].
var SettingKeys = []string{"emailNotifications", "newsletter", "darkMode", "language", "timezone"}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{
		EmailNotifications: true,
		Newsletter:         false,
		DarkMode:           false,
		Language:           "en",
		Timezone:           "UTC",
	}
}

// Set assigns value to the setting named key.
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)

	setBool := func(field *bool) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false, got %q", shared.ErrInvalidArgument, key, value)
		}
		*field = b
		return nil
	}

	switch key {
	case "emailNotifications":
		return setBool(&s.EmailNotifications)
	case "newsletter":
		return setBool(&s.Newsletter)
	case "darkMode":
		return setBool(&s.DarkMode)
	case "language":
		if value == "" {
			return fmt.Errorf("%w: language cannot be empty", shared.ErrInvalidArgument)
		}
		s.Language = value
	case "timezone":
		if value == "" {
			return fmt.Errorf("%w: timezone cannot be empty", shared.ErrInvalidArgument)
		}
		s.Timezone = value
	default:
		return fmt.Errorf("%w: unknown setting %q (expected one of %s)",
			shared.ErrInvalidArgument, key, strings.Join(SettingKeys, ", "))
	}
	return nil
}
