package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/wpx/internal/models"
)

// SettingsKey is where client settings live. It never overlaps the session keys.
const SettingsKey = "user_settings_v1"

// SettingsRepository loads and saves [models.Settings] as JSON in the key-value store.
type SettingsRepository struct {
	kv *KVRepository
}

// NewSettingsRepository creates a new [SettingsRepository] over kv
func NewSettingsRepository(kv *KVRepository) *SettingsRepository {
	return &SettingsRepository{kv: kv}
}

// Load returns the stored settings.
//
// Missing fields keep their defaults. When nothing is stored, or the stored value does not decode, the defaults are
// returned with ok set to false.
func (r *SettingsRepository) Load() (settings models.Settings, ok bool, err error) {
	settings = models.DefaultSettings()

	raw, found, err := r.kv.Get(SettingsKey)
	if err != nil {
		return settings, false, err
	}
	if !found {
		return settings, false, nil
	}

	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return models.DefaultSettings(), false, nil
	}
	return settings, true, nil
}

// Save replaces the stored settings.
func (r *SettingsRepository) Save(settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return r.kv.Set(SettingsKey, string(data))
}

// Reset removes the stored settings so the defaults apply again.
func (r *SettingsRepository) Reset() error {
	return r.kv.Remove(SettingsKey)
}
