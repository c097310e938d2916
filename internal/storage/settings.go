package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jbplumbing/autopost/internal/core/domain"
)

// Setting keys.
const (
	settingRotationIndex = "post_rotation_index"
	settingAutomation    = "automation_settings"
)

// SaveSetting upserts a JSON-encoded setting.
func (db *DB) SaveSetting(ctx context.Context, key string, value interface{}) error {
	val, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal setting %s: %w", key, err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO app_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, val)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}

	return nil
}

// GetSetting reads a JSON-encoded setting into target. found is false when
// the key has never been written.
func (db *DB) GetSetting(ctx context.Context, key string, target interface{}) (bool, error) {
	var val []byte

	err := db.Pool.QueryRow(ctx, `SELECT value FROM app_settings WHERE key = $1`, key).Scan(&val)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("get setting %s: %w", key, err)
	}

	if err := json.Unmarshal(val, target); err != nil {
		return false, fmt.Errorf("unmarshal setting %s: %w", key, err)
	}

	return true, nil
}

// GetRotationIndex returns the last used catalog index.
func (db *DB) GetRotationIndex(ctx context.Context) (int, bool, error) {
	var index int

	found, err := db.GetSetting(ctx, settingRotationIndex, &index)
	if err != nil {
		return 0, false, err
	}

	return index, found, nil
}

// SetRotationIndex stores the last used catalog index.
func (db *DB) SetRotationIndex(ctx context.Context, index int) error {
	return db.SaveSetting(ctx, settingRotationIndex, index)
}

// GetAutomationSettings returns the scheduler settings, falling back to
// defaults when none were saved yet.
func (db *DB) GetAutomationSettings(ctx context.Context) (domain.AutomationSettings, error) {
	settings := domain.DefaultAutomationSettings()

	found, err := db.GetSetting(ctx, settingAutomation, &settings)
	if err != nil {
		return domain.DefaultAutomationSettings(), err
	}

	if !found {
		return domain.DefaultAutomationSettings(), nil
	}

	return settings, nil
}

// SaveAutomationSettings stores the scheduler settings.
func (db *DB) SaveAutomationSettings(ctx context.Context, settings domain.AutomationSettings) error {
	return db.SaveSetting(ctx, settingAutomation, settings)
}
