package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// SettingCameraID caches the rear camera chosen by the device heuristic.
const SettingCameraID = "camera_id"

// SettingsRepository stores key-value application settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value for key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set inserts or replaces the value for key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes key. Deleting a missing key returns ErrNotFound.
func (r *SettingsRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// CameraID returns the cached rear camera, if one was saved.
func (r *SettingsRepository) CameraID() (int, bool, error) {
	value, err := r.Get(SettingCameraID)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	id, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("invalid cached camera id %q: %w", value, err)
	}
	return id, true, nil
}

// SetCameraID caches the chosen rear camera.
func (r *SettingsRepository) SetCameraID(id int) error {
	return r.Set(SettingCameraID, strconv.Itoa(id))
}
