package service

import (
	"fmt"
	"strings"

	"blockedit/internal/domain"
	"blockedit/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Settings: small key-value preferences kept between sessions
// ─────────────────────────────────────────────────────────────
//
// Stored in SQLite as rows of app_settings. The table is created by the
// storage migrations.

const settingRecentTypes = "recent_block_types"

// SettingsService persists user preferences.
type SettingsService struct {
	db *storage.DB
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(db *storage.DB) *SettingsService {
	return &SettingsService{db: db}
}

// RecentTypes returns the insert-menu history saved by the last editor,
// newest first. Unknown types are dropped.
func (s *SettingsService) RecentTypes() []domain.BlockType {
	if s == nil || s.db == nil {
		return nil
	}
	var value string
	row := s.db.Conn().QueryRow(`SELECT value FROM app_settings WHERE key = ?`, settingRecentTypes)
	if err := row.Scan(&value); err != nil || value == "" {
		return nil
	}
	var out []domain.BlockType
	for _, name := range strings.Split(value, ",") {
		if t := domain.BlockType(name); t.Valid() {
			out = append(out, t)
		}
	}
	return out
}

// SaveRecentTypes stores the insert-menu history.
func (s *SettingsService) SaveRecentTypes(types []domain.BlockType) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("settings: no db")
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return s.upsert(settingRecentTypes, strings.Join(names, ","))
}

func (s *SettingsService) upsert(key, value string) error {
	_, err := s.db.Conn().Exec(
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}
