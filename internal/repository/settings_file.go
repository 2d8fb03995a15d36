package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"PriceWatch/internal/domain/models"
	"PriceWatch/internal/domain/repository"
)

// FileSettingsStore keeps the settings document as a JSON file.
type FileSettingsStore struct {
	path string
}

// NewFileSettingsStore creates a store backed by path. Parent directories
// are created on the first save.
func NewFileSettingsStore(path string) repository.SettingsStore {
	return &FileSettingsStore{path: path}
}

func (s *FileSettingsStore) Load(_ context.Context) (*models.Settings, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", models.ErrSettingsNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", models.ErrSettingsIO, s.path, err)
	}

	var st models.Settings
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", models.ErrSettingsIO, s.path, err)
	}
	return &st, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target, so readers never observe a partial document.
func (s *FileSettingsStore) Save(_ context.Context, st *models.Settings) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", models.ErrSettingsIO, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", models.ErrSettingsIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", models.ErrSettingsIO, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write: %v", models.ErrSettingsIO, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync: %v", models.ErrSettingsIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", models.ErrSettingsIO, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: rename: %v", models.ErrSettingsIO, err)
	}
	return nil
}

func (s *FileSettingsStore) Close() error { return nil }
