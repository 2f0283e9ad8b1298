package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smartapp-edu/records-service/internal/models"
)

// FileAdapter stores the snapshot as a single JSON document on disk.
type FileAdapter struct {
	path string
}

func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

func (f *FileAdapter) Load(_ context.Context) (models.StoreSnapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.StoreSnapshot{}, ErrNoSnapshot
		}
		return models.StoreSnapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}
	var snap models.StoreSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.StoreSnapshot{}, fmt.Errorf("decode snapshot file: %w", err)
	}
	return snap, nil
}

func (f *FileAdapter) Save(_ context.Context, snap models.StoreSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	// Write-then-rename so a crash mid-write cannot truncate the document.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

func (f *FileAdapter) String() string { return "file:" + filepath.Base(f.path) }
