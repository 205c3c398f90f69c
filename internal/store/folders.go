package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fmuoria/resume-tailor/internal/models"
)

const folderKeyPrefix = "directory-"

// FolderKey returns the settings key for a profile's folder preference
func FolderKey(profileID string) string {
	return folderKeyPrefix + profileID
}

// Folders maps profile ids to remembered output directories
type Folders struct {
	db *DB
}

// Folders returns the folder preference store backed by this database
func (d *DB) Folders() *Folders {
	return &Folders{db: d}
}

// Get returns the folder handle for a profile, or nil if none was set
func (f *Folders) Get(ctx context.Context, profileID string) (*models.FolderHandle, error) {
	var raw []byte
	err := f.db.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, FolderKey(profileID)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load folder for profile %s: %w", profileID, err)
	}

	var handle models.FolderHandle
	if err := json.Unmarshal(raw, &handle); err != nil {
		return nil, fmt.Errorf("failed to decode folder for profile %s: %w", profileID, err)
	}
	return &handle, nil
}

// Set stores the folder handle for a profile, replacing any previous one
func (f *Folders) Set(ctx context.Context, profileID string, handle models.FolderHandle) error {
	raw, err := json.Marshal(handle)
	if err != nil {
		return fmt.Errorf("failed to encode folder: %w", err)
	}

	_, err = f.db.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		FolderKey(profileID), raw,
	)
	if err != nil {
		return fmt.Errorf("failed to save folder for profile %s: %w", profileID, err)
	}
	return nil
}

// Clear removes the folder preference for a profile. Clearing an absent entry is a no-op.
func (f *Folders) Clear(ctx context.Context, profileID string) error {
	if _, err := f.db.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, FolderKey(profileID)); err != nil {
		return fmt.Errorf("failed to clear folder for profile %s: %w", profileID, err)
	}
	return nil
}

// LoadAll looks up every profile concurrently. Failed lookups are logged and
// reported as absent, so the result always has one entry per id.
func (f *Folders) LoadAll(ctx context.Context, profileIDs []string) map[string]*models.FolderHandle {
	handles := make(map[string]*models.FolderHandle, len(profileIDs))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, id := range profileIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			handle, err := f.Get(ctx, id)
			if err != nil {
				slog.Warn("folder lookup failed, treating as unset", "profileId", id, "error", err)
				handle = nil
			}

			mu.Lock()
			handles[id] = handle
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return handles
}
