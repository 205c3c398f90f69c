package store

import (
	"context"
	"fmt"
	"time"

	"github.com/fmuoria/resume-tailor/internal/models"
)

// History records the outcome of each finished submission
type History struct {
	db *DB
}

// History returns the history log backed by this database
func (d *DB) History() *History {
	return &History{db: d}
}

// Record appends an entry; CreatedAt defaults to now
func (h *History) Record(ctx context.Context, entry models.HistoryEntry) (int64, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	res, err := h.db.db.ExecContext(ctx, `
		INSERT INTO history (profile_name, company, role, filename, outcome, location, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ProfileName, entry.Company, entry.Role, entry.Filename,
		string(entry.Outcome), entry.Location, entry.Message,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history entry: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent entries first. limit <= 0 returns everything.
func (h *History) List(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	query := `
		SELECT id, profile_name, company, role, filename, outcome, location, message, created_at
		FROM history ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			e         models.HistoryEntry
			outcome   string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.ProfileName, &e.Company, &e.Role, &e.Filename,
			&outcome, &e.Location, &e.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Outcome = models.Outcome(outcome)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
