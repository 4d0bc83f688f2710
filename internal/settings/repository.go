package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pharmledger/pharmledger/internal/shared"
)

// Repository persists key-scoped settings entries.
type Repository struct {
	sdb *sqlx.DB
}

// NewRepository constructs Repository.
func NewRepository(sdb *sqlx.DB) *Repository {
	return &Repository{sdb: sdb}
}

// Get returns the value stored under key, or ErrNotFound.
func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.sdb.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("settings: key %q: %w", key, shared.ErrNotFound)
		}
		return "", fmt.Errorf("settings: get %q: %w", key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value.
func (r *Repository) Put(ctx context.Context, key, value string) error {
	_, err := r.sdb.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("settings: put %q: %w", key, err)
	}
	return nil
}
