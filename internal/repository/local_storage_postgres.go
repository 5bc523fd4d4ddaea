package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// PostgresLocalStorage implements domain.LocalStorage using PostgreSQL
type PostgresLocalStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresLocalStorage creates a new postgres-backed storage
func NewPostgresLocalStorage(db *sql.DB, logger *slog.Logger) *PostgresLocalStorage {
	return &PostgresLocalStorage{
		db:     db,
		logger: defaultLogger(logger),
	}
}

// EnsureSchema creates the storage table if it does not exist
func (r *PostgresLocalStorage) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS local_storage (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create local_storage table: %w", err)
	}
	return nil
}

func (r *PostgresLocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM local_storage WHERE key = $1`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		r.logger.Error("failed to get storage item",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *PostgresLocalStorage) SetItem(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO local_storage (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (r *PostgresLocalStorage) RemoveItem(ctx context.Context, key string) error {
	query := `DELETE FROM local_storage WHERE key = $1`
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
