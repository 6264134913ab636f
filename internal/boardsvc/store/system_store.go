package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const KeyActiveBoard = "active_board_id"

// SystemStore is the key/value table for process-wide settings.
type SystemStore struct {
	db *pgxpool.Pool
}

func NewSystemStore(db *pgxpool.Pool) *SystemStore {
	return &SystemStore{db: db}
}

// Get returns the value for key and whether it was set.
func (s *SystemStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM system WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read system key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SystemStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO system (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write system key %s: %w", key, err)
	}
	return nil
}
