package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

func (r *UserStore) CreateUser(ctx context.Context, user models.User) (int64, error) {
	var userId int64

	query := `
        INSERT INTO users (name, password_hash, status)
        VALUES ($1, $2, $3)
        RETURNING user_id;
    `

	err := r.db.QueryRow(ctx, query, user.Name, user.PasswordHash, user.Status).Scan(&userId)
	if err != nil {
		return 0, fmt.Errorf("could not create user: %w", err)
	}

	return userId, nil
}

func (r *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, `
        SELECT user_id, name, password_hash, status, created_at, updated_at
        FROM users
        WHERE user_id = $1
    `, id)
}

func (r *UserStore) GetByName(ctx context.Context, name string) (*models.User, error) {
	return r.getUser(ctx, `
        SELECT user_id, name, password_hash, status, created_at, updated_at
        FROM users
        WHERE lower(name) = lower($1)
    `, name)
}

// getUser returns nil, nil when no row matches.
func (r *UserStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.UserId,
		&u.Name,
		&u.PasswordHash,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return u, nil
}
