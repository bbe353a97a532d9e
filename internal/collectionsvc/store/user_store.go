package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, created_at
		FROM users
		WHERE username = $1
	`

	u := &models.User{}
	err := s.db.QueryRow(ctx, query, username).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return u, nil
}

func (s *UserStore) Create(ctx context.Context, user models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email)
		VALUES ($1, $2)
		RETURNING id, username, email, created_at
	`

	u := &models.User{}
	err := s.db.QueryRow(ctx, query, user.Username, user.Email).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	return u, nil
}
