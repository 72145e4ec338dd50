package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/syncup/internal/store"
)

type userRepo struct{ pool *pgxpool.Pool }

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	const q = `
		SELECT user_id, email, name, picture, role, tenant_id, is_active, created_at
		FROM users WHERE lower(email) = lower($1)`

	var u store.User
	err := r.pool.QueryRow(ctx, q, strings.TrimSpace(email)).Scan(
		&u.ID, &u.Email, &u.Name, &u.Picture, &u.Role, &u.TenantID, &u.Active, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get user by email: %w", err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *store.User) error {
	const q = `
		INSERT INTO users (user_id, email, name, picture, role, tenant_id, is_active)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)`

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, q, u.ID, u.Email, u.Name, u.Picture, u.Role, u.TenantID, u.Active)
	if err != nil {
		return fmt.Errorf("pg: create user: %w", err)
	}
	return nil
}

func (r *userRepo) EnsureActive(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE users SET is_active = TRUE WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("pg: ensure active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
