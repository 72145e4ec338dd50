package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/syncup/internal/store"
)

type magicLinkRepo struct{ pool *pgxpool.Pool }

func (r *magicLinkRepo) Create(ctx context.Context, m *store.MagicLink) error {
	const q = `
		INSERT INTO magic_links (link_id, email, purpose, workspace_id, expires_at)
		VALUES ($1, lower($2), $3, $4, $5)`

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, q, m.ID, m.Email, m.Purpose, m.WorkspaceID, m.ExpiresAt)
	if err != nil {
		return fmt.Errorf("pg: create magic link: %w", err)
	}
	return nil
}

func (r *magicLinkRepo) Get(ctx context.Context, id uuid.UUID) (*store.MagicLink, error) {
	const q = `
		SELECT link_id, email, purpose, workspace_id, expires_at, used_at, created_at
		FROM magic_links WHERE link_id = $1`

	var m store.MagicLink
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&m.ID, &m.Email, &m.Purpose, &m.WorkspaceID, &m.ExpiresAt, &m.UsedAt, &m.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get magic link: %w", err)
	}
	return &m, nil
}

// Consume marca el link como usado de forma atómica: el UPDATE condicional
// garantiza un solo consumidor aun con requests concurrentes.
func (r *magicLinkRepo) Consume(ctx context.Context, id uuid.UUID, now time.Time) (*store.MagicLink, error) {
	const q = `
		UPDATE magic_links SET used_at = $2
		WHERE link_id = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING link_id, email, purpose, workspace_id, expires_at, used_at, created_at`

	var m store.MagicLink
	err := r.pool.QueryRow(ctx, q, id, now.UTC()).Scan(
		&m.ID, &m.Email, &m.Purpose, &m.WorkspaceID, &m.ExpiresAt, &m.UsedAt, &m.CreatedAt,
	)
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("pg: consume magic link: %w", err)
	}

	// El UPDATE no matcheó: distinguir la causa para el caller.
	existing, gerr := r.Get(ctx, id)
	if gerr != nil {
		return nil, gerr
	}
	if existing.Used() {
		return nil, store.ErrLinkConsumed
	}
	return nil, store.ErrLinkExpired
}

func (r *magicLinkRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM magic_links WHERE expires_at <= $1`
	tag, err := r.pool.Exec(ctx, q, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("pg: delete expired magic links: %w", err)
	}
	return tag.RowsAffected(), nil
}
