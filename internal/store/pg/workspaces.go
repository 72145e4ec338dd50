package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/syncup/internal/store"
)

type workspaceRepo struct{ pool *pgxpool.Pool }

func (r *workspaceRepo) ForUser(ctx context.Context, userID uuid.UUID) (*store.Workspace, error) {
	// Un usuario puede pertenecer a varios workspaces; tomamos el primero por
	// orden de alta, igual que el resolver original.
	const q = `
		SELECT w.workspace_id, w.name, w.tenant_id
		FROM workspace_members m
		JOIN workspaces w ON w.workspace_id = m.workspace_id
		WHERE m.user_id = $1
		ORDER BY w.workspace_id
		LIMIT 1`

	var w store.Workspace
	err := r.pool.QueryRow(ctx, q, userID).Scan(&w.ID, &w.Name, &w.TenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: workspace for user: %w", err)
	}
	return &w, nil
}
