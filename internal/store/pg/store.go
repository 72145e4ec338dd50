// Package pg implementa store.Repository sobre PostgreSQL (pgx).
package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/syncup/internal/store"
	migrations "github.com/dropDatabas3/syncup/migrations/postgres"
)

type Store struct {
	pool *pgxpool.Pool

	users      *userRepo
	workspaces *workspaceRepo
	magic      *magicLinkRepo
}

// New abre el pool y aplica las migraciones embebidas.
func New(ctx context.Context, dsn string) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: new pool: %w", err)
	}

	s := &Store{pool: pool}
	s.users = &userRepo{pool: pool}
	s.workspaces = &workspaceRepo{pool: pool}
	s.magic = &magicLinkRepo{pool: pool}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// migrate aplica los .sql embebidos en orden lexical. Los statements son
// idempotentes (IF NOT EXISTS), así que no hace falta tabla de versiones.
func (s *Store) migrate(ctx context.Context) error {
	entries, err := fs.ReadDir(migrations.FS, migrations.Dir)
	if err != nil {
		return fmt.Errorf("pg: read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		b, err := fs.ReadFile(migrations.FS, migrations.Dir+"/"+name)
		if err != nil {
			return fmt.Errorf("pg: read migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("pg: apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Users() store.UserRepository           { return s.users }
func (s *Store) Workspaces() store.WorkspaceRepository { return s.workspaces }
func (s *Store) MagicLinks() store.MagicLinkRepository { return s.magic }

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}
