// Package store define el boundary de persistencia del Identity Resolver y
// del flujo de magic links. El core de tokens no persiste nada: acá viven
// usuarios, workspaces y los magic links de un solo uso.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound: la entidad no existe.
	ErrNotFound = errors.New("store: not found")
	// ErrLinkConsumed: el magic link ya fue usado.
	ErrLinkConsumed = errors.New("store: magic link already used")
	// ErrLinkExpired: el magic link venció.
	ErrLinkExpired = errors.New("store: magic link expired")
)

// User es el usuario persistido al que se mapea una Identity.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Picture   string
	Role      string
	TenantID  string
	Active    bool
	CreatedAt time.Time
}

// Workspace agrupa usuarios dentro de un tenant.
type Workspace struct {
	ID       uuid.UUID
	Name     string
	TenantID string
}

// MagicLink es el registro de un solo uso detrás del token de magic link.
// El token firmado lleva el ID como jti; la fila es la fuente de verdad de
// expiración y consumo.
type MagicLink struct {
	ID          uuid.UUID
	Email       string
	Purpose     string // login | signup | otros
	WorkspaceID *uuid.UUID
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// Used indica si el link ya fue consumido.
func (m *MagicLink) Used() bool { return m.UsedAt != nil }

// UserRepository acceso a usuarios.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	// EnsureActive marca el usuario como activo (idempotente).
	EnsureActive(ctx context.Context, id uuid.UUID) error
}

// WorkspaceRepository acceso a workspaces y membresías.
type WorkspaceRepository interface {
	// ForUser devuelve el workspace del usuario, o ErrNotFound si no es
	// miembro de ninguno.
	ForUser(ctx context.Context, userID uuid.UUID) (*Workspace, error)
}

// MagicLinkRepository acceso a magic links.
type MagicLinkRepository interface {
	Create(ctx context.Context, m *MagicLink) error
	Get(ctx context.Context, id uuid.UUID) (*MagicLink, error)
	// Consume marca el link como usado de forma atómica. Devuelve
	// ErrLinkConsumed si ya estaba usado y ErrLinkExpired si venció.
	Consume(ctx context.Context, id uuid.UUID, now time.Time) (*MagicLink, error)
	// DeleteExpired purga links vencidos; devuelve la cantidad eliminada.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Repository agrupa los repos del dominio.
type Repository interface {
	Users() UserRepository
	Workspaces() WorkspaceRepository
	MagicLinks() MagicLinkRepository

	Ping(ctx context.Context) error
	Close()
}
