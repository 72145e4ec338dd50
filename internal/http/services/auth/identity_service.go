package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/syncup/internal/cache"
	dto "github.com/dropDatabas3/syncup/internal/http/dto/auth"
	"github.com/dropDatabas3/syncup/internal/observability/logger"
	"github.com/dropDatabas3/syncup/internal/store"
	"github.com/dropDatabas3/syncup/internal/token"
)

// IdentityService mapea la Identity del token al usuario y workspace
// persistidos. Los lookups por email van con cache read-through: el endpoint
// /me se llama en cada carga de página del frontend.
type IdentityService struct {
	Repo     store.Repository
	Cache    cache.Cache
	CacheTTL time.Duration

	// sf dedupea lookups concurrentes del mismo email en cache miss
	sf singleflight.Group
}

// NewIdentityService crea el servicio. cache puede ser nil (sin cache).
func NewIdentityService(repo store.Repository, c cache.Cache, ttl time.Duration) *IdentityService {
	return &IdentityService{Repo: repo, Cache: c, CacheTTL: ttl}
}

// resolvedUser es lo que se cachea: proyección del usuario + workspace.
type resolvedUser struct {
	User        dto.UserPayload `json:"user"`
	WorkspaceID string          `json:"workspace_id,omitempty"`
}

// Resolve arma la respuesta de /me: identidad canónica + usuario/workspace
// del store. Que el usuario no esté persistido no es un error: la identidad
// del token sigue siendo válida (p.ej. sesiones federadas sin alta local).
func (s *IdentityService) Resolve(ctx context.Context, id *token.Identity) *dto.MeResponse {
	res := &dto.MeResponse{Identity: *id}

	ru, err := s.lookupByEmail(ctx, strings.ToLower(id.Email))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.From(ctx).Warn("identity lookup failed",
				logger.Component("auth.identity"),
				logger.Err(err),
			)
		}
		return res
	}

	res.User = &ru.User
	res.WorkspaceID = ru.WorkspaceID
	return res
}

func (s *IdentityService) lookupByEmail(ctx context.Context, email string) (*resolvedUser, error) {
	key := "user:" + email

	if s.Cache != nil {
		if b, ok := s.Cache.Get(key); ok {
			var ru resolvedUser
			if err := json.Unmarshal(b, &ru); err == nil {
				return &ru, nil
			}
			// Entrada corrupta: descartar y seguir al store
			s.Cache.Delete(key)
		}
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		user, err := s.Repo.Users().GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}

		ru := &resolvedUser{
			User: dto.UserPayload{
				UserID:   user.ID.String(),
				Email:    user.Email,
				Name:     user.Name,
				Picture:  user.Picture,
				Role:     user.Role,
				TenantID: user.TenantID,
			},
		}
		if ws, err := s.Repo.Workspaces().ForUser(ctx, user.ID); err == nil {
			ru.WorkspaceID = ws.ID.String()
		}

		if s.Cache != nil {
			if b, err := json.Marshal(ru); err == nil {
				s.Cache.Set(key, b, s.CacheTTL)
			}
		}
		return ru, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*resolvedUser), nil
}

// Invalidate borra la entrada cacheada de un email (tras cambios de usuario).
func (s *IdentityService) Invalidate(email string) {
	if s.Cache != nil {
		s.Cache.Delete("user:" + strings.ToLower(email))
	}
}
