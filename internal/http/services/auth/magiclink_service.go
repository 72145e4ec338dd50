// Package auth implementa los servicios del flujo de autenticación por
// magic link: emisión, verificación/consumo y resolución de identidad.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/syncup/internal/email"
	dto "github.com/dropDatabas3/syncup/internal/http/dto/auth"
	"github.com/dropDatabas3/syncup/internal/metrics"
	"github.com/dropDatabas3/syncup/internal/observability/logger"
	"github.com/dropDatabas3/syncup/internal/store"
	"github.com/dropDatabas3/syncup/internal/token"
)

// Errores del flujo de magic link.
var (
	ErrMissingEmail = errors.New("missing email")
	ErrUnknownEmail = errors.New("unknown email")
	ErrLinkInvalid  = errors.New("invalid magic link")
	ErrLinkUsed     = errors.New("magic link already used")
	ErrLinkExpired  = errors.New("magic link expired")
	ErrUserNotFound = errors.New("user not found")
)

// MagicLinkDeps contiene las dependencias del servicio.
type MagicLinkDeps struct {
	Repo       store.Repository
	Mailer     *email.MagicLinkMailer
	Token      token.Config
	LinkTTL    time.Duration
	SessionTTL time.Duration
	// BackendURL es la base del endpoint de verify que viaja en el email.
	BackendURL string
}

// MagicLinkService emite y consume magic links.
type MagicLinkService struct {
	deps MagicLinkDeps
}

// NewMagicLinkService crea el servicio con sus dependencias.
func NewMagicLinkService(deps MagicLinkDeps) *MagicLinkService {
	return &MagicLinkService{deps: deps}
}

// AuthResult es el resultado de consumir un magic link.
type AuthResult struct {
	AccessToken string
	User        dto.UserPayload
	WorkspaceID string
	SessionTTL  time.Duration
}

// Send crea un magic link, lo persiste y manda el email con el token firmado.
// El token lleva el ID del link como jti: la fila en el store es la fuente de
// verdad de expiración y single-use.
func (s *MagicLinkService) Send(ctx context.Context, in dto.MagicSendRequest) (*dto.MagicSendResponse, error) {
	log := logger.From(ctx).With(
		logger.Component("auth.magiclink"),
		logger.Op("Send"),
	)

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" {
		return nil, ErrMissingEmail
	}
	if in.Purpose == "" {
		in.Purpose = "login"
	}

	// Para login el usuario tiene que existir; signup/invite crean al consumir.
	if in.Purpose == "login" {
		if _, err := s.deps.Repo.Users().GetByEmail(ctx, in.Email); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrUnknownEmail
			}
			return nil, err
		}
	}

	link := &store.MagicLink{
		ID:        uuid.New(),
		Email:     in.Email,
		Purpose:   in.Purpose,
		ExpiresAt: time.Now().UTC().Add(s.deps.LinkTTL),
	}
	if ws := strings.TrimSpace(in.WorkspaceID); ws != "" {
		id, err := uuid.Parse(ws)
		if err != nil {
			return nil, fmt.Errorf("%w: bad workspace_id", ErrLinkInvalid)
		}
		link.WorkspaceID = &id
	}

	if err := s.deps.Repo.MagicLinks().Create(ctx, link); err != nil {
		return nil, err
	}

	claims := token.Claims{
		"jti":     link.ID.String(),
		"email":   link.Email,
		"purpose": link.Purpose,
	}
	if link.WorkspaceID != nil {
		claims["workspace_id"] = link.WorkspaceID.String()
	}
	raw, err := token.Sign(claims, s.deps.LinkTTL, s.deps.Token)
	if err != nil {
		return nil, err
	}

	verifyURL := strings.TrimRight(s.deps.BackendURL, "/") +
		"/v1/auth/magic/verify?token=" + url.QueryEscape(raw)

	if err := s.deps.Mailer.SendMagicLink(link.Email, verifyURL, s.deps.LinkTTL); err != nil {
		return nil, err
	}

	metrics.MagicLinksSent.WithLabelValues(link.Purpose).Inc()
	log.Info("magic link sent",
		logger.Email(link.Email),
		logger.String("purpose", link.Purpose),
	)

	return &dto.MagicSendResponse{
		TokenID:     link.ID.String(),
		Email:       link.Email,
		ExpiresAt:   link.ExpiresAt.Unix(),
		Purpose:     link.Purpose,
		WorkspaceID: in.WorkspaceID,
		IsValid:     true,
	}, nil
}

// Status verifica un magic link SIN consumirlo. Útil para que el frontend
// valide antes de usar el token.
func (s *MagicLinkService) Status(ctx context.Context, raw string) *dto.MagicStatusResponse {
	link, err := s.lookup(ctx, raw)
	if err != nil {
		return &dto.MagicStatusResponse{IsValid: false, Error: statusError(err)}
	}
	res := &dto.MagicStatusResponse{
		IsValid:   true,
		Email:     link.Email,
		Purpose:   link.Purpose,
		ExpiresAt: link.ExpiresAt.Unix(),
	}
	if link.WorkspaceID != nil {
		res.WorkspaceID = link.WorkspaceID.String()
	}
	return res
}

// Authenticate consume el magic link y emite el session JWT. Es la operación
// compartida por verify (redirect) y authenticate (JSON).
func (s *MagicLinkService) Authenticate(ctx context.Context, raw string) (*AuthResult, error) {
	log := logger.From(ctx).With(
		logger.Component("auth.magiclink"),
		logger.Op("Authenticate"),
	)

	id, err := s.linkID(raw)
	if err != nil {
		metrics.MagicLinksConsumed.WithLabelValues("invalid").Inc()
		return nil, err
	}

	link, err := s.deps.Repo.MagicLinks().Consume(ctx, id, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrLinkConsumed):
			metrics.MagicLinksConsumed.WithLabelValues("used").Inc()
			return nil, ErrLinkUsed
		case errors.Is(err, store.ErrLinkExpired):
			metrics.MagicLinksConsumed.WithLabelValues("expired").Inc()
			return nil, ErrLinkExpired
		case errors.Is(err, store.ErrNotFound):
			metrics.MagicLinksConsumed.WithLabelValues("invalid").Inc()
			return nil, ErrLinkInvalid
		}
		return nil, err
	}

	user, err := s.resolveUser(ctx, link)
	if err != nil {
		return nil, err
	}

	// Session JWT: claims mínimas first-party. El middleware de cookie acepta
	// user_id como fallback de sub.
	access, err := token.Sign(token.Claims{
		"user_id":   user.ID.String(),
		"email":     user.Email,
		"name":      user.Name,
		"picture":   user.Picture,
		"role":      user.Role,
		"tenant_id": user.TenantID,
	}, s.deps.SessionTTL, s.deps.Token)
	if err != nil {
		return nil, err
	}

	metrics.MagicLinksConsumed.WithLabelValues("ok").Inc()
	log.Info("magic link consumed",
		logger.Email(user.Email),
		logger.String("purpose", link.Purpose),
	)

	res := &AuthResult{
		AccessToken: access,
		User: dto.UserPayload{
			UserID:   user.ID.String(),
			Email:    user.Email,
			Name:     user.Name,
			Picture:  user.Picture,
			Role:     user.Role,
			TenantID: user.TenantID,
		},
		SessionTTL: s.deps.SessionTTL,
	}
	if link.WorkspaceID != nil {
		res.WorkspaceID = link.WorkspaceID.String()
	}
	return res, nil
}

// Cleanup purga los links vencidos.
func (s *MagicLinkService) Cleanup(ctx context.Context) (int64, error) {
	return s.deps.Repo.MagicLinks().DeleteExpired(ctx, time.Now().UTC())
}

// resolveUser busca el usuario del link; para signup/invite lo crea si no
// existe y lo reactiva si estaba inactivo.
func (s *MagicLinkService) resolveUser(ctx context.Context, link *store.MagicLink) (*store.User, error) {
	user, err := s.deps.Repo.Users().GetByEmail(ctx, link.Email)
	switch {
	case err == nil:
		if !user.Active {
			if err := s.deps.Repo.Users().EnsureActive(ctx, user.ID); err != nil {
				return nil, err
			}
			user.Active = true
		}
		return user, nil
	case errors.Is(err, store.ErrNotFound) && link.Purpose != "login":
		user = &store.User{
			ID:     uuid.New(),
			Email:  link.Email,
			Role:   "member",
			Active: true,
		}
		if err := s.deps.Repo.Users().Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrUserNotFound
	default:
		return nil, err
	}
}

// linkID extrae el jti del token firmado del magic link.
func (s *MagicLinkService) linkID(raw string) (uuid.UUID, error) {
	claims, err := token.Verify(raw, s.deps.Token)
	if err != nil {
		return uuid.Nil, ErrLinkInvalid
	}
	id, err := uuid.Parse(claims.String("jti"))
	if err != nil {
		return uuid.Nil, ErrLinkInvalid
	}
	return id, nil
}

// lookup es la variante no-consumidora de Authenticate.
func (s *MagicLinkService) lookup(ctx context.Context, raw string) (*store.MagicLink, error) {
	id, err := s.linkID(raw)
	if err != nil {
		return nil, err
	}
	link, err := s.deps.Repo.MagicLinks().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLinkInvalid
		}
		return nil, err
	}
	if link.Used() {
		return nil, ErrLinkUsed
	}
	if link.ExpiresAt.Before(time.Now().UTC()) {
		return nil, ErrLinkExpired
	}
	return link, nil
}

func statusError(err error) string {
	switch {
	case errors.Is(err, ErrLinkUsed):
		return "magic link has already been used"
	case errors.Is(err, ErrLinkExpired):
		return "magic link has expired"
	default:
		return "invalid magic link token"
	}
}
