package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/syncup/internal/email"
	dto "github.com/dropDatabas3/syncup/internal/http/dto/auth"
	"github.com/dropDatabas3/syncup/internal/store"
	memstore "github.com/dropDatabas3/syncup/internal/store/memory"
	"github.com/dropDatabas3/syncup/internal/token"
)

const testSecret = "03f13061781d1cc91c8714e28cee1459d939339b0ed081299e98d42fd195fbd3"

var testTokenCfg = token.Config{Secret: testSecret, Algorithm: "HS256"}

// fakeSender captura los emails enviados.
type fakeSender struct {
	to      []string
	bodies  []string
	failure error
}

func (f *fakeSender) Send(to, _, _, textBody string) error {
	if f.failure != nil {
		return f.failure
	}
	f.to = append(f.to, to)
	f.bodies = append(f.bodies, textBody)
	return nil
}

func newTestService(t *testing.T) (*MagicLinkService, *memstore.Store, *fakeSender) {
	t.Helper()
	repo := memstore.New()
	sender := &fakeSender{}
	svc := NewMagicLinkService(MagicLinkDeps{
		Repo: repo,
		Mailer: &email.MagicLinkMailer{
			Sender:      sender,
			AppName:     "Syncup",
			FrontendURL: "http://localhost:3000",
		},
		Token:      testTokenCfg,
		LinkTTL:    15 * time.Minute,
		SessionTTL: time.Hour,
		BackendURL: "http://localhost:8080",
	})
	return svc, repo, sender
}

func seedUser(t *testing.T, repo *memstore.Store, email string) *store.User {
	t.Helper()
	u := &store.User{
		ID:     uuid.New(),
		Email:  email,
		Name:   "Seed User",
		Role:   "member",
		Active: true,
	}
	require.NoError(t, repo.Users().Create(context.Background(), u))
	return u
}

// extrae el token firmado de la URL que viajó en el email
func tokenFromEmail(t *testing.T, sender *fakeSender) string {
	t.Helper()
	require.NotEmpty(t, sender.bodies, "no email sent")
	body := sender.bodies[len(sender.bodies)-1]
	i := strings.Index(body, "token=")
	require.GreaterOrEqual(t, i, 0, "no token in email body: %s", body)
	raw := body[i+len("token="):]
	if j := strings.IndexAny(raw, "\n &"); j >= 0 {
		raw = raw[:j]
	}
	return raw
}

func TestSend_LoginRequiresExistingUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Send(context.Background(), dto.MagicSendRequest{
		Email: "ghost@x.com", Purpose: "login",
	})
	assert.ErrorIs(t, err, ErrUnknownEmail)
}

func TestSend_And_Authenticate(t *testing.T) {
	svc, repo, sender := newTestService(t)
	u := seedUser(t, repo, "a@x.com")

	res, err := svc.Send(context.Background(), dto.MagicSendRequest{
		Email: "A@X.com", Purpose: "login",
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", res.Email)
	assert.True(t, res.IsValid)
	assert.Equal(t, []string{"a@x.com"}, sender.to)

	raw := tokenFromEmail(t, sender)

	auth, err := svc.Authenticate(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), auth.User.UserID)
	assert.Equal(t, "a@x.com", auth.User.Email)
	assert.NotEmpty(t, auth.AccessToken)

	// El session JWT pasa la verificación estricta de cookie
	id, err := token.VerifySessionCookie(auth.AccessToken, testTokenCfg)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", id.Email)
	assert.Equal(t, u.ID.String(), id.Subject)
}

func TestAuthenticate_SingleUse(t *testing.T) {
	svc, repo, sender := newTestService(t)
	seedUser(t, repo, "a@x.com")

	_, err := svc.Send(context.Background(), dto.MagicSendRequest{Email: "a@x.com"})
	require.NoError(t, err)
	raw := tokenFromEmail(t, sender)

	_, err = svc.Authenticate(context.Background(), raw)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), raw)
	assert.ErrorIs(t, err, ErrLinkUsed)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrLinkInvalid)

	// Firmado con otro secret
	other, err2 := token.Sign(token.Claims{"jti": uuid.NewString()}, time.Minute,
		token.Config{Secret: "wrong-secret", Algorithm: "HS256"})
	require.NoError(t, err2)
	_, err = svc.Authenticate(context.Background(), other)
	assert.ErrorIs(t, err, ErrLinkInvalid)
}

func TestAuthenticate_SignupCreatesUser(t *testing.T) {
	svc, repo, sender := newTestService(t)

	_, err := svc.Send(context.Background(), dto.MagicSendRequest{
		Email: "new@x.com", Purpose: "signup",
	})
	require.NoError(t, err)
	raw := tokenFromEmail(t, sender)

	auth, err := svc.Authenticate(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", auth.User.Email)

	u, err := repo.Users().GetByEmail(context.Background(), "new@x.com")
	require.NoError(t, err)
	assert.True(t, u.Active)
}

func TestStatus_DoesNotConsume(t *testing.T) {
	svc, repo, sender := newTestService(t)
	seedUser(t, repo, "a@x.com")

	_, err := svc.Send(context.Background(), dto.MagicSendRequest{Email: "a@x.com"})
	require.NoError(t, err)
	raw := tokenFromEmail(t, sender)

	st := svc.Status(context.Background(), raw)
	assert.True(t, st.IsValid)
	assert.Equal(t, "a@x.com", st.Email)

	// Sigue siendo consumible después del check
	_, err = svc.Authenticate(context.Background(), raw)
	require.NoError(t, err)

	st = svc.Status(context.Background(), raw)
	assert.False(t, st.IsValid)
}

func TestCleanup_PurgesExpired(t *testing.T) {
	svc, repo, _ := newTestService(t)

	ctx := context.Background()
	expired := &store.MagicLink{
		ID:        uuid.New(),
		Email:     "old@x.com",
		Purpose:   "login",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	live := &store.MagicLink{
		ID:        uuid.New(),
		Email:     "live@x.com",
		Purpose:   "login",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, repo.MagicLinks().Create(ctx, expired))
	require.NoError(t, repo.MagicLinks().Create(ctx, live))

	n, err := svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.MagicLinks().Get(ctx, live.ID)
	assert.NoError(t, err)
}

func TestAuthenticate_ExpiredLink(t *testing.T) {
	svc, repo, sender := newTestService(t)
	seedUser(t, repo, "a@x.com")

	_, err := svc.Send(context.Background(), dto.MagicSendRequest{Email: "a@x.com"})
	require.NoError(t, err)
	raw := tokenFromEmail(t, sender)

	// Forzar expiración de la fila: el JWT sigue vigente pero el store manda
	links := repo.MagicLinks()
	claims, err := token.Verify(raw, testTokenCfg)
	require.NoError(t, err)
	id := uuid.MustParse(claims.String("jti"))
	link, err := links.Get(context.Background(), id)
	require.NoError(t, err)
	_, err = links.Consume(context.Background(), link.ID, link.ExpiresAt.Add(time.Second))
	assert.ErrorIs(t, err, store.ErrLinkExpired)
}
