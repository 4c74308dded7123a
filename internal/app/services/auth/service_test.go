package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "homestay/internal/app/services/auth"
	domainauth "homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/security"
	"homestay/internal/infra/storage/memory"
)

type stubVerifier struct {
	profile authsvc.GoogleProfile
	err     error
}

func (s stubVerifier) AuthURL(state string) string { return "https://example.test/auth?state=" + state }

func (s stubVerifier) ExchangeCode(_ context.Context, _ string) (authsvc.GoogleProfile, error) {
	return s.profile, s.err
}

func newService(verifier authsvc.GoogleVerifier) *authsvc.Service {
	return &authsvc.Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		Google:     verifier,
		SessionTTL: time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	res, err := svc.Register(ctx, authsvc.RegisterParams{
		Email:    "Ada@Example.com",
		Name:     "Ada",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.True(t, res.User.HasRole(domainuser.RoleGuest))
	assert.NotEmpty(t, res.Session.Token)
	assert.True(t, res.Session.ExpiresAt.After(time.Now()))

	login, err := svc.Login(ctx, authsvc.LoginParams{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = svc.Login(ctx, authsvc.LoginParams{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, authsvc.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicateEmailAndShortPassword(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, authsvc.RegisterParams{Email: "a@b.com", Name: "A", Password: "short"})
	assert.ErrorIs(t, err, authsvc.ErrPasswordTooShort)

	_, err = svc.Register(ctx, authsvc.RegisterParams{Email: "a@b.com", Name: "A", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, authsvc.RegisterParams{Email: "A@B.com", Name: "A2", Password: "long enough"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestLoginUnknownEmailIsInvalidCredentials(t *testing.T) {
	svc := newService(nil)
	_, err := svc.Login(context.Background(), authsvc.LoginParams{Email: "nobody@x.com", Password: "whatever"})
	assert.ErrorIs(t, err, authsvc.ErrInvalidCredentials)
}

func TestResolveTokenAndLogout(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	res, err := svc.Register(ctx, authsvc.RegisterParams{Email: "a@b.com", Name: "A", Password: "long enough"})
	require.NoError(t, err)
	token := string(res.Session.Token)

	resolved, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, resolved.User.ID)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestResolveTokenRejectsExpiredSession(t *testing.T) {
	svc := newService(nil)
	svc.SessionTTL = time.Nanosecond
	ctx := context.Background()

	res, err := svc.Register(ctx, authsvc.RegisterParams{Email: "a@b.com", Name: "A", Password: "long enough"})
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	_, err = svc.ResolveToken(ctx, string(res.Session.Token))
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestGoogleLoginCreatesGuestAccount(t *testing.T) {
	svc := newService(stubVerifier{profile: authsvc.GoogleProfile{
		ID:    "google-123",
		Email: "new@example.com",
		Name:  "New User",
	}})

	res, err := svc.GoogleLogin(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", res.User.Email)
	assert.Equal(t, "google-123", res.User.GoogleID)
	assert.True(t, res.User.HasRole(domainuser.RoleGuest))
	assert.Empty(t, res.User.PasswordHash)
}

func TestGoogleLoginLinksExistingAccountByEmail(t *testing.T) {
	verifier := stubVerifier{profile: authsvc.GoogleProfile{
		ID:    "google-123",
		Email: "ada@example.com",
	}}
	svc := newService(verifier)
	ctx := context.Background()

	local, err := svc.Register(ctx, authsvc.RegisterParams{Email: "ada@example.com", Name: "Ada", Password: "long enough"})
	require.NoError(t, err)

	linked, err := svc.GoogleLogin(ctx, "auth-code")
	require.NoError(t, err)
	assert.Equal(t, local.User.ID, linked.User.ID)
	assert.Equal(t, "google-123", linked.User.GoogleID)

	// Password login keeps working after linking.
	_, err = svc.Login(ctx, authsvc.LoginParams{Email: "ada@example.com", Password: "long enough"})
	assert.NoError(t, err)
}

func TestGoogleLoginWithoutVerifier(t *testing.T) {
	svc := newService(nil)
	_, err := svc.GoogleLogin(context.Background(), "code")
	assert.ErrorIs(t, err, authsvc.ErrGoogleUnavailable)

	_, err = svc.GoogleAuthURL("state")
	assert.ErrorIs(t, err, authsvc.ErrGoogleUnavailable)
}

func TestLoginGoogleOnlyAccountHasNoPassword(t *testing.T) {
	svc := newService(stubVerifier{profile: authsvc.GoogleProfile{
		ID:    "google-9",
		Email: "g@example.com",
	}})
	ctx := context.Background()

	_, err := svc.GoogleLogin(ctx, "auth-code")
	require.NoError(t, err)

	_, err = svc.Login(ctx, authsvc.LoginParams{Email: "g@example.com", Password: "anything at all"})
	assert.ErrorIs(t, err, authsvc.ErrPasswordLoginOnly)
}
