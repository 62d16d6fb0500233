package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/questionpoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type stubVerifier struct {
	email string
}

func (v stubVerifier) Verify(ctx context.Context, token, clientID string) (*ports.TokenPayload, error) {
	if token != "valid" {
		return nil, errors.New("invalid")
	}
	return &ports.TokenPayload{Email: v.email}, nil
}

func newAuthFixture(t *testing.T) (*memory.Store, ports.UserService, *AuthService) {
	t.Helper()
	store := memory.NewStore()
	users := NewUserService(store.Users())
	auth := NewAuthService(store.Users(), store.RefreshTokens(), stubVerifier{email: "Gopher@Example.com"}, AuthConfig{
		JWTSecret: []byte("secret"),
	})
	return store, users, auth
}

func TestRegister(t *testing.T) {
	_, users, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := users.Register(ctx, ports.RegisterInput{Username: "gopher", Email: "Gopher@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "gopher@example.com", user.Email)
	assert.NotEqual(t, "password1", user.PasswordHash)

	_, err = users.Register(ctx, ports.RegisterInput{Username: "gopher", Email: "other@example.com", Password: "password1"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = users.Register(ctx, ports.RegisterInput{Username: "other", Email: "gopher@example.com", Password: "password1"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = users.Register(ctx, ports.RegisterInput{Username: "bad name", Email: "x@example.com", Password: "password1"})
	requireKind(t, err, domain.ErrValidation)

	_, err = users.Register(ctx, ports.RegisterInput{Username: "short", Email: "y@example.com", Password: "short"})
	requireKind(t, err, domain.ErrValidation)

	_, err = users.Register(ctx, ports.RegisterInput{Username: "noemail", Email: "not-an-email", Password: "password1"})
	requireKind(t, err, domain.ErrValidation)
}

func TestLoginAndAuthenticate(t *testing.T) {
	_, users, auth := newAuthFixture(t)
	ctx := context.Background()
	user, err := users.Register(ctx, ports.RegisterInput{Username: "gopher", Email: "gopher@example.com", Password: "password1"})
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "gopher@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	access, refresh, err := auth.Login(ctx, "GOPHER@example.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, refresh)

	id, err := auth.Authenticate(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = auth.Authenticate(ctx, access+"x")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAuthenticateRejectsForeignTokens(t *testing.T) {
	_, _, auth := newAuthFixture(t)
	ctx := context.Background()

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "00000000-0000-0000-0000-000000000001",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = auth.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "00000000-0000-0000-0000-000000000001"})
	signed, err = noExp.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = auth.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "00000000-0000-0000-0000-000000000001",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err = otherKey.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = auth.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshAndLogout(t *testing.T) {
	_, users, auth := newAuthFixture(t)
	ctx := context.Background()
	_, err := users.Register(ctx, ports.RegisterInput{Username: "gopher", Email: "gopher@example.com", Password: "password1"})
	require.NoError(t, err)

	_, refresh, err := auth.Login(ctx, "gopher@example.com", "password1")
	require.NoError(t, err)

	access, sameRefresh, err := auth.RefreshAccessToken(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.Equal(t, refresh, sameRefresh)

	require.NoError(t, auth.Logout(ctx, refresh))
	require.NoError(t, auth.Logout(ctx, refresh))
	require.NoError(t, auth.Logout(ctx, "unknown"))
	_, _, err = auth.RefreshAccessToken(ctx, refresh)
	requireKind(t, err, domain.ErrUnauthenticated)

	_, _, err = auth.RefreshAccessToken(ctx, "unknown")
	requireKind(t, err, domain.ErrUnauthenticated)
}

func TestLoginWithGoogle(t *testing.T) {
	store, users, auth := newAuthFixture(t)
	ctx := context.Background()
	_, err := users.Register(ctx, ports.RegisterInput{Username: "Gopher", Email: "someone@example.com", Password: "password1"})
	require.NoError(t, err)

	_, _, err = auth.LoginWithGoogle(ctx, "invalid")
	requireKind(t, err, domain.ErrUnauthenticated)

	access, _, err := auth.LoginWithGoogle(ctx, "valid")
	require.NoError(t, err)
	id, err := auth.Authenticate(ctx, access)
	require.NoError(t, err)

	created, err := store.Users().GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "gopher@example.com", created.Email)
	assert.Contains(t, created.Username, "Gopher-")

	again, _, err := auth.LoginWithGoogle(ctx, "valid")
	require.NoError(t, err)
	againID, err := auth.Authenticate(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, id, againID)
}
