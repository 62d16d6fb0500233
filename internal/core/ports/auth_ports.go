package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

// AuthRepository stores refresh tokens by the hash of their value; the raw
// token never reaches storage.
type AuthRepository interface {
	StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	// FindRefreshToken returns nil, nil when no token has tokenHash.
	FindRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// RevokeRefreshToken revokes the token with tokenHash and reports whether
	// a not yet revoked token was found.
	RevokeRefreshToken(ctx context.Context, tokenHash string) (bool, error)
}

type TokenPayload struct {
	Email string
	Name  string
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string, clientID string) (*TokenPayload, error)
}

type AuthService interface {
	// Login and LoginWithGoogle return access_token, refresh_token, error.
	Login(ctx context.Context, email, password string) (string, string, error)
	LoginWithGoogle(ctx context.Context, googleToken string) (string, string, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	// Authenticate validates an access token and returns its subject.
	Authenticate(ctx context.Context, accessToken string) (uuid.UUID, error)
}
