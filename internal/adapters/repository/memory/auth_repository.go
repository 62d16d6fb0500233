package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

type authRepository struct {
	v view
}

func (r *authRepository) StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	st, done := r.v()
	defer done()

	if _, ok := st.users[token.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	st.tokens[token.ID] = *token
	return nil
}

func (r *authRepository) FindRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	st, done := r.v()
	defer done()

	for _, t := range st.tokens {
		if t.TokenHash == tokenHash {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *authRepository) RevokeRefreshToken(ctx context.Context, tokenHash string) (bool, error) {
	st, done := r.v()
	defer done()

	for id, t := range st.tokens {
		if t.TokenHash == tokenHash && !t.Revoked {
			t.Revoked = true
			st.tokens[id] = t
			return true, nil
		}
	}
	return false, nil
}
