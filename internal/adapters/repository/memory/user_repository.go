package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

type userRepository struct {
	v view
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	st, done := r.v()
	defer done()

	for _, u := range st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	st, done := r.v()
	defer done()

	for _, u := range st.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	st, done := r.v()
	defer done()

	u, ok := st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	st, done := r.v()
	defer done()

	for _, u := range st.users {
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	st.users[user.ID] = *user
	return nil
}
