package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

// querier is the subset of *sql.DB and *sql.Tx the repositories need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repositories struct {
	q querier
}

func (r repositories) Users() ports.UserRepository         { return &UserRepository{db: r.q} }
func (r repositories) RefreshTokens() ports.AuthRepository { return &AuthRepository{db: r.q} }
func (r repositories) Questions() ports.QuestionRepository { return &questionRepository{db: r.q} }
func (r repositories) Choices() ports.ChoiceRepository     { return &choiceRepository{db: r.q} }
func (r repositories) Votes() ports.VoteRepository         { return &voteRepository{db: r.q} }

type Store struct {
	repositories
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{repositories: repositories{q: db}, db: db}
}

func (s *Store) Atomic(ctx context.Context, fn func(r ports.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(repositories{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translate(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}
