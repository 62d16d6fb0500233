// Package memory is an in-process implementation of ports.Store. It keeps
// the same uniqueness and cascade rules as the postgres schema and runs
// Atomic blocks against a private copy of the data that replaces the shared
// copy only when the block succeeds.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type state struct {
	users     map[uuid.UUID]domain.User
	tokens    map[uuid.UUID]domain.RefreshToken
	questions map[uuid.UUID]domain.Question
	choices   map[uuid.UUID]domain.Choice
	votes     map[uuid.UUID]domain.Vote
}

func newState() *state {
	return &state{
		users:     make(map[uuid.UUID]domain.User),
		tokens:    make(map[uuid.UUID]domain.RefreshToken),
		questions: make(map[uuid.UUID]domain.Question),
		choices:   make(map[uuid.UUID]domain.Choice),
		votes:     make(map[uuid.UUID]domain.Vote),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	for k, v := range s.questions {
		c.questions[k] = v
	}
	for k, v := range s.choices {
		c.choices[k] = v
	}
	for k, v := range s.votes {
		c.votes[k] = v
	}
	return c
}

// view hands a repository the state to work on and the function releasing
// it once the operation is done.
type view func() (*state, func())

type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) shared() view {
	return func() (*state, func()) {
		s.mu.Lock()
		return s.state, s.mu.Unlock
	}
}

func pinned(st *state) view {
	return func() (*state, func()) {
		return st, func() {}
	}
}

func (s *Store) Users() ports.UserRepository         { return repositories{s.shared()}.Users() }
func (s *Store) RefreshTokens() ports.AuthRepository { return repositories{s.shared()}.RefreshTokens() }
func (s *Store) Questions() ports.QuestionRepository { return repositories{s.shared()}.Questions() }
func (s *Store) Choices() ports.ChoiceRepository     { return repositories{s.shared()}.Choices() }
func (s *Store) Votes() ports.VoteRepository         { return repositories{s.shared()}.Votes() }

// Atomic holds the store lock for the whole block, so blocks are fully
// serialized. Repositories handed to fn must not be used after it returns.
func (s *Store) Atomic(ctx context.Context, fn func(r ports.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(repositories{pinned(work)}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type repositories struct {
	v view
}

func (r repositories) Users() ports.UserRepository         { return &userRepository{v: r.v} }
func (r repositories) RefreshTokens() ports.AuthRepository { return &authRepository{v: r.v} }
func (r repositories) Questions() ports.QuestionRepository { return &questionRepository{v: r.v} }
func (r repositories) Choices() ports.ChoiceRepository     { return &choiceRepository{v: r.v} }
func (r repositories) Votes() ports.VoteRepository         { return &voteRepository{v: r.v} }
