package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/questionpoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

var (
	title40 = strings.Repeat("T", 40)
	text20  = strings.Repeat("X", 20)
)

// fakeCache is an in-process ports.StatisticsCache that records calls.
type fakeCache struct {
	mu          sync.Mutex
	data        map[uuid.UUID][]domain.ChoiceVotes
	generations map[uuid.UUID]int64
	gets        int
	invalidated []uuid.UUID
	failWith    error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data:        make(map[uuid.UUID][]domain.ChoiceVotes),
		generations: make(map[uuid.UUID]int64),
	}
}

func (c *fakeCache) Get(ctx context.Context, id uuid.UUID) ([]domain.ChoiceVotes, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failWith != nil {
		return nil, false, c.failWith
	}
	stats, ok := c.data[id]
	return stats, ok, nil
}

func (c *fakeCache) Generation(ctx context.Context, id uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return 0, c.failWith
	}
	return c.generations[id], nil
}

func (c *fakeCache) Set(ctx context.Context, id uuid.UUID, gen int64, stats []domain.ChoiceVotes) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return false, c.failWith
	}
	if c.generations[id] != gen {
		return false, nil
	}
	c.data[id] = stats
	return true, nil
}

func (c *fakeCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, id)
	c.generations[id]++
	delete(c.data, id)
	return c.failWith
}

func (c *fakeCache) cached(id uuid.UUID) ([]domain.ChoiceVotes, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.data[id]
	return stats, ok
}

// afterCountStore runs hook once, right after the first CountByChoice
// returns.
type afterCountStore struct {
	ports.Store
	once sync.Once
	hook func()
}

func (s *afterCountStore) Votes() ports.VoteRepository {
	return afterCountVotes{VoteRepository: s.Store.Votes(), store: s}
}

type afterCountVotes struct {
	ports.VoteRepository
	store *afterCountStore
}

func (v afterCountVotes) CountByChoice(ctx context.Context, questionID uuid.UUID) ([]domain.ChoiceVotes, error) {
	stats, err := v.VoteRepository.CountByChoice(ctx, questionID)
	v.store.once.Do(v.store.hook)
	return stats, err
}

type fixture struct {
	store     *memory.Store
	cache     *fakeCache
	questions ports.QuestionService
	choices   ports.ChoiceService
	votes     ports.VoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	cache := newFakeCache()
	return &fixture{
		store:     store,
		cache:     cache,
		questions: NewQuestionService(store, cache, nil),
		choices:   NewChoiceService(store, cache, nil),
		votes:     NewVoteService(store, cache, nil),
	}
}

func (f *fixture) user(t *testing.T, username string) uuid.UUID {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u.ID
}

func (f *fixture) question(t *testing.T, owner uuid.UUID, choices ...string) *domain.Question {
	t.Helper()
	q, err := f.questions.Create(context.Background(), ports.CreateQuestionInput{
		Title:   title40,
		Text:    text20,
		Choices: choices,
	}, owner)
	require.NoError(t, err)
	return q
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}
