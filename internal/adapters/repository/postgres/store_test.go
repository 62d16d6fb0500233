package postgres

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/questionpoll/internal/adapters/repository/postgres/migrations"
	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, connStr, err := setupPostgresContainer(ctx)
	if err != nil {
		log.Fatalf("failed to start postgres: %v", err)
	}

	testDB, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	if _, err := migrations.Up(ctx, testDB); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	code := m.Run()

	testDB.Close()
	if err := testcontainers.TerminateContainer(container); err != nil {
		log.Printf("failed to terminate container: %v", err)
	}
	os.Exit(code)
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}
	return pgContainer, connStr, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres container tests are skipped in short mode")
	}
	return NewStore(testDB)
}

func createUser(t *testing.T, s *Store) *domain.User {
	t.Helper()
	id := uuid.NewString()[:8]
	u := &domain.User{Username: "user_" + id, Email: id + "@example.com", PasswordHash: "hash"}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func createQuestion(t *testing.T, s *Store, owner *domain.User, texts ...string) *domain.Question {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	q := &domain.Question{
		ID:       uuid.New(),
		Title:    strings.Repeat("T", 40),
		Text:     "question text " + uuid.NewString(),
		OwnerID:  owner.ID,
		Created:  now,
		Modified: now,
	}
	q.Choices = domain.NewChoices(q.ID, texts, now)
	require.NoError(t, s.Atomic(ctx, func(r ports.Repositories) error {
		if err := r.Questions().Save(ctx, q); err != nil {
			return err
		}
		return r.Choices().SaveAll(ctx, q.Choices)
	}))
	return q
}

func TestUserRepository(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, s)

	got, err := s.Users().GetByEmail(ctx, strings.ToUpper(u.Email))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	err = s.Users().Create(ctx, &domain.User{Username: u.Username, Email: "x" + u.Email})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	err = s.Users().Create(ctx, &domain.User{Username: u.Username + "x", Email: u.Email})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	missing, err := s.Users().GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRefreshTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, s)

	token := &domain.RefreshToken{UserID: u.ID, TokenHash: uuid.NewString(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.RefreshTokens().StoreRefreshToken(ctx, token))
	assert.NotEqual(t, uuid.Nil, token.ID)
	assert.False(t, token.CreatedAt.IsZero())

	revoked, err := s.RefreshTokens().RevokeRefreshToken(ctx, token.TokenHash)
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = s.RefreshTokens().RevokeRefreshToken(ctx, token.TokenHash)
	require.NoError(t, err)
	assert.False(t, revoked)

	got, err := s.RefreshTokens().FindRefreshToken(ctx, token.TokenHash)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, token.ID, got.ID)
	assert.True(t, got.Revoked)

	missing, err := s.RefreshTokens().FindRefreshToken(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)

	orphan := &domain.RefreshToken{UserID: uuid.New(), TokenHash: uuid.NewString(), ExpiresAt: time.Now().Add(time.Hour)}
	err = s.RefreshTokens().StoreRefreshToken(ctx, orphan)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAtomicRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, s)
	boom := errors.New("boom")

	q := &domain.Question{ID: uuid.New(), Title: "t", Text: "x", OwnerID: owner.ID, Created: time.Now(), Modified: time.Now()}
	err := s.Atomic(ctx, func(r ports.Repositories) error {
		if err := r.Questions().Save(ctx, q); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Questions().GetByID(ctx, q.ID)
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
}

func TestChoiceConstraints(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, s)
	q := createQuestion(t, s, owner, "A", "B")

	err := s.Choices().SaveAll(ctx, domain.NewChoices(q.ID, []string{"A"}, time.Now()))
	assert.ErrorIs(t, err, domain.ErrDuplicateChoices)

	err = s.Choices().SaveAll(ctx, domain.NewChoices(uuid.New(), []string{"A"}, time.Now()))
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)

	choices, err := s.Choices().ListByQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, choices, 2)
	assert.Equal(t, "A", choices[0].Text)
	assert.Equal(t, "B", choices[1].Text)
}

func TestVotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, s)
	voter := createUser(t, s)
	q := createQuestion(t, s, owner, "A", "B")

	vote := domain.NewVote(voter.ID, q.Choices[0], time.Now().UTC())
	require.NoError(t, s.Votes().SaveVote(ctx, vote))

	err := s.Votes().SaveVote(ctx, domain.NewVote(voter.ID, q.Choices[1], time.Now().UTC()))
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	voted, err := s.Votes().HasVoted(ctx, q.ID, voter.ID)
	require.NoError(t, err)
	assert.True(t, voted)

	stats, err := s.Votes().CountByChoice(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.EqualValues(t, 1, stats[0].Votes)
	assert.EqualValues(t, 0, stats[1].Votes)

	n, err := s.Votes().DeleteByChoiceAndOwner(ctx, q.Choices[0].ID, voter.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.Votes().GetByQuestionAndOwner(ctx, q.ID, voter.ID)
	assert.ErrorIs(t, err, domain.ErrVoteNotFound)
}

func TestConcurrentVotesKeepOne(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, s)
	voter := createUser(t, s)
	q := createQuestion(t, s, owner, "A", "B")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vote := domain.NewVote(voter.ID, q.Choices[i], time.Now().UTC())
			errs[i] = s.Atomic(ctx, func(r ports.Repositories) error {
				return r.Votes().SaveVote(ctx, vote)
			})
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestDeleteQuestionCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, s)
	q := createQuestion(t, s, owner, "A", "B")
	require.NoError(t, s.Votes().SaveVote(ctx, domain.NewVote(owner.ID, q.Choices[0], time.Now().UTC())))

	require.NoError(t, s.Questions().Delete(ctx, q.ID))

	_, err := s.Choices().GetByID(ctx, q.Choices[0].ID)
	assert.ErrorIs(t, err, domain.ErrChoiceNotFound)
	voted, err := s.Votes().HasVoted(ctx, q.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, voted)

	assert.ErrorIs(t, s.Questions().Delete(ctx, q.ID), domain.ErrQuestionNotFound)
}

func TestFindQuestions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, s)
	first := createQuestion(t, s, owner, "A", "B")
	second := createQuestion(t, s, owner, "A", "B")

	results, count, err := s.Questions().Find(ctx, ports.FilterByOwner(strings.ToUpper(owner.Username)), ports.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, results, 2)
	assert.Equal(t, second.ID, results[0].ID)
	assert.Equal(t, owner.Username, results[0].OwnerUsername)

	filter := ports.FilterByTextSearch(first.Text[len(first.Text)-12:])
	results, count, err = s.Questions().Find(ctx, filter, ports.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, results, 1)
	assert.Equal(t, first.ID, results[0].ID)

	results, count, err = s.Questions().Find(ctx, ports.FilterByTextSearch("100%_sure"), ports.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, results)
}
