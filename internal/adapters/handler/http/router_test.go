package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
	"github.com/vncsmyrnk/questionpoll/internal/core/services"
)

var (
	title40 = strings.Repeat("T", 40)
	text20  = strings.Repeat("X", 20)
)

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token, clientID string) (*ports.TokenPayload, error) {
	if token != "good-google-token" {
		return nil, errors.New("bad token")
	}
	return &ports.TokenPayload{Email: "gopher@example.com", Name: "Gopher"}, nil
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()

	authService := services.NewAuthService(store.Users(), store.RefreshTokens(), stubVerifier{}, services.AuthConfig{
		JWTSecret:      []byte("test-secret"),
		GoogleClientID: "client-id",
	})
	cookies := CookieConfig{SameSite: http.SameSiteLaxMode, AccessTokenTTL: 15 * time.Minute, RefreshTokenTTL: time.Hour}

	h := Handlers{
		Auth:     NewAuthHandler(authService, "/", cookies, logger),
		User:     NewUserHandler(services.NewUserService(store.Users()), logger),
		Question: NewQuestionHandler(services.NewQuestionService(store, nil, logger), logger),
		Choice:   NewChoiceHandler(services.NewChoiceService(store, nil, logger), logger),
		Vote:     NewVoteHandler(services.NewVoteService(store, nil, logger), logger),
	}
	return &testServer{t: t, handler: NewHandler(h, authService, []string{"*"}, logger)}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// signUp registers a user and returns its access token.
func (s *testServer) signUp(username string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var tokens tokenResponse
	require.NoError(s.t, json.NewDecoder(rec.Body).Decode(&tokens))
	return tokens.AccessToken
}

func (s *testServer) createQuestion(token string, choices ...string) domain.Question {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/questions", token, map[string]any{
		"title":   title40,
		"text":    text20,
		"choices": choices,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var q domain.Question
	require.NoError(s.t, json.NewDecoder(rec.Body).Decode(&q))
	return q
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestVotingScenario(t *testing.T) {
	s := newTestServer(t)
	alice := s.signUp("alice")
	bob := s.signUp("bob")

	q := s.createQuestion(alice, "A", "B")
	require.Len(t, q.Choices, 2)
	assert.Equal(t, "alice", q.OwnerUsername)

	rec := s.do(http.MethodPost, "/api/votes/"+q.Choices[0].ID.String(), bob, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/questions/"+q.ID.String()+"/statistics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats []domain.ChoiceVotes
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	require.Len(t, stats, 2)
	assert.Equal(t, "A", stats[0].Text)
	assert.EqualValues(t, 1, stats[0].Votes)
	assert.EqualValues(t, 0, stats[1].Votes)

	rec = s.do(http.MethodPost, "/api/votes/"+q.Choices[1].ID.String(), bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You can only vote once per question.", decodeError(t, rec))

	rec = s.do(http.MethodGet, "/api/questions/"+q.ID.String()+"/my-vote", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/questions/"+q.ID.String(), bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, "/api/votes/"+q.Choices[0].ID.String(), bob, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodDelete, "/api/votes/"+q.Choices[0].ID.String(), bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You didn't vote for this choice.", decodeError(t, rec))

	rec = s.do(http.MethodDelete, "/api/questions/"+q.ID.String(), alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/questions/"+q.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMutationsRequireAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/questions", "", map[string]any{"title": title40, "text": text20, "choices": []string{"A", "B"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/questions", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/questions", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateQuestionValidation(t *testing.T) {
	s := newTestServer(t)
	alice := s.signUp("alice")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"text": text20, "choices": []string{"A", "B"}}},
		{"short title", map[string]any{"title": "short", "text": text20, "choices": []string{"A", "B"}}},
		{"one choice", map[string]any{"title": title40, "text": text20, "choices": []string{"A"}}},
		{"duplicate choices", map[string]any{"title": title40, "text": text20, "choices": []string{"A", "A"}}},
		{"unknown field", map[string]any{"title": title40, "text": text20, "choices": []string{"A", "B"}, "owner": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/questions", alice, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdateQuestion(t *testing.T) {
	s := newTestServer(t)
	alice := s.signUp("alice")
	bob := s.signUp("bob")
	q := s.createQuestion(alice, "A", "B")

	newText := strings.Repeat("Y", 25)
	rec := s.do(http.MethodPatch, "/api/questions/"+q.ID.String(), bob, map[string]any{"text": newText})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPatch, "/api/questions/"+q.ID.String(), alice, map[string]any{"text": newText})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated domain.Question
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, newText, updated.Text)
	assert.Equal(t, title40, updated.Title)
}

func TestChoiceRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.signUp("alice")
	bob := s.signUp("bob")
	q := s.createQuestion(alice, "A", "B")
	base := "/api/questions/" + q.ID.String() + "/choices/"

	rec := s.do(http.MethodPost, base, bob, map[string]any{"text": "C"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, base, alice, map[string]any{"text": "C"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, base, alice, map[string]any{"choices": []string{"A"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The choices must be different.", decodeError(t, rec))

	rec = s.do(http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var choices []domain.Choice
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&choices))
	require.Len(t, choices, 3)

	rec = s.do(http.MethodPatch, base+choices[2].ID.String(), alice, map[string]any{"text": "D"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodDelete, base+choices[2].ID.String(), alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodDelete, base+choices[1].ID.String(), alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/questions/"+q.ID.String()+"/choices", alice, map[string]any{"choices": []string{"X", "Y", "Z"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, base+choices[0].ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListQuestions(t *testing.T) {
	s := newTestServer(t)
	alice := s.signUp("alice")
	bob := s.signUp("bob")
	s.createQuestion(alice, "A", "B")
	s.createQuestion(alice, "A", "B")
	s.createQuestion(bob, "A", "B")

	rec := s.do(http.MethodGet, "/api/questions?owner=alice&page_size=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page ports.QuestionPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 2, page.Count)
	assert.Equal(t, 1, page.PageSize)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Choices, 2)

	rec = s.do(http.MethodGet, "/api/questions?ordering=-votes", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/questions?created_after=yesterday", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListQuestionsPageBounds(t *testing.T) {
	s := newTestServer(t)
	alice := s.signUp("alice")
	s.createQuestion(alice, "A", "B")

	rec := s.do(http.MethodGet, "/api/questions?page=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page ports.QuestionPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 1, page.Count)
	assert.Empty(t, page.Results)

	for _, raw := range []string{"1000000000000000000", "9223372036854775807", "abc"} {
		rec = s.do(http.MethodGet, "/api/questions?page="+raw, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, raw)
		assert.Equal(t, "Invalid page.", decodeError(t, rec))
	}
}

func TestGetMeAndCookieAuth(t *testing.T) {
	s := newTestServer(t)
	s.signUp("alice")

	rec := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "alice@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	s.handler.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())

	var user domain.User
	require.NoError(t, json.NewDecoder(me.Body).Decode(&user))
	assert.Equal(t, "alice", user.Username)

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/questions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownAPIRoot(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
