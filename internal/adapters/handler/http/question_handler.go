package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type QuestionHandler struct {
	service ports.QuestionService
	logger  *zap.Logger
}

func NewQuestionHandler(service ports.QuestionService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		logger:  logger,
	}
}

type createQuestionRequest struct {
	Title   string   `json:"title" validate:"required"`
	Text    string   `json:"text" validate:"required"`
	Choices []string `json:"choices" validate:"required"`
}

type updateQuestionRequest struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())

	var req createQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	input := ports.CreateQuestionInput{
		Title:   req.Title,
		Text:    req.Text,
		Choices: req.Choices,
	}
	question, err := h.service.Create(r.Context(), input, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	withChoices := r.URL.Query().Get("choices") != "false"
	question, err := h.service.Retrieve(r.Context(), id, withChoices)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	id, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	question, err := h.service.Update(r.Context(), id, userID, ports.UpdateQuestionInput{Title: req.Title, Text: req.Text})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	id, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.Destroy(r.Context(), id, userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.service.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseListQuery(r *http.Request) (ports.QuestionFilter, ports.Page, error) {
	q := r.URL.Query()
	filter := ports.QuestionFilter{
		OwnerUsername: q.Get("owner"),
		Search:        q.Get("search"),
		Ordering:      q.Get("ordering"),
	}

	dates := []struct {
		param string
		dst   **time.Time
	}{
		{"created_after", &filter.CreatedAfter},
		{"created_before", &filter.CreatedBefore},
		{"modified_after", &filter.ModifiedAfter},
		{"modified_before", &filter.ModifiedBefore},
	}
	for _, d := range dates {
		raw := q.Get(d.param)
		if raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			return filter, ports.Page{}, domain.Validation(d.param + ": Enter a valid date/time.")
		}
		*d.dst = &t
	}

	var page ports.Page
	var err error
	if page.Number, err = queryInt(q.Get("page"), 1); err != nil || page.Number > ports.MaxPageNumber {
		return filter, page, domain.NotFound("Invalid page.")
	}
	if page.Size, err = queryInt(q.Get("page_size"), ports.DefaultPageSize); err != nil {
		return filter, page, domain.Validation("page_size: A valid integer is required.")
	}
	return filter, page, nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// urlUUID parses a path parameter. A malformed id can't name an existing
// resource, so it is reported as notFound.
func urlUUID(r *http.Request, param string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
