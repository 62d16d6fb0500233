package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type ChoiceHandler struct {
	service ports.ChoiceService
	logger  *zap.Logger
}

func NewChoiceHandler(service ports.ChoiceService, logger *zap.Logger) *ChoiceHandler {
	return &ChoiceHandler{
		service: service,
		logger:  logger,
	}
}

// choicesRequest accepts either a list of texts or a single text.
type choicesRequest struct {
	Choices []string `json:"choices" validate:"required_without=Text"`
	Text    string   `json:"text"`
}

func (req choicesRequest) texts() []string {
	if req.Text != "" {
		return append(req.Choices, req.Text)
	}
	return req.Choices
}

type updateChoiceRequest struct {
	Text string `json:"text" validate:"required"`
}

func (h *ChoiceHandler) CreateChoices(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	questionID, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req choicesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	choices, err := h.service.Create(r.Context(), questionID, userID, req.texts())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, choices)
}

func (h *ChoiceHandler) ReplaceChoices(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	questionID, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req choicesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	choices, err := h.service.Replace(r.Context(), questionID, userID, req.texts())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, choices)
}

func (h *ChoiceHandler) ListChoices(w http.ResponseWriter, r *http.Request) {
	questionID, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	choices, err := h.service.List(r.Context(), questionID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, choices)
}

func (h *ChoiceHandler) GetChoice(w http.ResponseWriter, r *http.Request) {
	questionID, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	choiceID, err := urlUUID(r, "choiceID", domain.ErrChoiceNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	choice, err := h.service.Get(r.Context(), questionID, choiceID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, choice)
}

func (h *ChoiceHandler) UpdateChoice(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	questionID, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	choiceID, err := urlUUID(r, "choiceID", domain.ErrChoiceNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateChoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	choice, err := h.service.Update(r.Context(), questionID, choiceID, userID, req.Text)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, choice)
}

func (h *ChoiceHandler) DeleteChoice(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	questionID, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	choiceID, err := urlUUID(r, "choiceID", domain.ErrChoiceNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), questionID, choiceID, userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
