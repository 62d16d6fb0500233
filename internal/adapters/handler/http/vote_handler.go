package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
	logger  *zap.Logger
}

func NewVoteHandler(service ports.VoteService, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{
		service: service,
		logger:  logger,
	}
}

func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	choiceID, err := urlUUID(r, "choiceID", domain.ErrChoiceNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	vote, err := h.service.Vote(r.Context(), choiceID, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, vote)
}

func (h *VoteHandler) Unvote(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	choiceID, err := urlUUID(r, "choiceID", domain.ErrChoiceNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.Cancel(r.Context(), choiceID, userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VoteHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	questionID, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	stats, err := h.service.VotesPerQuestion(r.Context(), questionID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	questionID, err := urlUUID(r, "id", domain.ErrQuestionNotFound)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	vote, err := h.service.MyVote(r.Context(), questionID, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, vote)
}
