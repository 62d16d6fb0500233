package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

type VoteRepository interface {
	SaveVote(ctx context.Context, vote *domain.Vote) error
	HasVoted(ctx context.Context, questionID, userID uuid.UUID) (bool, error)
	GetByQuestionAndOwner(ctx context.Context, questionID, userID uuid.UUID) (*domain.Vote, error)
	// DeleteByChoiceAndOwner returns the number of deleted votes.
	DeleteByChoiceAndOwner(ctx context.Context, choiceID, userID uuid.UUID) (int64, error)
	CountByChoice(ctx context.Context, questionID uuid.UUID) ([]domain.ChoiceVotes, error)
}

type VoteService interface {
	Vote(ctx context.Context, choiceID, userID uuid.UUID) (*domain.Vote, error)
	Cancel(ctx context.Context, choiceID, userID uuid.UUID) error
	VotesPerQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.ChoiceVotes, error)
	MyVote(ctx context.Context, questionID, userID uuid.UUID) (*domain.Vote, error)
}
