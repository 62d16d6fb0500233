package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type voteService struct {
	store ports.Store
	stats statistics
	now   func() time.Time
}

func NewVoteService(store ports.Store, cache ports.StatisticsCache, logger *zap.Logger) ports.VoteService {
	return &voteService{
		store: store,
		stats: newStatistics(cache, logger),
		now:   time.Now,
	}
}

// Vote records userID's vote for choiceID. A user votes at most once per
// question; the repository's uniqueness constraint settles concurrent
// attempts and reports the loser with domain.ErrAlreadyVoted as well.
func (s *voteService) Vote(ctx context.Context, choiceID, userID uuid.UUID) (*domain.Vote, error) {
	choice, err := s.store.Choices().GetByID(ctx, choiceID)
	if err != nil {
		return nil, err
	}

	vote := domain.NewVote(userID, *choice, s.now().UTC())
	if err := vote.Clean(*choice); err != nil {
		return nil, err
	}

	err = s.store.Atomic(ctx, func(r ports.Repositories) error {
		hasVoted, err := r.Votes().HasVoted(ctx, vote.QuestionID, userID)
		if err != nil {
			return err
		}
		if hasVoted {
			return domain.ErrAlreadyVoted
		}
		return r.Votes().SaveVote(ctx, vote)
	})
	if err != nil {
		return nil, err
	}

	s.stats.invalidate(ctx, vote.QuestionID)
	return vote, nil
}

func (s *voteService) Cancel(ctx context.Context, choiceID, userID uuid.UUID) error {
	choice, err := s.store.Choices().GetByID(ctx, choiceID)
	if err != nil {
		return err
	}

	deleted, err := s.store.Votes().DeleteByChoiceAndOwner(ctx, choice.ID, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrDidNotVote
	}

	s.stats.invalidate(ctx, choice.QuestionID)
	return nil
}

func (s *voteService) VotesPerQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.ChoiceVotes, error) {
	if _, err := s.store.Questions().GetByID(ctx, questionID); err != nil {
		return nil, err
	}

	if stats, ok := s.stats.get(ctx, questionID); ok {
		return stats, nil
	}

	gen, cacheable := s.stats.generation(ctx, questionID)
	stats, err := s.store.Votes().CountByChoice(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.stats.set(ctx, questionID, gen, stats)
	}
	return stats, nil
}

func (s *voteService) MyVote(ctx context.Context, questionID, userID uuid.UUID) (*domain.Vote, error) {
	if _, err := s.store.Questions().GetByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.store.Votes().GetByQuestionAndOwner(ctx, questionID, userID)
}
