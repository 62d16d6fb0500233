package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

type voteRepository struct {
	v view
}

func (r *voteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	st, done := r.v()
	defer done()

	if _, ok := st.choices[vote.ChoiceID]; !ok {
		return domain.ErrChoiceNotFound
	}
	for _, v := range st.votes {
		if v.QuestionID == vote.QuestionID && v.OwnerID == vote.OwnerID {
			return domain.ErrAlreadyVoted
		}
	}
	st.votes[vote.ID] = *vote
	return nil
}

func (r *voteRepository) HasVoted(ctx context.Context, questionID, userID uuid.UUID) (bool, error) {
	st, done := r.v()
	defer done()

	_, ok := st.voteOf(questionID, userID)
	return ok, nil
}

func (r *voteRepository) GetByQuestionAndOwner(ctx context.Context, questionID, userID uuid.UUID) (*domain.Vote, error) {
	st, done := r.v()
	defer done()

	v, ok := st.voteOf(questionID, userID)
	if !ok {
		return nil, domain.ErrVoteNotFound
	}
	return &v, nil
}

func (r *voteRepository) DeleteByChoiceAndOwner(ctx context.Context, choiceID, userID uuid.UUID) (int64, error) {
	st, done := r.v()
	defer done()

	var deleted int64
	for id, v := range st.votes {
		if v.ChoiceID == choiceID && v.OwnerID == userID {
			delete(st.votes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *voteRepository) CountByChoice(ctx context.Context, questionID uuid.UUID) ([]domain.ChoiceVotes, error) {
	st, done := r.v()
	defer done()

	choices := st.choicesOf(questionID)
	stats := make([]domain.ChoiceVotes, 0, len(choices))
	for _, c := range choices {
		var votes int64
		for _, v := range st.votes {
			if v.ChoiceID == c.ID {
				votes++
			}
		}
		stats = append(stats, domain.ChoiceVotes{ChoiceID: c.ID, Text: c.Text, Votes: votes})
	}
	return stats, nil
}

func (s *state) voteOf(questionID, userID uuid.UUID) (domain.Vote, bool) {
	for _, v := range s.votes {
		if v.QuestionID == questionID && v.OwnerID == userID {
			return v, true
		}
	}
	return domain.Vote{}, false
}
