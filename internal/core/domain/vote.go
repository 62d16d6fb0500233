package domain

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	QuestionID uuid.UUID `json:"question_id"`
	ChoiceID   uuid.UUID `json:"choice_id"`
	DateVoted  time.Time `json:"date_voted"`
}

// NewVote builds a vote by userID for choice. The question reference is
// taken from the choice.
func NewVote(userID uuid.UUID, choice Choice, now time.Time) *Vote {
	return &Vote{
		ID:         uuid.New(),
		OwnerID:    userID,
		QuestionID: choice.QuestionID,
		ChoiceID:   choice.ID,
		DateVoted:  now,
	}
}

// Clean checks that the vote's question is the question of its choice.
func (v *Vote) Clean(choice Choice) error {
	if v.ChoiceID != choice.ID || v.QuestionID != choice.QuestionID {
		return ErrChoiceNotInQuestion
	}
	return nil
}

// ChoiceVotes is the number of votes cast for one choice.
type ChoiceVotes struct {
	ChoiceID uuid.UUID `json:"choice_id"`
	Text     string    `json:"text"`
	Votes    int64     `json:"votes"`
}
