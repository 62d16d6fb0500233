package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

const (
	constraintSingleVote     = "single_vote_for_question"
	constraintChoiceText     = "unique_choice_text_per_question"
	constraintUsername       = "users_username_key"
	constraintEmail          = "users_email_key"
	constraintEmailLower     = "users_email_lower_idx"
	constraintVoteChoice     = "votes_choice_id_fkey"
	constraintChoiceQuestion = "choices_question_id_fkey"
	constraintQuestionOwner  = "questions_owner_id_fkey"
	constraintTokenUser      = "refresh_tokens_user_id_fkey"
)

// translate maps constraint violations onto domain errors. Anything else is
// returned unchanged.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		switch pqErr.Constraint {
		case constraintSingleVote:
			return domain.ErrAlreadyVoted
		case constraintChoiceText:
			return domain.ErrDuplicateChoices
		case constraintUsername:
			return domain.ErrUsernameTaken
		case constraintEmail, constraintEmailLower:
			return domain.ErrEmailTaken
		}
	case pgerrcode.ForeignKeyViolation:
		switch pqErr.Constraint {
		case constraintVoteChoice:
			return domain.ErrChoiceNotFound
		case constraintChoiceQuestion:
			return domain.ErrQuestionNotFound
		case constraintQuestionOwner, constraintTokenUser:
			return domain.ErrUserNotFound
		}
	}
	return err
}
