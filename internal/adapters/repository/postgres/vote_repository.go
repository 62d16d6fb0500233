package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

type voteRepository struct {
	db querier
}

func (r *voteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (id, owner_id, question_id, choice_id, date_voted)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, vote.ID, vote.OwnerID, vote.QuestionID, vote.ChoiceID, vote.DateVoted)
	if err != nil {
		return fmt.Errorf("failed to save vote: %w", translate(err))
	}
	return nil
}

func (r *voteRepository) HasVoted(ctx context.Context, questionID, userID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM votes WHERE question_id = $1 AND owner_id = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, questionID, userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}

func (r *voteRepository) GetByQuestionAndOwner(ctx context.Context, questionID, userID uuid.UUID) (*domain.Vote, error) {
	query := `
		SELECT id, owner_id, question_id, choice_id, date_voted
		FROM votes
		WHERE question_id = $1 AND owner_id = $2
	`
	v := &domain.Vote{}
	err := r.db.QueryRowContext(ctx, query, questionID, userID).Scan(&v.ID, &v.OwnerID, &v.QuestionID, &v.ChoiceID, &v.DateVoted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return v, nil
}

func (r *voteRepository) DeleteByChoiceAndOwner(ctx context.Context, choiceID, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE choice_id = $1 AND owner_id = $2`, choiceID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete vote: %w", err)
	}
	return res.RowsAffected()
}

func (r *voteRepository) CountByChoice(ctx context.Context, questionID uuid.UUID) ([]domain.ChoiceVotes, error) {
	query := `
		SELECT c.id, c.text, COUNT(v.id)
		FROM choices c
		LEFT JOIN votes v ON v.choice_id = c.id
		WHERE c.question_id = $1
		GROUP BY c.id, c.text, c.created_at
		ORDER BY c.created_at, c.id
	`
	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	stats := make([]domain.ChoiceVotes, 0)
	for rows.Next() {
		var s domain.ChoiceVotes
		if err := rows.Scan(&s.ChoiceID, &s.Text, &s.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
