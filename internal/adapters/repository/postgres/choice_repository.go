package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

type choiceRepository struct {
	db querier
}

func (r *choiceRepository) SaveAll(ctx context.Context, choices []domain.Choice) error {
	query := `
		INSERT INTO choices (id, question_id, text, created_at)
		VALUES ($1, $2, $3, $4)
	`
	for _, c := range choices {
		_, err := r.db.ExecContext(ctx, query, c.ID, c.QuestionID, c.Text, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert choice: %w", translate(err))
		}
	}
	return nil
}

func (r *choiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Choice, error) {
	query := `SELECT id, question_id, text, created_at FROM choices WHERE id = $1`
	c := &domain.Choice{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.QuestionID, &c.Text, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChoiceNotFound
		}
		return nil, fmt.Errorf("failed to get choice: %w", err)
	}
	return c, nil
}

func (r *choiceRepository) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.Choice, error) {
	byQuestion, err := r.ListByQuestions(ctx, []uuid.UUID{questionID})
	if err != nil {
		return nil, err
	}
	choices := byQuestion[questionID]
	if choices == nil {
		choices = []domain.Choice{}
	}
	return choices, nil
}

func (r *choiceRepository) ListByQuestions(ctx context.Context, questionIDs []uuid.UUID) (map[uuid.UUID][]domain.Choice, error) {
	result := make(map[uuid.UUID][]domain.Choice, len(questionIDs))
	if len(questionIDs) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(questionIDs))
	for _, id := range questionIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT id, question_id, text, created_at
		FROM choices
		WHERE question_id = ANY($1::uuid[])
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list choices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		result[c.QuestionID] = append(result[c.QuestionID], c)
	}
	return result, rows.Err()
}

func (r *choiceRepository) UpdateText(ctx context.Context, id uuid.UUID, text string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE choices SET text = $2 WHERE id = $1`, id, text)
	if err != nil {
		return fmt.Errorf("failed to update choice: %w", translate(err))
	}
	return requireAffected(res, domain.ErrChoiceNotFound)
}

func (r *choiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM choices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete choice: %w", err)
	}
	return requireAffected(res, domain.ErrChoiceNotFound)
}

func (r *choiceRepository) DeleteByQuestion(ctx context.Context, questionID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM choices WHERE question_id = $1`, questionID)
	if err != nil {
		return fmt.Errorf("failed to delete choices: %w", err)
	}
	return nil
}
