package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

type choiceRepository struct {
	v view
}

func (r *choiceRepository) SaveAll(ctx context.Context, choices []domain.Choice) error {
	st, done := r.v()
	defer done()

	seen := make(map[uuid.UUID]map[string]bool)
	for _, c := range choices {
		if _, ok := st.questions[c.QuestionID]; !ok {
			return domain.ErrQuestionNotFound
		}
		if seen[c.QuestionID] == nil {
			seen[c.QuestionID] = make(map[string]bool)
		}
		if seen[c.QuestionID][c.Text] || st.hasChoiceText(c.QuestionID, c.Text, uuid.Nil) {
			return domain.ErrDuplicateChoices
		}
		seen[c.QuestionID][c.Text] = true
	}

	for _, c := range choices {
		st.choices[c.ID] = c
	}
	return nil
}

func (r *choiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Choice, error) {
	st, done := r.v()
	defer done()

	c, ok := st.choices[id]
	if !ok {
		return nil, domain.ErrChoiceNotFound
	}
	return &c, nil
}

func (r *choiceRepository) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.Choice, error) {
	st, done := r.v()
	defer done()

	return st.choicesOf(questionID), nil
}

func (r *choiceRepository) ListByQuestions(ctx context.Context, questionIDs []uuid.UUID) (map[uuid.UUID][]domain.Choice, error) {
	st, done := r.v()
	defer done()

	result := make(map[uuid.UUID][]domain.Choice, len(questionIDs))
	for _, id := range questionIDs {
		if choices := st.choicesOf(id); len(choices) > 0 {
			result[id] = choices
		}
	}
	return result, nil
}

func (r *choiceRepository) UpdateText(ctx context.Context, id uuid.UUID, text string) error {
	st, done := r.v()
	defer done()

	c, ok := st.choices[id]
	if !ok {
		return domain.ErrChoiceNotFound
	}
	if st.hasChoiceText(c.QuestionID, text, id) {
		return domain.ErrDuplicateChoices
	}
	c.Text = text
	st.choices[id] = c
	return nil
}

func (r *choiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	st, done := r.v()
	defer done()

	if _, ok := st.choices[id]; !ok {
		return domain.ErrChoiceNotFound
	}
	st.deleteChoice(id)
	return nil
}

func (r *choiceRepository) DeleteByQuestion(ctx context.Context, questionID uuid.UUID) error {
	st, done := r.v()
	defer done()

	for id, c := range st.choices {
		if c.QuestionID == questionID {
			st.deleteChoice(id)
		}
	}
	return nil
}

func (s *state) choicesOf(questionID uuid.UUID) []domain.Choice {
	choices := make([]domain.Choice, 0)
	for _, c := range s.choices {
		if c.QuestionID == questionID {
			choices = append(choices, c)
		}
	}
	sort.Slice(choices, func(i, j int) bool {
		if choices[i].CreatedAt.Equal(choices[j].CreatedAt) {
			return choices[i].ID.String() < choices[j].ID.String()
		}
		return choices[i].CreatedAt.Before(choices[j].CreatedAt)
	})
	return choices
}

func (s *state) hasChoiceText(questionID uuid.UUID, text string, except uuid.UUID) bool {
	for id, c := range s.choices {
		if id != except && c.QuestionID == questionID && c.Text == text {
			return true
		}
	}
	return false
}

func (s *state) deleteChoice(id uuid.UUID) {
	delete(s.choices, id)
	for vid, v := range s.votes {
		if v.ChoiceID == id {
			delete(s.votes, vid)
		}
	}
}
