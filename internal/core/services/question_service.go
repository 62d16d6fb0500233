package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type questionService struct {
	store ports.Store
	stats statistics
	now   func() time.Time
}

func NewQuestionService(store ports.Store, cache ports.StatisticsCache, logger *zap.Logger) ports.QuestionService {
	return &questionService{
		store: store,
		stats: newStatistics(cache, logger),
		now:   time.Now,
	}
}

func (s *questionService) Create(ctx context.Context, input ports.CreateQuestionInput, createdBy uuid.UUID) (*domain.Question, error) {
	if err := domain.ValidateQuestionTitle(input.Title); err != nil {
		return nil, err
	}
	if err := domain.ValidateQuestionText(input.Text); err != nil {
		return nil, err
	}
	if err := domain.ValidateChoiceSet(input.Choices); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	question := &domain.Question{
		ID:       uuid.New(),
		Title:    input.Title,
		Text:     input.Text,
		OwnerID:  createdBy,
		Created:  now,
		Modified: now,
	}
	question.Choices = domain.NewChoices(question.ID, input.Choices, now)

	err := s.store.Atomic(ctx, func(r ports.Repositories) error {
		if err := r.Questions().Save(ctx, question); err != nil {
			return err
		}
		return r.Choices().SaveAll(ctx, question.Choices)
	})
	if err != nil {
		return nil, err
	}

	return s.Retrieve(ctx, question.ID, true)
}

func (s *questionService) Retrieve(ctx context.Context, id uuid.UUID, withChoices bool) (*domain.Question, error) {
	question, err := s.store.Questions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !withChoices {
		return question, nil
	}

	choices, err := s.store.Choices().ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	question.Choices = choices
	return question, nil
}

func (s *questionService) Update(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID, input ports.UpdateQuestionInput) (*domain.Question, error) {
	err := s.store.Atomic(ctx, func(r ports.Repositories) error {
		question, err := r.Questions().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !question.IsOwnedBy(updatedBy) {
			return domain.ErrCannotEditQuestion
		}

		changed := false
		if input.Title != nil && *input.Title != question.Title {
			if err := domain.ValidateQuestionTitle(*input.Title); err != nil {
				return err
			}
			question.Title = *input.Title
			changed = true
		}
		if input.Text != nil && *input.Text != question.Text {
			if err := domain.ValidateQuestionText(*input.Text); err != nil {
				return err
			}
			question.Text = *input.Text
			changed = true
		}
		if !changed {
			return nil
		}

		question.Modified = s.now().UTC()
		return r.Questions().Update(ctx, question)
	})
	if err != nil {
		return nil, err
	}

	return s.Retrieve(ctx, id, true)
}

func (s *questionService) Destroy(ctx context.Context, id uuid.UUID, destroyedBy uuid.UUID) error {
	err := s.store.Atomic(ctx, func(r ports.Repositories) error {
		question, err := r.Questions().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !question.IsOwnedBy(destroyedBy) {
			return domain.ErrCannotDeleteQuestion
		}
		return r.Questions().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.stats.invalidate(ctx, id)
	return nil
}

func (s *questionService) List(ctx context.Context, filter ports.QuestionFilter, page ports.Page) (*ports.QuestionPage, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	page = page.Normalize()

	questions, count, err := s.store.Questions().Find(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	choices, err := s.store.Choices().ListByQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		q.Choices = choices[q.ID]
	}

	return &ports.QuestionPage{
		Count:    count,
		Page:     page.Number,
		PageSize: page.Size,
		Results:  questions,
	}, nil
}

func validateFilter(filter ports.QuestionFilter) error {
	if filter.Ordering != "" {
		field := strings.TrimPrefix(filter.Ordering, "-")
		valid := false
		for _, f := range ports.OrderingFields {
			if f == field {
				valid = true
				break
			}
		}
		if !valid {
			return domain.Validation(fmt.Sprintf("Invalid ordering %q.", filter.Ordering))
		}
	}
	if filter.CreatedAfter != nil && filter.CreatedBefore != nil && filter.CreatedAfter.After(*filter.CreatedBefore) {
		return domain.Validation("created_after must not be later than created_before.")
	}
	if filter.ModifiedAfter != nil && filter.ModifiedBefore != nil && filter.ModifiedAfter.After(*filter.ModifiedBefore) {
		return domain.Validation("modified_after must not be later than modified_before.")
	}
	return nil
}
