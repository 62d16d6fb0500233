package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

var errNoChoicesGiven = domain.Validation("At least one choice is required.")

type choiceService struct {
	store ports.Store
	stats statistics
	now   func() time.Time
}

func NewChoiceService(store ports.Store, cache ports.StatisticsCache, logger *zap.Logger) ports.ChoiceService {
	return &choiceService{
		store: store,
		stats: newStatistics(cache, logger),
		now:   time.Now,
	}
}

// ownedQuestion locks the question so concurrent choice mutations of the
// same question are serialized, then checks actor owns it.
func ownedQuestion(ctx context.Context, r ports.Repositories, questionID, actor uuid.UUID) (*domain.Question, error) {
	question, err := r.Questions().GetForUpdate(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !question.IsOwnedBy(actor) {
		return nil, domain.PermissionDenied("You can't change the choices of this question.")
	}
	return question, nil
}

func (s *choiceService) Create(ctx context.Context, questionID, actor uuid.UUID, texts []string) ([]domain.Choice, error) {
	if len(texts) == 0 {
		return nil, errNoChoicesGiven
	}

	var created []domain.Choice
	err := s.store.Atomic(ctx, func(r ports.Repositories) error {
		question, err := ownedQuestion(ctx, r, questionID, actor)
		if err != nil {
			return err
		}
		existing, err := r.Choices().ListByQuestion(ctx, question.ID)
		if err != nil {
			return err
		}

		merged := make([]string, 0, len(existing)+len(texts))
		for _, c := range existing {
			merged = append(merged, c.Text)
		}
		merged = append(merged, texts...)
		if err := domain.ValidateChoiceSet(merged); err != nil {
			return err
		}

		created = domain.NewChoices(question.ID, texts, s.now().UTC())
		return r.Choices().SaveAll(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.stats.invalidate(ctx, questionID)
	return created, nil
}

func (s *choiceService) Replace(ctx context.Context, questionID, actor uuid.UUID, texts []string) ([]domain.Choice, error) {
	if err := domain.ValidateChoiceSet(texts); err != nil {
		return nil, err
	}

	var created []domain.Choice
	err := s.store.Atomic(ctx, func(r ports.Repositories) error {
		question, err := ownedQuestion(ctx, r, questionID, actor)
		if err != nil {
			return err
		}
		if err := r.Choices().DeleteByQuestion(ctx, question.ID); err != nil {
			return err
		}
		created = domain.NewChoices(question.ID, texts, s.now().UTC())
		return r.Choices().SaveAll(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.stats.invalidate(ctx, questionID)
	return created, nil
}

func (s *choiceService) Update(ctx context.Context, questionID, choiceID, actor uuid.UUID, text string) (*domain.Choice, error) {
	if err := domain.ValidateChoiceText(text); err != nil {
		return nil, err
	}

	var updated *domain.Choice
	err := s.store.Atomic(ctx, func(r ports.Repositories) error {
		question, err := ownedQuestion(ctx, r, questionID, actor)
		if err != nil {
			return err
		}
		choices, err := r.Choices().ListByQuestion(ctx, question.ID)
		if err != nil {
			return err
		}

		var target *domain.Choice
		for i := range choices {
			if choices[i].ID == choiceID {
				target = &choices[i]
				break
			}
		}
		if target == nil {
			return domain.ErrChoiceNotFound
		}
		for _, c := range choices {
			if c.ID != choiceID && c.Text == text {
				return domain.ErrDuplicateChoices
			}
		}

		updated = target
		if target.Text == text {
			return nil
		}
		target.Text = text
		return r.Choices().UpdateText(ctx, target.ID, text)
	})
	if err != nil {
		return nil, err
	}

	s.stats.invalidate(ctx, questionID)
	return updated, nil
}

func (s *choiceService) Delete(ctx context.Context, questionID, choiceID, actor uuid.UUID) error {
	err := s.store.Atomic(ctx, func(r ports.Repositories) error {
		question, err := ownedQuestion(ctx, r, questionID, actor)
		if err != nil {
			return err
		}
		choices, err := r.Choices().ListByQuestion(ctx, question.ID)
		if err != nil {
			return err
		}

		found := false
		for _, c := range choices {
			if c.ID == choiceID {
				found = true
				break
			}
		}
		if !found {
			return domain.ErrChoiceNotFound
		}
		if len(choices)-1 < domain.ChoicesMinNumber {
			return domain.ErrCannotDeleteChoice
		}
		return r.Choices().Delete(ctx, choiceID)
	})
	if err != nil {
		return err
	}

	s.stats.invalidate(ctx, questionID)
	return nil
}

func (s *choiceService) List(ctx context.Context, questionID uuid.UUID) ([]domain.Choice, error) {
	if _, err := s.store.Questions().GetByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.store.Choices().ListByQuestion(ctx, questionID)
}

func (s *choiceService) Get(ctx context.Context, questionID, choiceID uuid.UUID) (*domain.Choice, error) {
	choice, err := s.store.Choices().GetByID(ctx, choiceID)
	if err != nil {
		return nil, err
	}
	if choice.QuestionID != questionID {
		return nil, domain.ErrChoiceNotFound
	}
	return choice, nil
}
