package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

type ChoiceRepository interface {
	SaveAll(ctx context.Context, choices []domain.Choice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Choice, error)
	ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.Choice, error)
	ListByQuestions(ctx context.Context, questionIDs []uuid.UUID) (map[uuid.UUID][]domain.Choice, error)
	UpdateText(ctx context.Context, id uuid.UUID, text string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByQuestion(ctx context.Context, questionID uuid.UUID) error
}

type ChoiceService interface {
	Create(ctx context.Context, questionID, actor uuid.UUID, texts []string) ([]domain.Choice, error)
	Replace(ctx context.Context, questionID, actor uuid.UUID, texts []string) ([]domain.Choice, error)
	Update(ctx context.Context, questionID, choiceID, actor uuid.UUID, text string) (*domain.Choice, error)
	Delete(ctx context.Context, questionID, choiceID, actor uuid.UUID) error
	List(ctx context.Context, questionID uuid.UUID) ([]domain.Choice, error)
	Get(ctx context.Context, questionID, choiceID uuid.UUID) (*domain.Choice, error)
}
