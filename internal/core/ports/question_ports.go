package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

type QuestionRepository interface {
	Save(ctx context.Context, question *domain.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	// GetForUpdate is GetByID that also locks the row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	Update(ctx context.Context, question *domain.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, filter QuestionFilter, page Page) ([]*domain.Question, int, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
	DefaultOrdering = "-created"

	// MaxPageNumber keeps Offset well inside the int range.
	MaxPageNumber = 1 << 20
)

// OrderingFields are the accepted QuestionFilter.Ordering values, without
// the optional "-" prefix.
var OrderingFields = []string{"title", "text", "owner", "created", "modified"}

type QuestionFilter struct {
	// OwnerUsername matches the owner's username case-insensitively.
	OwnerUsername  string
	Search         string
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	ModifiedAfter  *time.Time
	ModifiedBefore *time.Time
	Ordering       string
}

func FilterByOwner(username string) QuestionFilter {
	return QuestionFilter{OwnerUsername: username}
}

func FilterByTextSearch(query string) QuestionFilter {
	return QuestionFilter{Search: query}
}

func FilterByDateRange(after, before *time.Time) QuestionFilter {
	return QuestionFilter{CreatedAfter: after, CreatedBefore: before}
}

type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page into valid bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

type CreateQuestionInput struct {
	Title   string
	Text    string
	Choices []string
}

// UpdateQuestionInput holds the fields to change; nil fields are left alone.
type UpdateQuestionInput struct {
	Title *string
	Text  *string
}

type QuestionPage struct {
	Count    int                `json:"count"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Results  []*domain.Question `json:"results"`
}

type QuestionService interface {
	Create(ctx context.Context, input CreateQuestionInput, createdBy uuid.UUID) (*domain.Question, error)
	Retrieve(ctx context.Context, id uuid.UUID, withChoices bool) (*domain.Question, error)
	Update(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID, input UpdateQuestionInput) (*domain.Question, error)
	Destroy(ctx context.Context, id uuid.UUID, destroyedBy uuid.UUID) error
	List(ctx context.Context, filter QuestionFilter, page Page) (*QuestionPage, error)
}
