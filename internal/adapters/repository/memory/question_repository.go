package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type questionRepository struct {
	v view
}

func (r *questionRepository) Save(ctx context.Context, question *domain.Question) error {
	st, done := r.v()
	defer done()

	if _, ok := st.users[question.OwnerID]; !ok {
		return domain.ErrUserNotFound
	}
	q := *question
	q.Choices = nil
	q.OwnerUsername = ""
	st.questions[q.ID] = q
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	st, done := r.v()
	defer done()

	q, ok := st.questions[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	return st.withOwner(q), nil
}

// GetForUpdate needs no row lock here: Atomic already holds the store lock.
func (r *questionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	return r.GetByID(ctx, id)
}

func (r *questionRepository) Update(ctx context.Context, question *domain.Question) error {
	st, done := r.v()
	defer done()

	q, ok := st.questions[question.ID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	q.Title = question.Title
	q.Text = question.Text
	q.Modified = question.Modified
	st.questions[q.ID] = q
	return nil
}

func (r *questionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	st, done := r.v()
	defer done()

	if _, ok := st.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(st.questions, id)
	for cid, c := range st.choices {
		if c.QuestionID == id {
			delete(st.choices, cid)
		}
	}
	for vid, v := range st.votes {
		if v.QuestionID == id {
			delete(st.votes, vid)
		}
	}
	return nil
}

func (r *questionRepository) Find(ctx context.Context, filter ports.QuestionFilter, page ports.Page) ([]*domain.Question, int, error) {
	st, done := r.v()
	defer done()

	matched := make([]*domain.Question, 0)
	for _, q := range st.questions {
		question := st.withOwner(q)
		if matches(question, filter) {
			matched = append(matched, question)
		}
	}

	ordering := filter.Ordering
	if ordering == "" {
		ordering = ports.DefaultOrdering
	}
	sortQuestions(matched, ordering)

	count := len(matched)
	start := page.Offset()
	if start < 0 {
		start = 0
	}
	if start > count {
		start = count
	}
	end := start + page.Size
	if end > count || end < start {
		end = count
	}
	return matched[start:end], count, nil
}

func (r *questionRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	st, done := r.v()
	defer done()

	ids := make([]uuid.UUID, 0, len(st.questions))
	for id := range st.questions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *state) withOwner(q domain.Question) *domain.Question {
	if owner, ok := s.users[q.OwnerID]; ok {
		q.OwnerUsername = owner.Username
	}
	return &q
}

func matches(q *domain.Question, f ports.QuestionFilter) bool {
	if f.OwnerUsername != "" && !strings.EqualFold(q.OwnerUsername, f.OwnerUsername) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(q.Title), needle) &&
			!strings.Contains(strings.ToLower(q.Text), needle) &&
			!strings.Contains(strings.ToLower(q.OwnerUsername), needle) {
			return false
		}
	}
	if f.CreatedAfter != nil && q.Created.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && q.Created.After(*f.CreatedBefore) {
		return false
	}
	if f.ModifiedAfter != nil && q.Modified.Before(*f.ModifiedAfter) {
		return false
	}
	if f.ModifiedBefore != nil && q.Modified.After(*f.ModifiedBefore) {
		return false
	}
	return true
}

func sortQuestions(questions []*domain.Question, ordering string) {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")

	less := func(a, b *domain.Question) int {
		switch field {
		case "title":
			return strings.Compare(a.Title, b.Title)
		case "text":
			return strings.Compare(a.Text, b.Text)
		case "owner":
			return strings.Compare(a.OwnerUsername, b.OwnerUsername)
		case "modified":
			return a.Modified.Compare(b.Modified)
		default:
			return a.Created.Compare(b.Created)
		}
	}

	sort.SliceStable(questions, func(i, j int) bool {
		c := less(questions[i], questions[j])
		if c == 0 {
			return questions[i].ID.String() < questions[j].ID.String()
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}
