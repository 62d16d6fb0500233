package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

type questionRepository struct {
	db querier
}

const selectQuestion = `
	SELECT q.id, q.title, q.text, q.owner_id, u.username, q.created, q.modified
	FROM questions q
	JOIN users u ON u.id = q.owner_id
`

var orderColumns = map[string]string{
	"title":    "q.title",
	"text":     "q.text",
	"owner":    "u.username",
	"created":  "q.created",
	"modified": "q.modified",
}

func (r *questionRepository) Save(ctx context.Context, question *domain.Question) error {
	query := `
		INSERT INTO questions (id, title, text, owner_id, created, modified)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, question.ID, question.Title, question.Text, question.OwnerID, question.Created, question.Modified)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", translate(err))
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	return r.getOne(ctx, selectQuestion+` WHERE q.id = $1`, id)
}

func (r *questionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	return r.getOne(ctx, selectQuestion+` WHERE q.id = $1 FOR UPDATE OF q`, id)
}

func (r *questionRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Question, error) {
	q := &domain.Question{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&q.ID, &q.Title, &q.Text, &q.OwnerID, &q.OwnerUsername, &q.Created, &q.Modified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

func (r *questionRepository) Update(ctx context.Context, question *domain.Question) error {
	query := `UPDATE questions SET title = $2, text = $3, modified = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, question.ID, question.Title, question.Text, question.Modified)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return requireAffected(res, domain.ErrQuestionNotFound)
}

func (r *questionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return requireAffected(res, domain.ErrQuestionNotFound)
}

func (r *questionRepository) Find(ctx context.Context, filter ports.QuestionFilter, page ports.Page) ([]*domain.Question, int, error) {
	where, args := filterClause(filter)

	var count int
	countQuery := `SELECT COUNT(*) FROM questions q JOIN users u ON u.id = q.owner_id` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		selectQuestion, where, orderClause(filter.Ordering), len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]*domain.Question, 0, page.Size)
	for rows.Next() {
		q := &domain.Question{}
		if err := rows.Scan(&q.ID, &q.Title, &q.Text, &q.OwnerID, &q.OwnerUsername, &q.Created, &q.Modified); err != nil {
			return nil, 0, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return questions, count, nil
}

func (r *questionRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM questions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list question ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func filterClause(f ports.QuestionFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.OwnerUsername != "" {
		add("lower(u.username) = lower($%d)", f.OwnerUsername)
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(q.title ILIKE $%[1]d OR q.text ILIKE $%[1]d OR u.username ILIKE $%[1]d)", n))
	}
	if f.CreatedAfter != nil {
		add("q.created >= $%d", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		add("q.created <= $%d", *f.CreatedBefore)
	}
	if f.ModifiedAfter != nil {
		add("q.modified >= $%d", *f.ModifiedAfter)
	}
	if f.ModifiedBefore != nil {
		add("q.modified <= $%d", *f.ModifiedBefore)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(ordering string) string {
	if ordering == "" {
		ordering = ports.DefaultOrdering
	}
	dir := "ASC"
	if strings.HasPrefix(ordering, "-") {
		dir = "DESC"
	}
	column, ok := orderColumns[strings.TrimPrefix(ordering, "-")]
	if !ok {
		column = orderColumns["created"]
	}
	return fmt.Sprintf("%s %s, q.id", column, dir)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
