package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

// StatisticsCache stores VotesPerQuestion results. A miss is reported with
// ok == false and a nil error.
//
// Every Invalidate bumps the question's generation. Writers read Generation
// before counting and pass it to Set, which drops the write when an
// invalidation happened in between.
type StatisticsCache interface {
	Get(ctx context.Context, questionID uuid.UUID) (stats []domain.ChoiceVotes, ok bool, err error)
	Generation(ctx context.Context, questionID uuid.UUID) (int64, error)
	Set(ctx context.Context, questionID uuid.UUID, gen int64, stats []domain.ChoiceVotes) (written bool, err error)
	Invalidate(ctx context.Context, questionID uuid.UUID) error
}

type SummaryService interface {
	RefreshAllStatistics(ctx context.Context) error
}
