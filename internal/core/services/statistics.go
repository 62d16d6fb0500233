package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

// statistics wraps the optional statistics cache. Cache failures never fail
// the calling operation; they are logged and the database stays the source
// of truth.
type statistics struct {
	cache  ports.StatisticsCache
	logger *zap.Logger
}

func newStatistics(cache ports.StatisticsCache, logger *zap.Logger) statistics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return statistics{cache: cache, logger: logger}
}

func (s statistics) get(ctx context.Context, questionID uuid.UUID) ([]domain.ChoiceVotes, bool) {
	if s.cache == nil {
		return nil, false
	}
	stats, ok, err := s.cache.Get(ctx, questionID)
	if err != nil {
		s.logger.Warn("statistics cache read failed", zap.Stringer("question_id", questionID), zap.Error(err))
		return nil, false
	}
	return stats, ok
}

// generation reads the question's cache generation. ok is false when the
// result must not be cached.
func (s statistics) generation(ctx context.Context, questionID uuid.UUID) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx, questionID)
	if err != nil {
		s.logger.Warn("statistics cache generation read failed", zap.Stringer("question_id", questionID), zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s statistics) set(ctx context.Context, questionID uuid.UUID, gen int64, stats []domain.ChoiceVotes) {
	if s.cache == nil {
		return
	}
	written, err := s.cache.Set(ctx, questionID, gen, stats)
	if err != nil {
		s.logger.Warn("statistics cache write failed", zap.Stringer("question_id", questionID), zap.Error(err))
		return
	}
	if !written {
		s.logger.Debug("statistics changed while counting, not cached", zap.Stringer("question_id", questionID))
	}
}

func (s statistics) invalidate(ctx context.Context, questionID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, questionID); err != nil {
		s.logger.Warn("statistics cache invalidation failed", zap.Stringer("question_id", questionID), zap.Error(err))
	}
}
