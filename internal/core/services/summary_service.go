package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
)

const defaultSummaryWorkers = 8

type summaryService struct {
	store   ports.Store
	cache   ports.StatisticsCache
	logger  *zap.Logger
	workers int
}

func NewSummaryService(store ports.Store, cache ports.StatisticsCache, logger *zap.Logger, workers int) ports.SummaryService {
	if workers < 1 {
		workers = defaultSummaryWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &summaryService{
		store:   store,
		cache:   cache,
		logger:  logger,
		workers: workers,
	}
}

// RefreshAllStatistics recomputes the vote counts of every question and
// stores them in the statistics cache.
func (s *summaryService) RefreshAllStatistics(ctx context.Context) error {
	if s.cache == nil {
		return errors.New("statistics cache is not configured")
	}

	ids, err := s.store.Questions().ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch all questions: %w", err)
	}

	var skipped atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, id := range ids {
		g.Go(func() error {
			gen, err := s.cache.Generation(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to read statistics generation of question %s: %w", id, err)
			}
			stats, err := s.store.Votes().CountByChoice(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to summarize question %s: %w", id, err)
			}
			written, err := s.cache.Set(ctx, id, gen, stats)
			if err != nil {
				return fmt.Errorf("failed to cache statistics of question %s: %w", id, err)
			}
			if !written {
				skipped.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("statistics refreshed",
		zap.Int("questions", len(ids)),
		zap.Int64("changed_while_counting", skipped.Load()),
	)
	return nil
}
