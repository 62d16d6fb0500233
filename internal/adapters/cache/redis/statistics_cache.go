// Package redis caches per-question vote statistics in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/core/domain"
)

const DefaultTTL = 5 * time.Minute

// generationTTL bounds how long an idle question keeps its invalidation
// counter. It only has to outlive a single read-count-write cycle.
const generationTTL = 24 * time.Hour

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Redis client connected", zap.String("addr", addr))
	return rdb, nil
}

type StatisticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatisticsCache(client *redis.Client, ttl time.Duration) *StatisticsCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &StatisticsCache{client: client, ttl: ttl}
}

func statisticsKey(questionID uuid.UUID) string {
	return "questions:" + questionID.String() + ":statistics"
}

func generationKey(questionID uuid.UUID) string {
	return "questions:" + questionID.String() + ":generation"
}

func (c *StatisticsCache) Get(ctx context.Context, questionID uuid.UUID) ([]domain.ChoiceVotes, bool, error) {
	data, err := c.client.Get(ctx, statisticsKey(questionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var stats []domain.ChoiceVotes
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, false, fmt.Errorf("decode statistics: %w", err)
	}
	return stats, true, nil
}

// Generation returns the question's invalidation counter, 0 when the
// question was never invalidated.
func (c *StatisticsCache) Generation(ctx context.Context, questionID uuid.UUID) (int64, error) {
	return generationOf(ctx, c.client, questionID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generationOf(ctx context.Context, cmd getter, questionID uuid.UUID) (int64, error) {
	gen, err := cmd.Get(ctx, generationKey(questionID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

// Set stores stats unless the question was invalidated after gen was read.
// The generation key is watched, so an Invalidate racing with the write
// aborts it.
func (c *StatisticsCache) Set(ctx context.Context, questionID uuid.UUID, gen int64, stats []domain.ChoiceVotes) (bool, error) {
	if stats == nil {
		stats = []domain.ChoiceVotes{}
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return false, fmt.Errorf("encode statistics: %w", err)
	}

	written := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generationOf(ctx, tx, questionID)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, statisticsKey(questionID), data, c.ttl)
			return nil
		})
		if err == nil {
			written = true
		}
		return err
	}, generationKey(questionID))
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis set: %w", err)
	}
	return written, nil
}

// Invalidate drops the cached value and bumps the generation in one
// transaction.
func (c *StatisticsCache) Invalidate(ctx context.Context, questionID uuid.UUID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(questionID))
		pipe.Expire(ctx, generationKey(questionID), generationTTL)
		pipe.Del(ctx, statisticsKey(questionID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}
