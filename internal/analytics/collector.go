package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/polkiloo/hubsai/internal/domain/model"
)

const (
	// StreamKey is the Redis stream receiving analytics events.
	StreamKey = "stream:hubsai_events"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000
)

// Collector ships a batch of events downstream.
type Collector interface {
	Publish(ctx context.Context, events []model.AnalyticsEvent) error
}

// RedisCollector appends events to a Redis stream.
type RedisCollector struct {
	redis  *redis.Client
	logger *slog.Logger
}

func NewRedisCollector(client *redis.Client, logger *slog.Logger) *RedisCollector {
	return &RedisCollector{redis: client, logger: logger.With("component", "analytics.redis")}
}

// Publish pipelines one XADD per event. Partial failure fails the batch.
func (c *RedisCollector) Publish(ctx context.Context, events []model.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	pipe := c.redis.Pipeline()
	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", e.ID, err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: StreamKey,
			MaxLen: MaxStreamLen,
			Approx: true,
			ID:     "*",
			Values: map[string]interface{}{
				"id":      e.ID,
				"event":   e.Event,
				"payload": string(data),
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("xadd: %w", err)
	}

	c.logger.Debug("events published", slog.Int("count", len(events)))
	return nil
}

// NewRedisClient parses url and verifies connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

// LogCollector writes events to the structured log.
type LogCollector struct {
	logger *slog.Logger
}

func NewLogCollector(logger *slog.Logger) *LogCollector {
	return &LogCollector{logger: logger.With("component", "analytics.log")}
}

func (c *LogCollector) Publish(ctx context.Context, events []model.AnalyticsEvent) error {
	for _, e := range events {
		c.logger.InfoContext(ctx, "analytics event",
			slog.String("event_id", e.ID),
			slog.String("event", e.Event),
			slog.String("user_id", e.UserID),
			slog.Time("timestamp", e.Timestamp),
			slog.Any("properties", e.Properties))
	}
	return nil
}
