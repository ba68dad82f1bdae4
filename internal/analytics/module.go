package analytics

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/hubsai/internal/config"
	"github.com/polkiloo/hubsai/internal/domain/repository"
)

// Module provides the tracker and the configured collector.
var Module = fx.Provide(
	func(events repository.EventLogRepository, cfg *config.Config, logger *slog.Logger) *Tracker {
		return NewTracker(events, cfg.AnalyticsCapacity, logger)
	},
	newCollector,
)

func newCollector(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (Collector, error) {
	if cfg.RedisURL == "" {
		return NewLogCollector(logger), nil
	}
	client, err := NewRedisClient(context.Background(), cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
	return NewRedisCollector(client, logger), nil
}
