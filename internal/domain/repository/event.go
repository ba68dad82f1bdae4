package repository

import (
	"context"

	"github.com/polkiloo/hubsai/internal/domain/model"
)

// EventLogRepository persists the bounded analytics event log.
type EventLogRepository interface {
	Load(ctx context.Context) ([]model.AnalyticsEvent, error)
	// Append adds event and drops the oldest entries beyond capacity.
	Append(ctx context.Context, event model.AnalyticsEvent, capacity int) error
	// Remove deletes events with the given ids and reports how many were removed.
	Remove(ctx context.Context, ids []string) (int, error)
}
