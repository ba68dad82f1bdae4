package local

import (
	"context"

	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/domain/repository"
)

type eventLogRecord struct {
	Events []model.AnalyticsEvent `json:"events"`
}

type eventLogRepository struct {
	kv    repository.KeyValueStore
	codec codec[eventLogRecord]
}

func (r *eventLogRepository) Load(ctx context.Context) ([]model.AnalyticsEvent, error) {
	raw, err := r.kv.Get(ctx, eventLogKey)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceErr("get", eventLogKey, err)
	}
	rec, err := r.codec.decode(raw)
	if err != nil {
		return nil, persistenceErr("decode", eventLogKey, err)
	}
	return rec.Events, nil
}

// Append keeps at most capacity events, dropping the oldest. A log that
// cannot be decoded is replaced.
func (r *eventLogRepository) Append(ctx context.Context, event model.AnalyticsEvent, capacity int) error {
	err := r.kv.Update(ctx, eventLogKey, func(current []byte) ([]byte, error) {
		var events []model.AnalyticsEvent
		if current != nil {
			if rec, err := r.codec.decode(current); err == nil {
				events = rec.Events
			}
		}
		events = append(events, event)
		if capacity > 0 && len(events) > capacity {
			events = append([]model.AnalyticsEvent(nil), events[len(events)-capacity:]...)
		}
		return r.codec.encode(eventLogRecord{Events: events})
	})
	return persistenceErr("append", eventLogKey, err)
}

func (r *eventLogRepository) Remove(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	removed := 0
	err := r.kv.Update(ctx, eventLogKey, func(current []byte) ([]byte, error) {
		removed = 0
		if current == nil {
			return r.codec.encode(eventLogRecord{})
		}
		rec, err := r.codec.decode(current)
		if err != nil {
			return nil, err
		}
		kept := rec.Events[:0]
		for _, e := range rec.Events {
			if _, ok := drop[e.ID]; ok {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		return r.codec.encode(eventLogRecord{Events: kept})
	})
	if err != nil {
		return 0, persistenceErr("remove", eventLogKey, err)
	}
	return removed, nil
}
