package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/hubsai/internal/domain/model"
)

// EventLog exposes the subset of the analytics log required by the flusher.
type EventLog interface {
	Load(ctx context.Context) ([]model.AnalyticsEvent, error)
	Remove(ctx context.Context, ids []string) (int, error)
}

// Publisher ships a batch of events downstream.
type Publisher interface {
	Publish(ctx context.Context, events []model.AnalyticsEvent) error
}

// EventFlusher periodically publishes the oldest events of the log and
// removes the published ones.
type EventFlusher struct {
	log       EventLog
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
	// flushMu serialises ticks with the final flush on Stop.
	flushMu sync.Mutex
}

// NewEventFlusher constructs the flusher.
func NewEventFlusher(log EventLog, publisher Publisher, interval time.Duration, batchSize int, logger *slog.Logger) *EventFlusher {
	if batchSize <= 0 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &EventFlusher{
		log:       log,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.With("component", "event_flusher"),
	}
}

// Start launches background flushing.
func (f *EventFlusher) Start(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	f.wg.Add(1)
	go f.run(runCtx)
}

// Stop halts the loop and flushes once more within ctx.
func (f *EventFlusher) Stop(ctx context.Context) {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.mu.Unlock()

	f.wg.Wait()
	if _, err := f.Flush(ctx); err != nil {
		f.logger.Warn("final flush failed", slog.String("error", err.Error()))
	}
}

func (f *EventFlusher) run(ctx context.Context) {
	defer f.wg.Done()
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := f.Flush(ctx); err != nil && ctx.Err() == nil {
				f.logger.Error("flush analytics events failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Flush publishes up to one batch and removes exactly the published events.
// Events stay in the log when publishing fails.
func (f *EventFlusher) Flush(ctx context.Context) (int, error) {
	f.flushMu.Lock()
	defer f.flushMu.Unlock()

	events, err := f.log.Load(ctx)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}
	if len(events) > f.batchSize {
		events = events[:f.batchSize]
	}

	if err := f.publisher.Publish(ctx, events); err != nil {
		return 0, err
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	removed, err := f.log.Remove(ctx, ids)
	if err != nil {
		return 0, err
	}
	f.logger.Debug("analytics events flushed", slog.Int("count", removed))
	return removed, nil
}
