package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweepable drops idle entries and reports how many were dropped.
type Sweepable interface {
	Sweep() int
}

// ClientSweeper evicts idle clients from memory on a fixed period.
type ClientSweeper struct {
	target   Sweepable
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewClientSweeper(target Sweepable, interval time.Duration, logger *slog.Logger) *ClientSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ClientSweeper{
		target:   target,
		interval: interval,
		logger:   logger.With("component", "client_sweeper"),
	}
}

func (s *ClientSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)
}

func (s *ClientSweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *ClientSweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.target.Sweep(); n > 0 {
				s.logger.Debug("idle clients evicted", slog.Int("count", n))
			}
		}
	}
}
