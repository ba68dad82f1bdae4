package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type sweepCounter struct {
	calls atomic.Int32
}

func (s *sweepCounter) Sweep() int {
	s.calls.Add(1)
	return 1
}

func TestClientSweeperRunsUntilStopped(t *testing.T) {
	target := &sweepCounter{}
	sweeper := NewClientSweeper(target, 5*time.Millisecond, testLogger())
	sweeper.Start(context.Background())
	sweeper.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for target.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	sweeper.Stop()
	if target.calls.Load() < 2 {
		t.Fatalf("expected at least two sweeps, got %d", target.calls.Load())
	}

	after := target.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if target.calls.Load() != after {
		t.Fatal("expected no sweeps after stop")
	}
	sweeper.Stop()
}

func TestClientSweeperDefaultInterval(t *testing.T) {
	sweeper := NewClientSweeper(&sweepCounter{}, 0, testLogger())
	if sweeper.interval != time.Minute {
		t.Fatalf("expected default interval, got %v", sweeper.interval)
	}
}
