package stackmate

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Scheduler bounds the number of in-flight requests against one logical
// remote service and enforces a minimum wall-clock gap between request
// starts. Callers blocked on a full scheduler are admitted in FIFO order.
//
// One Scheduler instance guards one remote target; instances for different
// targets share no state. The remote service is the resource being protected,
// so every caller hitting the same target must go through the same instance.
type Scheduler struct {
	name    string
	slots   chan struct{}
	limiter *rate.Limiter
}

// NewScheduler creates a scheduler admitting at most maxConcurrent tasks with
// at least minGap between consecutive task starts. A minGap of 0 disables gap
// pacing.
func NewScheduler(name string, maxConcurrent int, minGap time.Duration) *Scheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	s := &Scheduler{
		name:  name,
		slots: make(chan struct{}, maxConcurrent),
	}
	if minGap > 0 {
		s.limiter = rate.NewLimiter(rate.Every(minGap), 1)
	}
	return s
}

// Name returns the logical target this scheduler protects.
func (s *Scheduler) Name() string { return s.name }

// InFlight returns the number of currently admitted tasks.
func (s *Scheduler) InFlight() int { return len(s.slots) }

// Schedule runs task once a slot is free and the minimum gap since the
// previous start has elapsed. The task's error is propagated to the caller
// unchanged; the slot is always released, even when the task fails. The only
// errors Schedule adds on its own are context cancellation while queued.
func (s *Scheduler) Schedule(ctx context.Context, task func(ctx context.Context) error) error {
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.slots }()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return task(ctx)
}
