package simulate

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs deferred work and cancels whatever is still pending when it
// shuts down.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewScheduler creates a Scheduler bound to a fresh background context.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// After runs fn once delay has elapsed. fn receives a context that is
// canceled on Shutdown, so long running work can stop early.
func (s *Scheduler) After(delay time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if !Sleep(s.ctx, delay) {
			return
		}
		fn(s.ctx)
	}()
}

// Go runs fn immediately on its own goroutine under the scheduler's context.
func (s *Scheduler) Go(fn func(ctx context.Context)) {
	s.After(0, fn)
}

// Shutdown cancels pending work and waits for running work to return, or for
// ctx to expire.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sleep waits for d or until ctx is done. It reports whether the full delay
// elapsed.
func Sleep(ctx context.Context, d time.Duration) bool {
	return sleep(ctx, d)
}

// SleepUntil is Sleep up to deadline. A deadline already passed returns at
// once, so a series of deadlines does not accumulate delay.
func SleepUntil(ctx context.Context, deadline time.Time) bool {
	return sleep(ctx, time.Until(deadline))
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
