package simulate

import (
	"sync"
	"time"
)

// Cooldown admits at most one action per key within a sliding window.
type Cooldown[K comparable] struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[K]time.Time
}

// NewCooldown creates a Cooldown. A nil now uses time.Now.
func NewCooldown[K comparable](window time.Duration, now func() time.Time) *Cooldown[K] {
	if now == nil {
		now = time.Now
	}
	return &Cooldown[K]{
		window: window,
		now:    now,
		last:   make(map[K]time.Time),
	}
}

// TryAcquire records an action for key and returns true, or returns false
// together with the remaining wait when key is still cooling down.
func (c *Cooldown[K]) TryAcquire(key K) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if at, ok := c.last[key]; ok {
		if elapsed := now.Sub(at); elapsed < c.window {
			return false, c.window - elapsed
		}
	}
	c.last[key] = now

	// Forget expired keys so the map tracks only active cooldowns.
	for k, at := range c.last {
		if now.Sub(at) >= c.window {
			delete(c.last, k)
		}
	}
	return true, 0
}
