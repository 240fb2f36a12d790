package rank

import (
	"sync"
	"time"
)

// CooldownTracker records, per user, when the last rank adjustment was
// applied. It is process-wide keyed state: one entry per user, swept
// periodically so a long-running server does not accumulate entries for
// every learner that ever reviewed.
type CooldownTracker struct {
	ttl time.Duration

	mu   sync.Mutex
	last map[string]time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// NewCooldownTracker creates a tracker whose entries expire after ttl.
// A background janitor sweeps expired entries; callers must Close the
// tracker when done with it.
func NewCooldownTracker(ttl time.Duration) *CooldownTracker {
	t := &CooldownTracker{
		ttl:  ttl,
		last: make(map[string]time.Time),
		done: make(chan struct{}),
	}
	go t.janitor()
	return t
}

// Active reports whether the user is still inside the cooldown window.
func (t *CooldownTracker) Active(userID string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	stamped, ok := t.last[userID]
	if !ok {
		return false
	}
	return now.Sub(stamped) < t.ttl
}

// Stamp marks an applied adjustment for the user at the given time.
func (t *CooldownTracker) Stamp(userID string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[userID] = now
}

// Close stops the janitor goroutine. Safe to call more than once.
func (t *CooldownTracker) Close() {
	t.closeOnce.Do(func() { close(t.done) })
}

func (t *CooldownTracker) janitor() {
	interval := t.ttl
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case now := <-ticker.C:
			t.sweep(now)
		}
	}
}

func (t *CooldownTracker) sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for userID, stamped := range t.last {
		if now.Sub(stamped) >= t.ttl {
			delete(t.last, userID)
		}
	}
}
