package service

import "sync"

// userLocks provides one mutex per user, created on demand. It enforces
// single-writer-per-user semantics over local persistence: review
// submissions, ignore actions and calibration for the same user never
// interleave their read-modify-write cycles.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the user's mutex and returns the unlock function.
func (l *userLocks) acquire(userID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
