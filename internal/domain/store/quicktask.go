package store

import (
	"sync"
	"time"

	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// QuickTaskStore keeps at most one quick-task timer per app. Setting a
// timer while one is live is a no-op: the existing countdown is never
// extended or restarted, so a duplicate "start quick task" action
// cannot buy extra time.
type QuickTaskStore struct {
	mu     sync.Mutex
	timers map[types.AppID]time.Time // app -> expiresAt
}

// NewQuickTaskStore creates an empty quick-task timer store.
func NewQuickTaskStore() *QuickTaskStore {
	return &QuickTaskStore{timers: make(map[types.AppID]time.Time)}
}

// Set starts a quick-task countdown of duration d for app. Returns
// false without touching state when a live timer already exists
// (first-writer-wins). The caller records quota usage only on true.
func (s *QuickTaskStore) Set(app types.AppID, d time.Duration, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expiresAt, ok := s.timers[app]; ok && now.Before(expiresAt) {
		return false
	}
	s.timers[app] = now.Add(d)
	return true
}

// Check reports the timer state for app at now. A timer found lapsed is
// deleted as observed (lazy delete) and reported via expired.
func (s *QuickTaskStore) Check(app types.AppID, now time.Time) (live, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.timers[app]
	if !ok {
		return false, false
	}
	if now.Before(expiresAt) {
		return true, false
	}
	delete(s.timers, app)
	return false, true
}

// ExpiresAt returns app's countdown deadline, if one exists.
func (s *QuickTaskStore) ExpiresAt(app types.AppID) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.timers[app]
	return expiresAt, ok
}

// Clear deletes app's timer. Called when the owning quick-task session
// completes. Idempotent.
func (s *QuickTaskStore) Clear(app types.AppID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, app)
}

// Sweep removes every timer lapsed at now and returns the affected
// apps. The caller distinguishes expired-in-foreground (interactive)
// from expired-backgrounded (silent).
func (s *QuickTaskStore) Sweep(now time.Time) []types.AppID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lapsed []types.AppID
	for app, expiresAt := range s.timers {
		if !now.Before(expiresAt) {
			lapsed = append(lapsed, app)
			delete(s.timers, app)
		}
	}
	return lapsed
}

// Len returns the number of stored timers.
func (s *QuickTaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
