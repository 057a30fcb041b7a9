package store

import (
	"sync"
	"time"

	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// IntentionStore keeps at most one intention timer per app. An intention
// timer is the bounded-time allowance granted when an intervention
// completes with "return to app"; while live it suppresses all further
// evaluation for that app.
type IntentionStore struct {
	mu     sync.Mutex
	timers map[types.AppID]time.Time // app -> expiresAt
}

// NewIntentionStore creates an empty intention-timer store.
func NewIntentionStore() *IntentionStore {
	return &IntentionStore{timers: make(map[types.AppID]time.Time)}
}

// Set grants app a bounded allowance of duration d starting at now.
// A fresh intervention completion always wins: any existing timer is
// overwritten unconditionally.
func (s *IntentionStore) Set(app types.AppID, d time.Duration, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[app] = now.Add(d)
}

// Check reports the timer state for app at now. live means a timer
// exists and has not lapsed. expired means a timer existed and was found
// lapsed by this consultation; it is deleted as observed (lazy delete).
func (s *IntentionStore) Check(app types.AppID, now time.Time) (live, expired bool) {
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

// Clear deletes app's timer without consulting it. Used when a new
// intervention starts and supersedes any stale allowance.
func (s *IntentionStore) Clear(app types.AppID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, app)
}

// Sweep removes every timer lapsed at now and returns the affected
// apps. Used by the periodic all-apps sweep; the effect for apps the
// user is not inside is purely garbage collection and logging.
func (s *IntentionStore) Sweep(now time.Time) []types.AppID {
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

// Len returns the number of live-or-unconsulted timers.
func (s *IntentionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
