package store

import (
	"errors"
	"sync"

	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// ErrSlotHeld is returned when a different app already holds the
// intervention slot. The attempt is rejected outright, never queued.
var ErrSlotHeld = errors.New("intervention already in progress for another app")

// Slot is the single global intervention-in-progress guard. Only one
// app may be mid-intervention at a time; per-app timers otherwise allow
// full independence, but cross-app intervention exclusion is a
// deliberate anti-interference choice.
type Slot struct {
	mu     sync.Mutex
	holder *types.AppID
}

// NewSlot creates an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Acquire claims the slot for app. Re-acquiring for the app that
// already holds it is a controlled reset (the stale flow restarts), not
// a double-add. A different holder yields ErrSlotHeld with no side
// effects.
func (s *Slot) Acquire(app types.AppID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holder != nil && *s.holder != app {
		return ErrSlotHeld
	}
	s.holder = &app
	return nil
}

// Release frees the slot if app holds it. Idempotent; releasing a slot
// held by someone else is a no-op.
func (s *Slot) Release(app types.AppID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holder != nil && *s.holder == app {
		s.holder = nil
	}
}

// Holder returns the current holder, if any.
func (s *Slot) Holder() (types.AppID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holder == nil {
		return "", false
	}
	return *s.holder, true
}

// Clear unconditionally frees the slot. Dev facade only.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holder = nil
}
