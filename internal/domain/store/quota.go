package store

import (
	"math"
	"sync"
	"time"

	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// RemainingUnlimited is the effectively-infinite value Remaining reports
// under the unlimited configuration.
const RemainingUnlimited = math.MaxInt32

// Quota is the global (not per-app) quick-task usage quota over a
// rolling window. Usage records are append-only; entries only leave
// consideration by aging out of the window, never by reset (the dev
// facade is the sole exception).
type Quota struct {
	mu   sync.Mutex
	uses []time.Time
	// cfg supplies the current configuration so runtime settings
	// changes apply on the next evaluation.
	cfg func() types.QuotaConfig
}

// NewQuota creates a quota store reading its configuration from cfg.
func NewQuota(cfg func() types.QuotaConfig) *Quota {
	return &Quota{cfg: cfg}
}

// Record appends one usage at now. Never rejected, even at zero
// remaining; the decision tree is responsible for not offering.
func (q *Quota) Record(now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.uses = append(q.uses, now)
}

// Remaining returns max(0, maxUses - uses within the window of now),
// pruning aged-out entries first. Under the unlimited configuration the
// window filter is bypassed entirely and RemainingUnlimited is returned.
func (q *Quota) Remaining(now time.Time) int {
	cfg := q.cfg()
	if cfg.Unlimited {
		return RemainingUnlimited
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune(now, cfg.Window)
	remaining := cfg.MaxUses - len(q.uses)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// prune drops usage records older than the window. Must hold q.mu.
// Records arrive in time order, so the slice stays sorted and a single
// cut point suffices.
func (q *Quota) prune(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(q.uses) && !q.uses[i].After(cutoff) {
		i++
	}
	if i > 0 {
		q.uses = append(q.uses[:0], q.uses[i:]...)
	}
}

// Reset discards all usage records. Dev facade only; production code
// never restores quota inside a window.
func (q *Quota) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.uses = q.uses[:0]
}
