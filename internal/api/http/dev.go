package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pauselabs/pause/backend/internal/domain/session"
	"github.com/pauselabs/pause/backend/internal/domain/store"
	"github.com/pauselabs/pause/backend/internal/domain/trigger"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
)

// DevHandlers is the test-only facade over the stores. It is mounted
// only when dev hooks are enabled in config; production builds never
// register these routes, and no production code path calls these
// mutators.
type DevHandlers struct {
	intentions *store.IntentionStore
	quickTasks *store.QuickTaskStore
	quota      *store.Quota
	slot       *store.Slot
	sessions   *session.Manager
	engine     *trigger.Engine
	log        *logging.Logger
}

// NewDevHandlers creates the dev facade.
func NewDevHandlers(
	intentions *store.IntentionStore,
	quickTasks *store.QuickTaskStore,
	quota *store.Quota,
	slot *store.Slot,
	sessions *session.Manager,
	engine *trigger.Engine,
	log *logging.Logger,
) *DevHandlers {
	return &DevHandlers{
		intentions: intentions,
		quickTasks: quickTasks,
		quota:      quota,
		slot:       slot,
		sessions:   sessions,
		engine:     engine,
		log:        log.Named("dev"),
	}
}

// ResetQuota discards all quota usage records.
func (h *DevHandlers) ResetQuota(c *gin.Context) {
	h.quota.Reset()
	h.log.Info("dev: quota reset")
	c.JSON(http.StatusOK, gin.H{"status": "quota reset"})
}

// ClearSlot force-frees the intervention slot.
func (h *DevHandlers) ClearSlot(c *gin.Context) {
	h.slot.Clear()
	h.log.Info("dev: slot cleared")
	c.JSON(http.StatusOK, gin.H{"status": "slot cleared"})
}

// ExpireTimers lapses every intention and quick-task timer immediately,
// resolving quick-task expiries through the session layer exactly as a
// real sweep would.
func (h *DevHandlers) ExpireTimers(c *gin.Context) {
	now := time.Now()
	current := h.engine.Current()

	// Sweeping at a far-future instant lapses everything.
	horizon := now.Add(100 * 365 * 24 * time.Hour)
	intentions := h.intentions.Sweep(horizon)
	quickTasks := h.quickTasks.Sweep(horizon)

	for _, app := range quickTasks {
		h.sessions.QuickTaskLapsed(app, app == current, now)
	}

	h.log.Info("dev: timers expired")
	c.JSON(http.StatusOK, gin.H{
		"intentions_expired":  intentions,
		"quick_tasks_expired": quickTasks,
	})
}
