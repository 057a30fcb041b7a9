package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pauselabs/pause/backend/internal/domain/apps"
	"github.com/pauselabs/pause/backend/internal/domain/session"
	"github.com/pauselabs/pause/backend/internal/domain/trigger"
	"github.com/pauselabs/pause/backend/internal/infrastructure/config"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/native"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// Handlers contains the REST handlers.
type Handlers struct {
	sessions *session.Manager
	engine   *trigger.Engine
	settings *config.Settings
	registry *apps.Registry
	bridge   *native.Bridge
	log      *logging.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(
	sessions *session.Manager,
	engine *trigger.Engine,
	settings *config.Settings,
	registry *apps.Registry,
	bridge *native.Bridge,
	log *logging.Logger,
) *Handlers {
	return &Handlers{
		sessions: sessions,
		engine:   engine,
		settings: settings,
		registry: registry,
		bridge:   bridge,
		log:      log.Named("http"),
	}
}

// Root handles the liveness check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "pause-backend",
	})
}

// Health reports service health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"session":    h.sessions.Snapshot().Session.Kind,
		"foreground": h.engine.Current(),
	})
}

// GetSession returns the full session snapshot plus the native wake
// reason when the native side can answer quickly.
func (h *Handlers) GetSession(c *gin.Context) {
	state := h.sessions.Snapshot()

	var wake types.WakeReason
	if h.bridge != nil {
		if reason, err := h.bridge.WakeReason(c.Request.Context()); err == nil {
			wake = reason
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"state":       state,
		"wake_reason": wake,
	})
}

// PostIntent applies one user intent from the presentation layer.
// Stale-session and wrong-phase intents return 409; the UI re-syncs
// from the push stream.
func (h *Handlers) PostIntent(c *gin.Context) {
	var intent types.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid intent payload"})
		return
	}

	err := h.sessions.Dispatch(intent, time.Now())
	switch {
	case errors.Is(err, session.ErrSessionMismatch):
		c.JSON(http.StatusConflict, gin.H{"error": "stale session"})
	case errors.Is(err, session.ErrUnknownIntent):
		c.JSON(http.StatusConflict, gin.H{"error": "intent not valid for current state"})
	case err != nil:
		h.log.Warn("intent dispatch failed",
			zap.String("intent", string(intent.Kind)), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"state": h.sessions.Snapshot()})
	}
}

// settingsPayload is the settings wire shape, shared by GET and PUT.
type settingsPayload struct {
	IntentionMinutes *int           `json:"intention_minutes,omitempty"`
	QuickTaskMinutes *int           `json:"quick_task_minutes,omitempty"`
	BreathingSeconds *int           `json:"breathing_seconds,omitempty"`
	QuotaUnlimited   *bool          `json:"quota_unlimited,omitempty"`
	QuotaMaxUses     *int           `json:"quota_max_uses,omitempty"`
	QuotaWindowHours *int           `json:"quota_window_hours,omitempty"`
	Monitored        *[]types.AppID `json:"monitored,omitempty"`
}

// GetSettings returns the current runtime settings.
func (h *Handlers) GetSettings(c *gin.Context) {
	snap := h.settings.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"intention_minutes":  snap.IntentionMinutes,
		"quick_task_minutes": snap.QuickTaskMinutes,
		"breathing_seconds":  snap.BreathingSeconds,
		"quota":              snap.Quota,
		"monitored":          h.registry.Monitored(),
	})
}

// PutSettings applies a partial settings update. Changes take effect on
// the next evaluation; nothing restarts.
func (h *Handlers) PutSettings(c *gin.Context) {
	var req settingsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}

	if req.IntentionMinutes != nil {
		if *req.IntentionMinutes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "intention_minutes must be positive"})
			return
		}
		h.settings.SetIntentionDuration(time.Duration(*req.IntentionMinutes) * time.Minute)
	}
	if req.QuickTaskMinutes != nil {
		if *req.QuickTaskMinutes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quick_task_minutes must be positive"})
			return
		}
		h.settings.SetQuickTaskDuration(time.Duration(*req.QuickTaskMinutes) * time.Minute)
	}
	if req.BreathingSeconds != nil {
		if *req.BreathingSeconds <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "breathing_seconds must be positive"})
			return
		}
		h.settings.SetBreathingDuration(time.Duration(*req.BreathingSeconds) * time.Second)
	}

	if req.QuotaUnlimited != nil || req.QuotaMaxUses != nil || req.QuotaWindowHours != nil {
		quota := h.settings.Quota()
		if req.QuotaUnlimited != nil {
			quota.Unlimited = *req.QuotaUnlimited
		}
		if req.QuotaMaxUses != nil {
			if *req.QuotaMaxUses < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "quota_max_uses must not be negative"})
				return
			}
			quota.MaxUses = *req.QuotaMaxUses
		}
		if req.QuotaWindowHours != nil {
			if *req.QuotaWindowHours <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "quota_window_hours must be positive"})
				return
			}
			quota.Window = time.Duration(*req.QuotaWindowHours) * time.Hour
		}
		h.settings.SetQuota(quota)
	}

	if req.Monitored != nil {
		h.registry.SetMonitored(*req.Monitored)
	}

	h.log.Info("settings updated")
	h.GetSettings(c)
}
