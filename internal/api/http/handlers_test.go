package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pauselabs/pause/backend/internal/domain/apps"
	"github.com/pauselabs/pause/backend/internal/domain/filter"
	"github.com/pauselabs/pause/backend/internal/domain/session"
	"github.com/pauselabs/pause/backend/internal/domain/store"
	"github.com/pauselabs/pause/backend/internal/domain/trigger"
	"github.com/pauselabs/pause/backend/internal/infrastructure/config"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

type nopNative struct{}

func (nopNative) StoreQuickTaskTimer(types.AppID, time.Time) {}
func (nopNative) ClearQuickTaskTimer(types.AppID)            {}
func (nopNative) FinishSurface(bool)                         {}

type apiFixture struct {
	router   *gin.Engine
	sessions *session.Manager
	settings *config.Settings
	registry *apps.Registry
	slot     *store.Slot
	quota    *store.Quota
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logging.NewNop()

	settings := config.NewSettings(config.Default().Engine)
	registry := apps.NewRegistry("com.pauselabs.pause")
	intentions := store.NewIntentionStore()
	quickTasks := store.NewQuickTaskStore()
	quota := store.NewQuota(func() types.QuotaConfig { return settings.Quota() })
	slot := store.NewSlot()

	sessions := session.NewManager(intentions, quickTasks, quota, slot, settings, nopNative{}, log, nil)
	eval := trigger.NewEvaluator(intentions, quickTasks, quota, slot, sessions, log, nil)
	fl := filter.New(registry, 300*time.Millisecond, log)
	engine := trigger.NewEngine(fl, registry, eval, sessions, intentions, quickTasks, nil, time.Second, log, nil)

	h := NewHandlers(sessions, engine, settings, registry, nil, log)
	dev := NewDevHandlers(intentions, quickTasks, quota, slot, sessions, engine, log)

	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/session", h.GetSession)
	r.POST("/session/intent", h.PostIntent)
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.PutSettings)
	r.POST("/dev/quota/reset", dev.ResetQuota)
	r.POST("/dev/slot/clear", dev.ClearSlot)
	r.POST("/dev/timers/expire", dev.ExpireTimers)

	return &apiFixture{
		router:   r,
		sessions: sessions,
		settings: settings,
		registry: registry,
		slot:     slot,
		quota:    quota,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetSessionIdleByDefault(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		State session.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, types.KindNone, out.State.Session.Kind)
}

func TestPostIntentBadPayload(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/session/intent", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostIntentStaleSessionConflicts(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodPost, "/session/intent", types.Intent{
		SessionID: "no-such-session",
		Kind:      types.IntentAcceptQuickTask,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPostIntentDrivesSession(t *testing.T) {
	f := newAPIFixture(t)
	f.sessions.OfferQuickTask("app.x", 3, time.Now())
	id := f.sessions.Snapshot().Session.ID

	w := f.do(t, http.MethodPost, "/session/intent", types.Intent{
		SessionID: id,
		Kind:      types.IntentAcceptQuickTask,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.QTActive, f.sessions.Snapshot().QuickTask)
}

func TestPutSettingsUpdatesQuotaAndMonitored(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodPut, "/settings", map[string]any{
		"quick_task_minutes": 10,
		"quota_max_uses":     5,
		"monitored":          []string{"app.a", "app.b"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 10*time.Minute, f.settings.QuickTaskDuration())
	assert.Equal(t, 5, f.settings.Quota().MaxUses)
	assert.Equal(t, []types.AppID{"app.a", "app.b"}, f.registry.Monitored())
}

func TestPutSettingsRejectsInvalidValues(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodPut, "/settings", map[string]any{"intention_minutes": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDevFacade(t *testing.T) {
	f := newAPIFixture(t)
	now := time.Now()
	f.quota.Record(now)
	require.NoError(t, f.slot.Acquire("app.x"))

	w := f.do(t, http.MethodPost, "/dev/quota/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, f.settings.Quota().MaxUses, f.quota.Remaining(now))

	w = f.do(t, http.MethodPost, "/dev/slot/clear", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	_, held := f.slot.Holder()
	assert.False(t, held)

	w = f.do(t, http.MethodPost, "/dev/timers/expire", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
