package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pauselabs/pause/backend/internal/domain/store"
	"github.com/pauselabs/pause/backend/internal/infrastructure/config"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/infrastructure/monitoring"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// Manager arbitrates the system session and drives both inner machines.
// It is the evaluator's SessionSink and the engine's Sessions.
type Manager struct {
	mu sync.Mutex

	current      types.SystemSession
	quickTask    quickTask
	intervention intervention

	intentions *store.IntentionStore
	quickTasks *store.QuickTaskStore
	quota      *store.Quota
	slot       *store.Slot
	settings   *config.Settings
	native     Native
	log        *logging.Logger
	metrics    *monitoring.Metrics

	subs map[chan State]struct{}
}

// NewManager creates the session layer over the shared stores.
func NewManager(
	intentions *store.IntentionStore,
	quickTasks *store.QuickTaskStore,
	quota *store.Quota,
	slot *store.Slot,
	settings *config.Settings,
	native Native,
	log *logging.Logger,
	metrics *monitoring.Metrics,
) *Manager {
	return &Manager{
		current:      types.SystemSession{Kind: types.KindNone},
		quickTask:    quickTask{phase: types.QTIdle},
		intervention: intervention{phase: types.IVIdle},
		intentions:   intentions,
		quickTasks:   quickTasks,
		quota:        quota,
		slot:         slot,
		settings:     settings,
		native:       native,
		log:          log,
		metrics:      metrics,
		subs:         make(map[chan State]struct{}),
	}
}

// StartIntervention launches the conscious-use flow for app. The
// evaluator already holds the slot for app; calling this again while
// the flow runs is a controlled reset of the same flow, never a second
// session.
func (m *Manager) StartIntervention(app types.AppID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.supersedeQuickTaskLocked()

	m.intervention.reset()
	m.intervention.phase = types.IVBreathing
	m.intervention.app = app
	m.intervention.enteredAt = now

	m.replaceSession(types.KindIntervention, app, now)
	m.log.Info("intervention started", zap.String("app", string(app)))
	return nil
}

// OfferQuickTask surfaces the quick-task decision screen for app.
func (m *Manager) OfferQuickTask(app types.AppID, remaining int, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quickTask.phase == types.QTOffering && m.quickTask.app == app {
		// Already offering for this app; nothing to re-surface.
		return
	}

	if m.current.Kind == types.KindAlternativeActivity {
		// An activity flow still in flight (usually hidden after a
		// backgrounding) is abandoned by the fresh offer. Its slot must
		// not outlive the session that carried it.
		holder := m.current.App
		m.intervention.reset()
		m.slot.Release(holder)
		m.log.Info("alternative activity abandoned by new offer",
			zap.String("abandoned", string(holder)), zap.String("app", string(app)))
	}

	m.quickTask = quickTask{phase: types.QTOffering, app: app, remaining: remaining}
	m.replaceSession(types.KindQuickTask, app, now)
	m.log.Info("quick task offered",
		zap.String("app", string(app)), zap.Int("remaining", remaining))
}

// QuickTaskLapsed resolves a quick-task countdown found expired. While
// the user is still inside the target app the system never decides
// silently: it surfaces the post-choice screen. Expiry while the user
// is elsewhere ends the session silently with no surface.
func (m *Manager) QuickTaskLapsed(app types.AppID, foreground bool, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quickTask.phase != types.QTActive || m.quickTask.app != app {
		return
	}

	m.native.ClearQuickTaskTimer(app)

	if foreground {
		m.quickTask.phase = types.QTPostChoice
		m.replaceSession(types.KindPostQuickTaskChoice, app, now)
		m.log.Info("quick task expired in foreground", zap.String("app", string(app)))
		return
	}

	m.quickTask = quickTask{phase: types.QTIdle}
	m.log.Info("quick task expired while backgrounded, ending silently",
		zap.String("app", string(app)))
	m.publishLocked()
}

// HandleForeground applies the departure rules when the meaningful
// foreground app changes. Leaving the target app ends the owning
// session, except the alternative-activity kind which only hides.
func (m *Manager) HandleForeground(app, departed types.AppID, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current.Active() {
		return
	}

	target := m.current.App

	if app == target {
		if m.current.Kind == types.KindAlternativeActivity && m.current.Hidden {
			m.current.Hidden = false
			m.publishLocked()
		}
		return
	}

	// A meaningful foreground app other than the target means the user
	// has departed, whatever path they took.
	switch m.current.Kind {
	case types.KindAlternativeActivity:
		// This flow does not require staying inside the target app;
		// backgrounding toggles visibility instead of ending it.
		if !m.current.Hidden {
			m.current.Hidden = true
			m.publishLocked()
		}

	case types.KindIntervention:
		// One-shot flow: leaving mid-flow cancels with no resume.
		m.log.Info("user left target mid-intervention, cancelling",
			zap.String("app", string(target)), zap.String("now_in", string(app)))
		m.cancelInterventionLocked(target, "user_departed", now)

	case types.KindQuickTask:
		m.quickTask = quickTask{phase: types.QTIdle}
		m.endSessionLocked("user_departed")

	case types.KindPostQuickTaskChoice:
		// The user answered the choice screen by leaving.
		m.quickTask = quickTask{phase: types.QTIdle}
		m.endSessionLocked("user_departed")

	default:
		// Unknown kind: render nothing, touch nothing. Unreachable in
		// correct operation.
		m.log.Warn("unknown session kind on foreground change",
			zap.String("kind", string(m.current.Kind)))
	}
}

// Tick advances time-based phases; today that is only the breathing
// phase, which has no user decision point and auto-advances on elapse.
func (m *Manager) Tick(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.intervention.phase != types.IVBreathing {
		return
	}
	if now.Sub(m.intervention.enteredAt) < m.settings.BreathingDuration() {
		return
	}
	m.intervention.phase = types.IVRootCause
	m.intervention.enteredAt = now
	m.publishLocked()
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers a session-state listener. The current state is
// not replayed; callers read Snapshot first.
func (m *Manager) Subscribe() chan State {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan State, 8)
	m.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a listener.
func (m *Manager) Unsubscribe(ch chan State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, ch)
	close(ch)
}

// replaceSession installs a new system session. Always an explicit
// transition; the previous session is simply superseded. Must hold m.mu.
func (m *Manager) replaceSession(kind types.SessionKind, app types.AppID, now time.Time) {
	m.current = types.SystemSession{
		ID:        uuid.New().String(),
		Kind:      kind,
		App:       app,
		Bootstrap: types.Bootstrapping,
		StartedAt: now,
	}
	if m.metrics != nil {
		m.metrics.SessionsStarted.WithLabelValues(string(kind)).Inc()
		m.metrics.SessionActive.Set(1)
	}
	m.publishLocked()
}

// endSessionLocked clears the system session. Must hold m.mu.
func (m *Manager) endSessionLocked(reason string) {
	if !m.current.Active() {
		return
	}
	if m.metrics != nil {
		m.metrics.SessionsEnded.WithLabelValues(string(m.current.Kind), reason).Inc()
		m.metrics.SessionActive.Set(0)
	}
	m.current = types.SystemSession{Kind: types.KindNone}
	m.publishLocked()
}

// supersedeQuickTaskLocked resets the quick-task machine when an
// intervention takes over. A countdown still running is revoked
// outright, store timer and native shadow both, so a later lapse report
// cannot tear down the intervention surface. Must hold m.mu.
func (m *Manager) supersedeQuickTaskLocked() {
	switch m.quickTask.phase {
	case types.QTIdle:
		return
	case types.QTActive:
		m.quickTasks.Clear(m.quickTask.app)
		m.native.ClearQuickTaskTimer(m.quickTask.app)
	}
	m.quickTask = quickTask{phase: types.QTIdle}
}

// cancelInterventionLocked forcibly resets the flow and frees the slot.
// Must hold m.mu.
func (m *Manager) cancelInterventionLocked(app types.AppID, reason string, now time.Time) {
	m.intervention.reset()
	m.slot.Release(app)
	m.endSessionLocked(reason)
}

func (m *Manager) snapshotLocked() State {
	causes := make([]types.Cause, len(m.intervention.causes))
	copy(causes, m.intervention.causes)
	return State{
		Session:      m.current,
		QuickTask:    m.quickTask.phase,
		Intervention: m.intervention.phase,
		Remaining:    m.quickTask.remaining,
		Causes:       causes,
		Activity:     m.intervention.activity,
	}
}

// publishLocked fans the current state out to subscribers. Slow
// listeners drop updates rather than blocking the engine. Must hold m.mu.
func (m *Manager) publishLocked() {
	state := m.snapshotLocked()
	for ch := range m.subs {
		select {
		case ch <- state:
		default:
		}
	}
}
