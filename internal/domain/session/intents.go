package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// Dispatch applies one user intent from the presentation layer. Intents
// tagged with a stale session ID are rejected with a log line only;
// they are never applied to the session that replaced it.
func (m *Manager) Dispatch(intent types.Intent, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current.Active() || intent.SessionID != m.current.ID {
		m.log.Info("rejecting intent for stale session",
			zap.String("intent", string(intent.Kind)),
			zap.String("session_id", intent.SessionID))
		return ErrSessionMismatch
	}

	if intent.Kind == types.IntentSurfaceReady {
		m.current.Bootstrap = types.Ready
		m.publishLocked()
		return nil
	}

	switch m.current.Kind {
	case types.KindQuickTask:
		return m.dispatchOffering(intent, now)
	case types.KindPostQuickTaskChoice:
		return m.dispatchPostChoice(intent, now)
	case types.KindIntervention, types.KindAlternativeActivity:
		return m.dispatchIntervention(intent, now)
	}
	return ErrUnknownIntent
}

// dispatchOffering handles the quick-task offer screen. Must hold m.mu.
func (m *Manager) dispatchOffering(intent types.Intent, now time.Time) error {
	app := m.current.App

	switch intent.Kind {
	case types.IntentAcceptQuickTask:
		d := m.settings.QuickTaskDuration()
		// First-writer-wins: a duplicate accept cannot restart the
		// countdown or burn a second quota use.
		if m.quickTasks.Set(app, d, now) {
			m.quota.Record(now)
			m.native.StoreQuickTaskTimer(app, now.Add(d))
			if m.metrics != nil {
				m.metrics.QuotaRemaining.Set(float64(m.quota.Remaining(now)))
			}
		}
		m.quickTask.phase = types.QTActive
		// The offer surface closes so the app underneath is usable
		// again; the countdown runs silently.
		m.endSessionLocked("quick_task_accepted")
		m.native.FinishSurface(false)
		m.log.Info("quick task accepted",
			zap.String("app", string(app)), zap.Duration("duration", d))
		return nil

	case types.IntentStartConscious:
		// Escalation from the offer into the full flow.
		if err := m.slot.Acquire(app); err != nil {
			m.log.Warn("escalation rejected, slot held elsewhere",
				zap.String("app", string(app)), zap.Error(err))
			return err
		}
		m.intentions.Clear(app)
		m.quickTask = quickTask{phase: types.QTIdle}
		m.intervention.reset()
		m.intervention.phase = types.IVBreathing
		m.intervention.app = app
		m.intervention.enteredAt = now
		m.replaceSession(types.KindIntervention, app, now)
		return nil

	case types.IntentCloseOffer:
		m.quickTask = quickTask{phase: types.QTIdle}
		m.endSessionLocked("offer_closed")
		m.native.FinishSurface(true)
		return nil
	}
	return ErrUnknownIntent
}

// dispatchPostChoice handles the screen shown when a quick-task
// countdown lapses with the user still present. The system never
// decides silently here: the user either quits or consciously
// continues, and continuing re-evaluates the quota.
func (m *Manager) dispatchPostChoice(intent types.Intent, now time.Time) error {
	app := m.current.App

	switch intent.Kind {
	case types.IntentQuitApp:
		m.quickTask = quickTask{phase: types.QTIdle}
		m.endSessionLocked("quit_after_quick_task")
		m.native.FinishSurface(true)
		return nil

	case types.IntentContinueApp:
		remaining := m.quota.Remaining(now)
		if remaining > 0 {
			m.quickTask = quickTask{phase: types.QTOffering, app: app, remaining: remaining}
			m.replaceSession(types.KindQuickTask, app, now)
			return nil
		}
		// Quota exhausted: escalate straight into the intervention.
		if err := m.slot.Acquire(app); err != nil {
			m.log.Warn("post-choice escalation rejected",
				zap.String("app", string(app)), zap.Error(err))
			m.quickTask = quickTask{phase: types.QTIdle}
			m.endSessionLocked("slot_held")
			return err
		}
		m.intentions.Clear(app)
		m.quickTask = quickTask{phase: types.QTIdle}
		m.intervention.reset()
		m.intervention.phase = types.IVBreathing
		m.intervention.app = app
		m.intervention.enteredAt = now
		m.replaceSession(types.KindIntervention, app, now)
		return nil
	}
	return ErrUnknownIntent
}

// dispatchIntervention handles the conscious-use flow screens. Must
// hold m.mu.
func (m *Manager) dispatchIntervention(intent types.Intent, now time.Time) error {
	app := m.intervention.app

	switch intent.Kind {
	case types.IntentSelectCause:
		if m.intervention.phase != types.IVRootCause {
			return ErrUnknownIntent
		}
		if len(intent.Causes) == 0 {
			return ErrUnknownIntent
		}
		for _, c := range intent.Causes {
			if !types.KnownCause(c) {
				return ErrUnknownIntent
			}
		}
		m.intervention.causes = intent.Causes
		m.intervention.phase = types.IVAlternatives
		m.intervention.enteredAt = now
		m.publishLocked()
		return nil

	case types.IntentReallyNeedIt:
		// Low-friction override out of the flow, back toward the app.
		if m.intervention.phase != types.IVRootCause {
			return ErrUnknownIntent
		}
		m.cancelInterventionLocked(app, "really_need_it", now)
		m.native.FinishSurface(false)
		return nil

	case types.IntentSelectAlternative:
		if m.intervention.phase != types.IVAlternatives || intent.Activity == "" {
			return ErrUnknownIntent
		}
		m.intervention.activity = intent.Activity
		m.intervention.phase = types.IVAction
		m.intervention.enteredAt = now
		m.publishLocked()
		return nil

	case types.IntentSetIntention:
		// Bounded return to the app instead of an alternative. The only
		// completion path that grants renewed access.
		if m.intervention.phase != types.IVAlternatives {
			return ErrUnknownIntent
		}
		d := m.settings.IntentionDuration()
		if intent.Minutes > 0 {
			d = time.Duration(intent.Minutes) * time.Minute
		}
		m.intentions.Set(app, d, now)
		m.intervention.reset()
		m.slot.Release(app)
		m.endSessionLocked("intention_set")
		m.native.FinishSurface(false)
		m.log.Info("intention granted",
			zap.String("app", string(app)), zap.Duration("duration", d))
		return nil

	case types.IntentStartAction:
		if m.intervention.phase != types.IVAction {
			return ErrUnknownIntent
		}
		m.intervention.phase = types.IVActionTimer
		m.intervention.enteredAt = now
		// The user is now doing the replacement activity; this kind
		// survives backgrounding by hiding instead of ending.
		m.replaceSession(types.KindAlternativeActivity, app, now)
		return nil

	case types.IntentCompleteAction:
		if m.intervention.phase != types.IVActionTimer {
			return ErrUnknownIntent
		}
		m.intervention.phase = types.IVReflection
		m.intervention.enteredAt = now
		m.replaceSession(types.KindIntervention, app, now)
		return nil

	case types.IntentCompleteReflection:
		if m.intervention.phase != types.IVReflection {
			return ErrUnknownIntent
		}
		// Plain completion ends at idle without renewed access; only
		// the intention path grants that.
		m.intervention.reset()
		m.slot.Release(app)
		m.endSessionLocked("completed")
		m.native.FinishSurface(true)
		return nil
	}
	return ErrUnknownIntent
}
