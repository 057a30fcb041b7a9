package trigger

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pauselabs/pause/backend/internal/domain/store"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/infrastructure/monitoring"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// SessionSink receives decisions that need a surface. Constructor-
// injected so a decision can never fire into an unset callback; a nil
// sink is the stale-collaborator case and downgrades to log-and-no-op
// with nothing consumed.
type SessionSink interface {
	// StartIntervention launches the full conscious-use flow for app.
	StartIntervention(app types.AppID, now time.Time) error
	// OfferQuickTask surfaces the quick-task decision screen.
	OfferQuickTask(app types.AppID, remaining int, now time.Time)
	// QuickTaskLapsed reports a quick-task countdown found expired.
	// foreground tells whether the user was still inside the app.
	QuickTaskLapsed(app types.AppID, foreground bool, now time.Time)
}

// Evaluator runs the nested decision tree. Strict order, first match
// wins:
//
//  1. live intention timer        -> suppress
//  2. quota remaining > 0:
//     a. live quick-task timer    -> suppress
//     b. otherwise                -> offer quick task
//  3. quota exhausted             -> start intervention (single slot)
type Evaluator struct {
	intentions *store.IntentionStore
	quickTasks *store.QuickTaskStore
	quota      *store.Quota
	slot       *store.Slot
	sink       SessionSink
	log        *logging.Logger
	metrics    *monitoring.Metrics
}

// NewEvaluator creates the decision core over the given stores.
func NewEvaluator(
	intentions *store.IntentionStore,
	quickTasks *store.QuickTaskStore,
	quota *store.Quota,
	slot *store.Slot,
	sink SessionSink,
	log *logging.Logger,
	metrics *monitoring.Metrics,
) *Evaluator {
	return &Evaluator{
		intentions: intentions,
		quickTasks: quickTasks,
		quota:      quota,
		slot:       slot,
		sink:       sink,
		log:        log,
		metrics:    metrics,
	}
}

// Evaluate runs the tree for one meaningful entry into a monitored app
// and hands the outcome to the session sink. Exactly one outcome is
// produced per call.
func (e *Evaluator) Evaluate(app types.AppID, now time.Time) types.Decision {
	if e.sink == nil {
		// Very early startup: the session layer is not wired yet.
		// Nothing was consumed, so the next cycle retries naturally.
		e.log.Warn("no session sink wired, skipping evaluation",
			zap.String("app", string(app)))
		return types.Decision{Outcome: types.OutcomeSuppress, App: app, Reason: "no_sink"}
	}

	// 1. A live intention timer is the highest-priority override: the
	// user just set a bounded intention and is never interrupted inside
	// that window, regardless of quota state.
	if live, expired := e.intentions.Check(app, now); live {
		return e.record(types.Decision{
			Outcome: types.OutcomeSuppress, App: app, Reason: "intention_live",
		})
	} else if expired {
		e.log.Info("intention timer lapsed on evaluation",
			zap.String("app", string(app)))
	}

	// 2. Quota available: either mid-quick-task (suppress) or offer.
	remaining := e.quota.Remaining(now)
	if remaining > 0 {
		if live, expired := e.quickTasks.Check(app, now); live {
			return e.record(types.Decision{
				Outcome: types.OutcomeSuppress, App: app, Reason: "quick_task_live",
			})
		} else if expired {
			// Lapsed while the user was elsewhere; resolve the stale
			// session silently before deciding fresh.
			e.sink.QuickTaskLapsed(app, false, now)
		}
		e.sink.OfferQuickTask(app, remaining, now)
		return e.record(types.Decision{
			Outcome: types.OutcomeOfferQuickTask, App: app,
			Remaining: remaining, Reason: "quota_available",
		})
	}

	// 3. Quota exhausted: start the intervention, subject to the single
	// global slot. A different holder rejects the attempt outright with
	// no side effects; the same app re-entering resets its stale flow.
	if err := e.slot.Acquire(app); err != nil {
		if errors.Is(err, store.ErrSlotHeld) {
			holder, _ := e.slot.Holder()
			e.log.Info("intervention rejected, slot held",
				zap.String("app", string(app)),
				zap.String("holder", string(holder)))
			return e.record(types.Decision{
				Outcome: types.OutcomeSuppress, App: app, Reason: "slot_held",
			})
		}
		return e.record(types.Decision{
			Outcome: types.OutcomeSuppress, App: app, Reason: "slot_error",
		})
	}

	if err := e.sink.StartIntervention(app, now); err != nil {
		// Fail open: release the slot so the next entry re-evaluates
		// with nothing consumed.
		e.slot.Release(app)
		e.log.Warn("failed to start intervention",
			zap.String("app", string(app)), zap.Error(err))
		return e.record(types.Decision{
			Outcome: types.OutcomeSuppress, App: app, Reason: "start_failed",
		})
	}

	// Only a started intervention supersedes a bounded allowance; a
	// failed start leaves every store untouched.
	e.intentions.Clear(app)

	return e.record(types.Decision{
		Outcome: types.OutcomeStartIntervention, App: app, Reason: "quota_exhausted",
	})
}

func (e *Evaluator) record(d types.Decision) types.Decision {
	if e.metrics != nil {
		e.metrics.RecordDecision(string(d.Outcome))
	}
	return d
}
