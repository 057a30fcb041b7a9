package trigger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pauselabs/pause/backend/internal/domain/apps"
	"github.com/pauselabs/pause/backend/internal/domain/filter"
	"github.com/pauselabs/pause/backend/internal/domain/store"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/infrastructure/monitoring"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// orderingHorizon bounds how long the filter keeps per-app ordering
// watermarks. An event delayed longer than this is no longer protected
// against out-of-order delivery, which at that age is moot anyway.
const orderingHorizon = time.Hour

// Sessions is the session layer as the engine sees it: the decision
// sink plus foreground-change notifications for exit handling.
type Sessions interface {
	SessionSink
	// HandleForeground reports a meaningful transition. departed is the
	// previous meaningful app (empty on the very first event).
	HandleForeground(app, departed types.AppID, now time.Time)
	// Tick advances time-based session phases.
	Tick(now time.Time)
}

// Engine funnels classified foreground events and periodic sweeps into
// the evaluator. Single-writer: one mutex covers classification,
// evaluation, and the session handoff, so decisions are serialized and
// the evaluator itself never blocks.
type Engine struct {
	mu         sync.Mutex
	filter     *filter.Filter
	registry   *apps.Registry
	eval       *Evaluator
	sessions   Sessions
	intentions *store.IntentionStore
	quickTasks *store.QuickTaskStore
	clock      Clock
	sweepEvery time.Duration
	log        *logging.Logger
	metrics    *monitoring.Metrics
}

// NewEngine wires the decision pipeline.
func NewEngine(
	f *filter.Filter,
	registry *apps.Registry,
	eval *Evaluator,
	sessions Sessions,
	intentions *store.IntentionStore,
	quickTasks *store.QuickTaskStore,
	clock Clock,
	sweepEvery time.Duration,
	log *logging.Logger,
	metrics *monitoring.Metrics,
) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{
		filter:     f,
		registry:   registry,
		eval:       eval,
		sessions:   sessions,
		intentions: intentions,
		quickTasks: quickTasks,
		clock:      clock,
		sweepEvery: sweepEvery,
		log:        log,
		metrics:    metrics,
	}
}

// HandleEvent processes one raw foreground event. Evaluation time is
// the event's own timestamp, so decisions follow timestamp order even
// if two sources race on arrival.
func (g *Engine) HandleEvent(ev types.ForegroundEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res := g.filter.Classify(ev)
	if g.metrics != nil {
		g.metrics.RecordEvent(string(res.Class))
	}
	now := ev.Time()

	switch res.Class {
	case types.ClassLauncherNoise, types.ClassStale:
		return

	case types.ClassHeartbeat:
		// A heartbeat short-circuits unless an intention timer freshly
		// lapsed since the last evaluation; that one case re-evaluates
		// so the user is not silently granted open-ended access.
		if g.registry.IsMonitored(ev.App) {
			if _, lapsed := g.intentions.Check(ev.App, now); lapsed {
				if g.metrics != nil {
					g.metrics.TimersExpired.WithLabelValues("intention", "foreground").Inc()
				}
				g.eval.Evaluate(ev.App, now)
			}
		}
		return

	case types.ClassMeaningful:
		g.sessions.HandleForeground(ev.App, res.Departed, now)
		if g.registry.IsMonitored(ev.App) {
			g.eval.Evaluate(ev.App, now)
		}
	}
}

// Sweep runs one expiry pass: (a) the current foreground app's
// intention timer, to catch in-place expiry while the user stays put,
// (b) quick-task timers, split into expired-in-foreground (interactive)
// and expired-backgrounded (silent), and (c) a GC pass over all
// intention timers whose effect is deferred until re-entry.
func (g *Engine) Sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	start := time.Now()

	current, _ := g.filter.Current()

	if current != "" && g.registry.IsMonitored(current) {
		if _, lapsed := g.intentions.Check(current, now); lapsed {
			if g.metrics != nil {
				g.metrics.TimersExpired.WithLabelValues("intention", "foreground").Inc()
			}
			g.log.Info("intention lapsed in foreground, re-evaluating",
				zap.String("app", string(current)))
			g.eval.Evaluate(current, now)
		}
	}

	for _, app := range g.quickTasks.Sweep(now) {
		foreground := app == current
		location := "background"
		if foreground {
			location = "foreground"
		}
		if g.metrics != nil {
			g.metrics.TimersExpired.WithLabelValues("quick_task", location).Inc()
		}
		g.sessions.QuickTaskLapsed(app, foreground, now)
	}

	for _, app := range g.intentions.Sweep(now) {
		// Lapsed while backgrounded: no action on the user's behalf,
		// the next entry into the app re-evaluates fresh.
		if g.metrics != nil {
			g.metrics.TimersExpired.WithLabelValues("intention", "background").Inc()
		}
		g.log.Debug("intention lapsed while backgrounded",
			zap.String("app", string(app)))
	}

	g.sessions.Tick(now)
	g.filter.Prune(now.Add(-orderingHorizon))

	if g.metrics != nil {
		g.metrics.RecordSweep(time.Since(start))
		g.metrics.IntentionTimers.Set(float64(g.intentions.Len()))
		g.metrics.QuickTaskTimers.Set(float64(g.quickTasks.Len()))
	}
}

// Run drives periodic sweeps until ctx is cancelled.
func (g *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(g.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Sweep()
		}
	}
}

// Current exposes the meaningful-foreground watermark to the session
// layer and the API.
func (g *Engine) Current() types.AppID {
	app, _ := g.filter.Current()
	return app
}
