package filter

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// Infrastructure answers whether a package is a launcher/home screen or
// our own surface. Satisfied by apps.Registry.
type Infrastructure interface {
	IsInfrastructure(app types.AppID) bool
}

// Result is the filter's verdict for one raw event.
type Result struct {
	Class types.EventClass
	// Departed is the previous meaningful app when Class is
	// ClassMeaningful and a real transition happened, empty otherwise.
	Departed types.AppID
}

// Filter classifies raw foreground events so only meaningful,
// de-duplicated, timestamp-ordered transitions reach the trigger
// evaluator. Launcher events touch only diagnostic watermarks; they
// never update the meaningful-app watermark, so a brief launcher blip
// between two sightings of the same app reads as one continuous
// session.
type Filter struct {
	mu    sync.Mutex
	infra Infrastructure
	log   *logging.Logger

	// transitionWindow bounds how close behind a launcher event the
	// next app must follow to be logged as mid-transition noise. It
	// aids diagnostics only; suppression never depends on it.
	transitionWindow time.Duration

	lastMeaningful   types.AppID
	lastMeaningfulAt time.Time

	// Raw watermark, updated by every event regardless of class. Used
	// solely to timestamp exits for diagnostics.
	lastRaw   types.AppID
	lastRawAt time.Time

	lastLauncherAt time.Time

	// newest per-app timestamp seen; older arrivals are dropped so the
	// decision sequence follows timestamp order, not arrival order.
	newest map[types.AppID]int64
}

// New creates a filter over the given infrastructure set.
func New(infra Infrastructure, transitionWindow time.Duration, log *logging.Logger) *Filter {
	return &Filter{
		infra:            infra,
		log:              log,
		transitionWindow: transitionWindow,
		newest:           make(map[types.AppID]int64),
	}
}

// Classify files one raw event into meaningful, launcher noise,
// heartbeat, or stale.
func (f *Filter) Classify(ev types.ForegroundEvent) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	ts := ev.Time()

	if prev, ok := f.newest[ev.App]; ok && ev.Timestamp < prev {
		return Result{Class: types.ClassStale}
	}
	f.newest[ev.App] = ev.Timestamp

	f.lastRaw = ev.App
	f.lastRawAt = ts

	if f.infra.IsInfrastructure(ev.App) {
		f.lastLauncherAt = ts
		return Result{Class: types.ClassLauncherNoise}
	}

	if ev.App == f.lastMeaningful {
		return Result{Class: types.ClassHeartbeat}
	}

	if !f.lastLauncherAt.IsZero() && ts.Sub(f.lastLauncherAt) < f.transitionWindow {
		f.log.Debug("launcher event was mid-transition noise",
			zap.String("app", string(ev.App)),
			zap.Duration("gap", ts.Sub(f.lastLauncherAt)),
		)
	}

	departed := f.lastMeaningful
	f.lastMeaningful = ev.App
	f.lastMeaningfulAt = ts
	return Result{Class: types.ClassMeaningful, Departed: departed}
}

// Prune drops per-app ordering watermarks older than cutoff so the map
// stays bounded by recent activity instead of every package ever seen.
// A pruned app only loses stale-drop protection against events that are
// themselves older than the cutoff.
func (f *Filter) Prune(cutoff time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	limit := cutoff.UnixMilli()
	for app, ts := range f.newest {
		if ts < limit {
			delete(f.newest, app)
		}
	}
}

// Current returns the last meaningful app and when it was last seen.
func (f *Filter) Current() (types.AppID, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastMeaningful, f.lastMeaningfulAt
}

// LastRaw returns the raw last-foreground watermark (diagnostics only).
func (f *Filter) LastRaw() (types.AppID, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRaw, f.lastRawAt
}
