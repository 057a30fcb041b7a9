package filter

import (
	"testing"
	"time"

	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

type fakeInfra map[types.AppID]bool

func (f fakeInfra) IsInfrastructure(app types.AppID) bool { return f[app] }

func newTestFilter() *Filter {
	infra := fakeInfra{"launcher": true, "self": true}
	return New(infra, 300*time.Millisecond, logging.NewNop())
}

func ev(app types.AppID, ms int64) types.ForegroundEvent {
	return types.ForegroundEvent{App: app, Timestamp: ms}
}

func TestMeaningfulTransition(t *testing.T) {
	f := newTestFilter()

	res := f.Classify(ev("app.x", 1000))
	if res.Class != types.ClassMeaningful {
		t.Fatalf("expected meaningful, got %s", res.Class)
	}
	if res.Departed != "" {
		t.Errorf("no departure on first event, got %q", res.Departed)
	}

	res = f.Classify(ev("app.y", 2000))
	if res.Class != types.ClassMeaningful || res.Departed != "app.x" {
		t.Errorf("expected transition departing app.x, got %+v", res)
	}
}

func TestHeartbeatDedup(t *testing.T) {
	f := newTestFilter()
	f.Classify(ev("app.x", 1000))

	res := f.Classify(ev("app.x", 5000))
	if res.Class != types.ClassHeartbeat {
		t.Errorf("repeat of current app should be a heartbeat, got %s", res.Class)
	}
}

func TestLauncherNoiseImmunity(t *testing.T) {
	// [X@t0, LAUNCHER@t0+50ms, X@t0+120ms] must read as one continuous
	// X session: no duplicate meaningful transition, no spurious exit.
	f := newTestFilter()

	if got := f.Classify(ev("app.x", 1000)).Class; got != types.ClassMeaningful {
		t.Fatalf("expected meaningful, got %s", got)
	}
	if got := f.Classify(ev("launcher", 1050)).Class; got != types.ClassLauncherNoise {
		t.Fatalf("expected launcher noise, got %s", got)
	}

	res := f.Classify(ev("app.x", 1120))
	if res.Class != types.ClassHeartbeat {
		t.Errorf("return within transition window should be a heartbeat, got %s", res.Class)
	}

	if cur, _ := f.Current(); cur != "app.x" {
		t.Errorf("meaningful watermark disturbed by launcher: %q", cur)
	}
}

func TestOwnSurfaceDoesNotSelfTrigger(t *testing.T) {
	f := newTestFilter()
	f.Classify(ev("app.x", 1000))

	if got := f.Classify(ev("self", 1500)).Class; got != types.ClassLauncherNoise {
		t.Errorf("own surface focus should be noise, got %s", got)
	}
	if cur, _ := f.Current(); cur != "app.x" {
		t.Errorf("own surface must not become the meaningful app: %q", cur)
	}
}

func TestStaleTimestampDropped(t *testing.T) {
	f := newTestFilter()
	f.Classify(ev("app.x", 2000))
	f.Classify(ev("app.y", 3000))

	// An app.x event that raced in late must lose to timestamp order.
	if got := f.Classify(ev("app.x", 1500)).Class; got != types.ClassStale {
		t.Errorf("older timestamp should be dropped, got %s", got)
	}
	if cur, _ := f.Current(); cur != "app.y" {
		t.Errorf("stale event disturbed the watermark: %q", cur)
	}
}

func TestPruneAgesOutOrderingWatermarks(t *testing.T) {
	f := newTestFilter()
	f.Classify(ev("app.old", 1000))
	f.Classify(ev("app.new", 5000))

	// Still guarded before the prune.
	if got := f.Classify(ev("app.old", 900)).Class; got != types.ClassStale {
		t.Fatalf("expected stale before prune, got %s", got)
	}

	f.Prune(time.UnixMilli(3000))

	// app.old's watermark aged out; app.new's is newer than the cutoff
	// and still orders its events.
	if got := f.Classify(ev("app.old", 900)).Class; got == types.ClassStale {
		t.Error("aged watermark should have been pruned")
	}
	if got := f.Classify(ev("app.new", 4000)).Class; got != types.ClassStale {
		t.Error("recent watermark should survive the prune")
	}
}

func TestRawWatermarkTracksEverything(t *testing.T) {
	f := newTestFilter()
	f.Classify(ev("app.x", 1000))
	f.Classify(ev("launcher", 2000))

	raw, at := f.LastRaw()
	if raw != "launcher" || !at.Equal(time.UnixMilli(2000)) {
		t.Errorf("raw watermark should follow every event, got %q at %v", raw, at)
	}
}
