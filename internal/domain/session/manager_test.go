package session

import (
	"errors"
	"testing"
	"time"

	"github.com/pauselabs/pause/backend/internal/domain/store"
	"github.com/pauselabs/pause/backend/internal/infrastructure/config"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeNative struct {
	stored   map[types.AppID]time.Time
	cleared  []types.AppID
	finished []bool // home flag per FinishSurface call
}

func newFakeNative() *fakeNative {
	return &fakeNative{stored: make(map[types.AppID]time.Time)}
}

func (n *fakeNative) StoreQuickTaskTimer(app types.AppID, expiresAt time.Time) {
	n.stored[app] = expiresAt
}
func (n *fakeNative) ClearQuickTaskTimer(app types.AppID) { n.cleared = append(n.cleared, app) }
func (n *fakeNative) FinishSurface(home bool)             { n.finished = append(n.finished, home) }

type fixture struct {
	m          *Manager
	native     *fakeNative
	intentions *store.IntentionStore
	quickTasks *store.QuickTaskStore
	quota      *store.Quota
	slot       *store.Slot
	settings   *config.Settings
}

func newFixture(quotaCfg types.QuotaConfig) *fixture {
	cfg := quotaCfg
	settings := config.NewSettings(config.Default().Engine)
	settings.SetQuota(cfg)
	f := &fixture{
		native:     newFakeNative(),
		intentions: store.NewIntentionStore(),
		quickTasks: store.NewQuickTaskStore(),
		slot:       store.NewSlot(),
		settings:   settings,
	}
	f.quota = store.NewQuota(func() types.QuotaConfig { return settings.Quota() })
	f.m = NewManager(f.intentions, f.quickTasks, f.quota, f.slot, settings, f.native, logging.NewNop(), nil)
	return f
}

func TestQuickTaskHappyPath(t *testing.T) {
	f := newFixture(types.LimitedQuota(1, time.Hour))
	app := types.AppID("app.x")

	f.m.OfferQuickTask(app, 1, t0)
	snap := f.m.Snapshot()
	if snap.Session.Kind != types.KindQuickTask || snap.QuickTask != types.QTOffering {
		t.Fatalf("expected offering session, got %+v", snap)
	}

	// Accept: countdown set, quota burned, surface closed toward the app.
	err := f.m.Dispatch(types.Intent{SessionID: snap.Session.ID, Kind: types.IntentAcceptQuickTask}, t0)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if f.m.Snapshot().QuickTask != types.QTActive {
		t.Fatal("expected active phase after accept")
	}
	if f.m.Snapshot().Session.Active() {
		t.Error("offer surface should close on accept")
	}
	if _, ok := f.quickTasks.ExpiresAt(app); !ok {
		t.Error("quick-task timer should be set")
	}
	if _, ok := f.native.stored[app]; !ok {
		t.Error("timer should be forwarded to the native shadow store")
	}
	if got := f.quota.Remaining(t0.Add(time.Second)); got != 0 {
		t.Errorf("quota should be exhausted, remaining=%d", got)
	}

	// Countdown lapses with the user still inside: ask, never decide.
	f.m.QuickTaskLapsed(app, true, t0.Add(5*time.Minute))
	snap = f.m.Snapshot()
	if snap.Session.Kind != types.KindPostQuickTaskChoice || snap.QuickTask != types.QTPostChoice {
		t.Fatalf("expected post-choice, got %+v", snap)
	}

	// Continue with quota at zero escalates to the intervention.
	err = f.m.Dispatch(types.Intent{SessionID: snap.Session.ID, Kind: types.IntentContinueApp}, t0.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	snap = f.m.Snapshot()
	if snap.Session.Kind != types.KindIntervention || snap.Intervention != types.IVBreathing {
		t.Fatalf("expected intervention after continue at zero quota, got %+v", snap)
	}
	if holder, ok := f.slot.Holder(); !ok || holder != app {
		t.Error("escalation should hold the intervention slot")
	}
}

func TestDuplicateAcceptDoesNotDoubleSpend(t *testing.T) {
	f := newFixture(types.LimitedQuota(3, time.Hour))
	app := types.AppID("app.x")

	f.m.OfferQuickTask(app, 3, t0)
	id := f.m.Snapshot().Session.ID
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentAcceptQuickTask}, t0)

	// A stale duplicate accept is rejected by the session-ID check.
	err := f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentAcceptQuickTask}, t0.Add(time.Second))
	if !errors.Is(err, ErrSessionMismatch) {
		t.Fatalf("expected session mismatch, got %v", err)
	}
	if got := f.quota.Remaining(t0.Add(2 * time.Second)); got != 2 {
		t.Errorf("duplicate accept must not double-spend quota, remaining=%d", got)
	}
}

func TestBackgroundExpiryIsSilent(t *testing.T) {
	f := newFixture(types.LimitedQuota(1, time.Hour))
	app := types.AppID("app.z")

	f.m.OfferQuickTask(app, 1, t0)
	id := f.m.Snapshot().Session.ID
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentAcceptQuickTask}, t0)

	// Timer lapses while the user is in another app: straight to idle,
	// no surface, no post-choice.
	f.m.QuickTaskLapsed(app, false, t0.Add(10*time.Minute))
	snap := f.m.Snapshot()
	if snap.QuickTask != types.QTIdle {
		t.Errorf("expected idle after background expiry, got %s", snap.QuickTask)
	}
	if snap.Session.Active() {
		t.Error("no surface may appear for a background expiry")
	}
	if len(f.native.cleared) != 1 || f.native.cleared[0] != app {
		t.Error("native shadow timer should be cleared")
	}
}

func TestInterventionFullFlowWithIntention(t *testing.T) {
	f := newFixture(types.LimitedQuota(0, time.Hour))
	app := types.AppID("app.y")

	_ = f.slot.Acquire(app)
	if err := f.m.StartIntervention(app, t0); err != nil {
		t.Fatal(err)
	}
	id := f.m.Snapshot().Session.ID

	// Breathing has no decision point; it advances only on elapse.
	f.m.Tick(t0.Add(10 * time.Second))
	if f.m.Snapshot().Intervention != types.IVBreathing {
		t.Fatal("breathing should not advance before its duration")
	}
	f.m.Tick(t0.Add(31 * time.Second))
	if f.m.Snapshot().Intervention != types.IVRootCause {
		t.Fatal("breathing should auto-advance to root cause")
	}

	err := f.m.Dispatch(types.Intent{
		SessionID: id,
		Kind:      types.IntentSelectCause,
		Causes:    []types.Cause{types.CauseBoredom, types.CauseFatigue},
	}, t0.Add(40*time.Second))
	if err != nil {
		t.Fatalf("select cause failed: %v", err)
	}
	if f.m.Snapshot().Intervention != types.IVAlternatives {
		t.Fatal("expected alternatives after cause selection")
	}

	// Bounded return: grants the intention timer and frees the slot.
	err = f.m.Dispatch(types.Intent{
		SessionID: id,
		Kind:      types.IntentSetIntention,
		Minutes:   2,
	}, t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("set intention failed: %v", err)
	}
	if live, _ := f.intentions.Check(app, t0.Add(2*time.Minute)); !live {
		t.Error("intention timer should be live inside the granted window")
	}
	if _, held := f.slot.Holder(); held {
		t.Error("slot should be released on completion")
	}
	if f.m.Snapshot().Session.Active() {
		t.Error("session should end on the intention path")
	}
	if f.m.Snapshot().Intervention != types.IVIdle {
		t.Error("flow should reset to idle")
	}
}

func TestInterventionActivityPathGrantsNoAccess(t *testing.T) {
	f := newFixture(types.LimitedQuota(0, time.Hour))
	app := types.AppID("app.y")

	_ = f.slot.Acquire(app)
	_ = f.m.StartIntervention(app, t0)
	id := f.m.Snapshot().Session.ID
	f.m.Tick(t0.Add(time.Minute))
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentSelectCause, Causes: []types.Cause{types.CauseStress}}, t0)
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentSelectAlternative, Activity: "take a walk"}, t0)
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentStartAction}, t0)

	snap := f.m.Snapshot()
	if snap.Session.Kind != types.KindAlternativeActivity || snap.Intervention != types.IVActionTimer {
		t.Fatalf("expected alternative-activity session, got %+v", snap)
	}

	// Backgrounding during the activity hides rather than ends.
	f.m.HandleForeground("app.other", app, t0.Add(time.Minute))
	snap = f.m.Snapshot()
	if !snap.Session.Active() || !snap.Session.Hidden {
		t.Fatal("activity session should hide, not end, when backgrounded")
	}
	f.m.HandleForeground(app, "app.other", t0.Add(2*time.Minute))
	if f.m.Snapshot().Session.Hidden {
		t.Fatal("activity session should show again on return")
	}

	id = f.m.Snapshot().Session.ID
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentCompleteAction}, t0.Add(10*time.Minute))
	id = f.m.Snapshot().Session.ID
	err := f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentCompleteReflection}, t0.Add(11*time.Minute))
	if err != nil {
		t.Fatalf("complete reflection failed: %v", err)
	}

	// Plain completion ends at idle with no renewed access.
	if live, _ := f.intentions.Check(app, t0.Add(12*time.Minute)); live {
		t.Error("activity completion must not grant an intention timer")
	}
	if _, held := f.slot.Holder(); held {
		t.Error("slot should be released on completion")
	}
}

func TestInterventionSupersedesLiveQuickTask(t *testing.T) {
	f := newFixture(types.LimitedQuota(1, time.Hour))
	app := types.AppID("app.x")

	f.m.OfferQuickTask(app, 1, t0)
	id := f.m.Snapshot().Session.ID
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentAcceptQuickTask}, t0)

	// The user leaves and re-enters before the countdown lapses; quota
	// is spent, so an intervention starts over the live countdown.
	_ = f.slot.Acquire(app)
	if err := f.m.StartIntervention(app, t0.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	if _, ok := f.quickTasks.ExpiresAt(app); ok {
		t.Error("live countdown should be revoked by the intervention")
	}
	if n := len(f.native.cleared); n == 0 || f.native.cleared[n-1] != app {
		t.Error("revoked countdown should clear the native shadow timer")
	}
	if f.m.Snapshot().QuickTask != types.QTIdle {
		t.Error("quick-task machine should reset")
	}

	// A lapse report racing in afterwards must not replace the flow.
	f.m.QuickTaskLapsed(app, true, t0.Add(6*time.Minute))
	snap := f.m.Snapshot()
	if snap.Session.Kind != types.KindIntervention {
		t.Errorf("intervention surface torn down by stale lapse, kind=%s", snap.Session.Kind)
	}
	if snap.Intervention != types.IVBreathing {
		t.Errorf("flow disturbed by stale lapse, phase=%s", snap.Intervention)
	}
}

func TestOfferWhileActivityHiddenAbandonsFlow(t *testing.T) {
	f := newFixture(types.LimitedQuota(1, time.Hour))
	appA := types.AppID("app.a")
	appB := types.AppID("app.b")

	_ = f.slot.Acquire(appA)
	_ = f.m.StartIntervention(appA, t0)
	id := f.m.Snapshot().Session.ID
	f.m.Tick(t0.Add(time.Minute))
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentSelectCause, Causes: []types.Cause{types.CauseBoredom}}, t0)
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentSelectAlternative, Activity: "stretch"}, t0)
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentStartAction}, t0)

	f.m.HandleForeground(appB, appA, t0.Add(time.Minute))
	if !f.m.Snapshot().Session.Hidden {
		t.Fatal("activity session should hide on backgrounding")
	}

	// Entering another monitored app with quota left surfaces a fresh
	// offer; the hidden activity flow is abandoned, not left dangling.
	f.m.OfferQuickTask(appB, 1, t0.Add(2*time.Minute))
	snap := f.m.Snapshot()
	if snap.Session.Kind != types.KindQuickTask || snap.Session.App != appB {
		t.Fatalf("expected an offer for app.b, got %+v", snap.Session)
	}
	if snap.Intervention != types.IVIdle {
		t.Errorf("abandoned flow should reset, phase=%s", snap.Intervention)
	}
	if holder, held := f.slot.Holder(); held {
		t.Errorf("slot must not outlive the abandoned flow, holder=%s", holder)
	}
}

func TestDepartureCancelsIntervention(t *testing.T) {
	f := newFixture(types.LimitedQuota(0, time.Hour))
	app := types.AppID("app.y")

	_ = f.slot.Acquire(app)
	_ = f.m.StartIntervention(app, t0)
	f.m.Tick(t0.Add(time.Minute))

	// The flow is one-shot: leaving the target cancels it outright.
	f.m.HandleForeground("app.other", app, t0.Add(2*time.Minute))
	snap := f.m.Snapshot()
	if snap.Session.Active() {
		t.Error("session should end when the user departs mid-flow")
	}
	if snap.Intervention != types.IVIdle {
		t.Error("flow should reset with no resume")
	}
	if _, held := f.slot.Holder(); held {
		t.Error("slot should be released on cancellation")
	}
}

func TestReallyNeedItOverride(t *testing.T) {
	f := newFixture(types.LimitedQuota(0, time.Hour))
	app := types.AppID("app.y")

	_ = f.slot.Acquire(app)
	_ = f.m.StartIntervention(app, t0)
	f.m.Tick(t0.Add(time.Minute))
	id := f.m.Snapshot().Session.ID

	err := f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentReallyNeedIt}, t0.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("override failed: %v", err)
	}
	if f.m.Snapshot().Session.Active() {
		t.Error("override should end the session")
	}
	if _, held := f.slot.Holder(); held {
		t.Error("override should release the slot")
	}
	// Resumes the app, not home.
	if n := len(f.native.finished); n == 0 || f.native.finished[n-1] {
		t.Error("override should resume the previous app")
	}
}

func TestStaleIntentRejected(t *testing.T) {
	f := newFixture(types.LimitedQuota(1, time.Hour))
	app := types.AppID("app.x")

	f.m.OfferQuickTask(app, 1, t0)
	staleID := f.m.Snapshot().Session.ID

	_ = f.slot.Acquire(app)
	_ = f.m.StartIntervention(app, t0.Add(time.Second))

	err := f.m.Dispatch(types.Intent{SessionID: staleID, Kind: types.IntentCloseOffer}, t0.Add(2*time.Second))
	if !errors.Is(err, ErrSessionMismatch) {
		t.Fatalf("expected session mismatch, got %v", err)
	}
	// The new session is untouched.
	if f.m.Snapshot().Session.Kind != types.KindIntervention {
		t.Error("stale intent must not disturb the replacing session")
	}
}

func TestSurfaceReadyMarksBootstrap(t *testing.T) {
	f := newFixture(types.LimitedQuota(1, time.Hour))
	f.m.OfferQuickTask("app.x", 1, t0)
	id := f.m.Snapshot().Session.ID

	if f.m.Snapshot().Session.Bootstrap != types.Bootstrapping {
		t.Fatal("new session should start bootstrapping")
	}
	_ = f.m.Dispatch(types.Intent{SessionID: id, Kind: types.IntentSurfaceReady}, t0)
	if f.m.Snapshot().Session.Bootstrap != types.Ready {
		t.Error("surface_ready should mark the session ready")
	}
}

func TestSubscribePublishesChanges(t *testing.T) {
	f := newFixture(types.LimitedQuota(1, time.Hour))
	ch := f.m.Subscribe()
	defer f.m.Unsubscribe(ch)

	f.m.OfferQuickTask("app.x", 1, t0)

	select {
	case state := <-ch:
		if state.Session.Kind != types.KindQuickTask {
			t.Errorf("expected quick-task state, got %s", state.Session.Kind)
		}
	default:
		t.Fatal("expected a published state change")
	}
}
