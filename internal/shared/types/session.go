package types

import "time"

// SessionKind selects which flow (if any) owns the presented surface.
type SessionKind string

const (
	KindNone                SessionKind = "none"
	KindIntervention        SessionKind = "intervention"
	KindQuickTask           SessionKind = "quick_task"
	KindPostQuickTaskChoice SessionKind = "post_quick_task_choice"
	KindAlternativeActivity SessionKind = "alternative_activity"
)

// BootstrapState tracks whether the presentation surface has finished
// its initial render. The surface must not be torn down mid-bootstrap.
type BootstrapState string

const (
	Bootstrapping BootstrapState = "bootstrapping"
	Ready         BootstrapState = "ready"
)

// SystemSession is the single arbitration record for what is shown.
// At most one non-NONE session exists at a time; replacing it is an
// explicit transition, never an implicit overwrite.
type SystemSession struct {
	ID        string         `json:"id"`
	Kind      SessionKind    `json:"kind"`
	App       AppID          `json:"app,omitempty"`
	Bootstrap BootstrapState `json:"bootstrap"`
	Hidden    bool           `json:"hidden,omitempty"` // alternative-activity only
	StartedAt time.Time      `json:"started_at,omitempty"`
}

// Active reports whether a flow currently owns the surface.
func (s SystemSession) Active() bool {
	return s.Kind != KindNone && s.Kind != ""
}

// QuickTaskPhase is the quick-task session state.
type QuickTaskPhase string

const (
	QTIdle       QuickTaskPhase = "idle"
	QTOffering   QuickTaskPhase = "offering"
	QTActive     QuickTaskPhase = "active"
	QTPostChoice QuickTaskPhase = "post_choice"
)

// InterventionPhase is the intervention session state. The flow is
// linear and one-shot; there is no resume for a cancelled flow.
type InterventionPhase string

const (
	IVIdle         InterventionPhase = "idle"
	IVBreathing    InterventionPhase = "breathing"
	IVRootCause    InterventionPhase = "root_cause"
	IVAlternatives InterventionPhase = "alternatives"
	IVAction       InterventionPhase = "action"
	IVActionTimer  InterventionPhase = "action_timer"
	IVReflection   InterventionPhase = "reflection"
)

// Cause is a root-cause trigger category. The taxonomy is fixed.
type Cause string

const (
	CauseBoredom     Cause = "boredom"
	CauseStress      Cause = "stress"
	CauseLoneliness  Cause = "loneliness"
	CauseFatigue     Cause = "fatigue"
	CauseSelfDoubt   Cause = "self_doubt"
	CauseNoClearGoal Cause = "no_clear_goal"
	CauseOther       Cause = "other"
)

// KnownCause reports whether c is part of the fixed taxonomy.
func KnownCause(c Cause) bool {
	switch c {
	case CauseBoredom, CauseStress, CauseLoneliness, CauseFatigue,
		CauseSelfDoubt, CauseNoClearGoal, CauseOther:
		return true
	}
	return false
}

// IntentKind is the fixed vocabulary of user actions the UI may forward.
// The UI never decides which flow to show; it only reports button presses.
type IntentKind string

const (
	IntentAcceptQuickTask    IntentKind = "accept_quick_task"
	IntentStartConscious     IntentKind = "start_conscious"
	IntentCloseOffer         IntentKind = "close_offer"
	IntentQuitApp            IntentKind = "quit_app"
	IntentContinueApp        IntentKind = "continue_app"
	IntentSelectCause        IntentKind = "select_cause"
	IntentReallyNeedIt       IntentKind = "really_need_it"
	IntentSelectAlternative  IntentKind = "select_alternative"
	IntentSetIntention       IntentKind = "set_intention"
	IntentStartAction        IntentKind = "start_action"
	IntentCompleteAction     IntentKind = "complete_action"
	IntentCompleteReflection IntentKind = "complete_reflection"
	IntentSurfaceReady       IntentKind = "surface_ready"
)

// Intent is one user action forwarded by the presentation layer,
// tagged with the session it believes it is acting on.
type Intent struct {
	SessionID string     `json:"session_id"`
	Kind      IntentKind `json:"kind"`
	// Causes is set for select_cause.
	Causes []Cause `json:"causes,omitempty"`
	// Activity is set for select_alternative.
	Activity string `json:"activity,omitempty"`
	// Minutes is set for set_intention; zero means use the configured
	// default duration.
	Minutes int `json:"minutes,omitempty"`
}
