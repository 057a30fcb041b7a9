package session

import (
	"errors"
	"time"

	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// ErrSessionMismatch rejects an intent tagged with a session identifier
// that no longer matches the active session, e.g. a stale screen's
// button press arriving after the session was replaced. The action is
// never applied to the new session.
var ErrSessionMismatch = errors.New("intent targets a stale session")

// ErrUnknownIntent rejects an intent kind the current phase does not
// accept.
var ErrUnknownIntent = errors.New("intent not valid for current session state")

// Native is the native-layer command surface the session layer drives.
// Implementations are best-effort fire-and-forget; the authoritative
// stores on this side always win for decisions.
type Native interface {
	// StoreQuickTaskTimer forwards a countdown to the native shadow
	// store so the native side can pre-gate surface launches.
	StoreQuickTaskTimer(app types.AppID, expiresAt time.Time)
	// ClearQuickTaskTimer removes the shadow countdown.
	ClearQuickTaskTimer(app types.AppID)
	// FinishSurface tears down the presentation surface, landing on a
	// neutral home screen when home is true, otherwise resuming the
	// previous app.
	FinishSurface(home bool)
}

// State is the full session snapshot pushed to the presentation layer.
type State struct {
	Session      types.SystemSession     `json:"session"`
	QuickTask    types.QuickTaskPhase    `json:"quick_task"`
	Intervention types.InterventionPhase `json:"intervention"`
	// Remaining is the quota level shown on the offer screen.
	Remaining int `json:"remaining,omitempty"`
	// Causes and Activity echo the user's in-flow selections.
	Causes   []types.Cause `json:"causes,omitempty"`
	Activity string        `json:"activity,omitempty"`
}

// quickTask is the quick-task machine's private state.
type quickTask struct {
	phase     types.QuickTaskPhase
	app       types.AppID
	remaining int
}

// intervention is the intervention machine's private state. The flow is
// one-shot: cancellation resets everything, there is no resume.
type intervention struct {
	phase     types.InterventionPhase
	app       types.AppID
	causes    []types.Cause
	activity  string
	enteredAt time.Time // when the current phase began
}

func (iv *intervention) reset() {
	*iv = intervention{phase: types.IVIdle}
}
