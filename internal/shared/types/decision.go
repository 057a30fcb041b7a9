package types

// Outcome is the trigger evaluator's verdict for one evaluation call.
// Exactly one outcome is produced per call.
type Outcome string

const (
	// OutcomeSuppress means do nothing: a live intention timer or a live
	// quick-task timer covers the app.
	OutcomeSuppress Outcome = "suppress"
	// OutcomeOfferQuickTask means surface the quick-task decision screen.
	OutcomeOfferQuickTask Outcome = "offer_quick_task"
	// OutcomeStartIntervention means launch the full conscious-use flow.
	OutcomeStartIntervention Outcome = "start_intervention"
)

// Decision carries an outcome plus the data the session layer needs to
// act on it.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	App     AppID   `json:"app"`
	// Remaining is the global quick-task quota left at decision time.
	// Only meaningful for OutcomeOfferQuickTask.
	Remaining int `json:"remaining,omitempty"`
	// Reason is a short diagnostic tag ("intention_live",
	// "quick_task_live", "quota_available", "quota_exhausted").
	Reason string `json:"reason,omitempty"`
}

// WakeReason is the native layer's reason code for launching the
// presentation surface.
type WakeReason string

const (
	WakeMonitoredForeground WakeReason = "monitored_app_foreground"
	WakeQuickTaskExpired    WakeReason = "quick_task_expired_in_foreground"
	WakeExplicitResume      WakeReason = "explicit_resume"
	WakePostQuickTaskChoice WakeReason = "post_quick_task_choice"
)
