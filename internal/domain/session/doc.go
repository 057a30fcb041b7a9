// Package session owns the system-session arbitration and the two
// inner state machines it selects between: the quick-task session
// (offering, active, post-choice) and the intervention session
// (breathing through reflection).
//
// Session presence is the sole authority for whether a blocking
// presentation surface exists. The UI renders whatever kind is active
// and forwards button presses as intents; it never decides which flow
// to show. At most one system session is non-idle at a time, and
// replacing it is always an explicit transition.
package session
