// Package store holds the passive timer and quota state consulted by
// the trigger evaluator: per-app intention timers, per-app quick-task
// timers, the global rolling-window quick-task quota, and the single
// global intervention-in-progress slot.
//
// Stores never mutate themselves on a clock. Expiry is detected by
// callers passing `now` into Check/Remaining/Sweep; timers found
// expired are deleted lazily at that point. All mutation happens via
// explicit calls from the trigger evaluator or the session layer.
package store
