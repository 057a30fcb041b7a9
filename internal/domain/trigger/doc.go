// Package trigger is the decision core. The Evaluator runs the nested
// decision tree over the timer/quota stores and emits exactly one
// outcome per call: suppress, offer a quick task, or start an
// intervention. The Engine funnels classified foreground events and
// periodic sweeps into the evaluator under a single writer lock.
//
// Expiry is detected by pull, never pushed by timers: a new meaningful
// transition, the current-foreground sweep, or the all-apps GC sweep.
// Evaluation is pure synchronous computation over in-memory state given
// an explicit `now`, which keeps the whole tree testable without
// wall-clock waits.
package trigger
