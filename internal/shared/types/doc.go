// Package types defines domain types shared across packages.
//
// These are the vocabulary of the decision service: foreground events
// delivered by the native monitoring layer, decisions produced by the
// trigger evaluator, and the session records that drive the presentation
// surface. Types here have no behavior beyond small helpers; all logic
// lives in the domain packages.
package types
