// Package config loads process configuration from environment variables
// and owns the runtime-mutable Settings store.
//
// Config is read once at startup (envconfig struct tags with defaults).
// Settings carries the subset of knobs the product allows changing at
// runtime; setters take effect on the next trigger evaluation.
package config
