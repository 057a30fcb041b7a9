// Package resilience provides the circuit breaker guarding calls to the
// native layer. The service must keep deciding even when its native
// peer is down; the breaker turns a dead peer into fast, quiet no-ops
// instead of pile-ups.
package resilience
