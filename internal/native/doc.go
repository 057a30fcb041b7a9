// Package native is the outbound client for the native layer's small
// localhost HTTP surface. Timer mutations are forwarded fire-and-forget
// so the native side can pre-gate surface launches from its shadow
// store; the stores on this side stay authoritative for every decision,
// and a disagreement errs toward showing.
package native
