// Package monitoring exposes Prometheus metrics for the decision
// service: foreground events by class, trigger decisions by outcome,
// session lifecycle, quota level, sweep activity, and native-bridge
// health. Metrics are registered once per process via promauto.
package monitoring
