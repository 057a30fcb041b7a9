// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for humans
//
// The decision service logs on the foreground-event hot path, so the
// zero-allocation zap core matters here more than in a typical service.
//
// Example:
//
//	logger := logging.NewDefault()
//	logger.Info("decision", zap.String("app", string(app)), zap.String("outcome", "suppress"))
package logging
