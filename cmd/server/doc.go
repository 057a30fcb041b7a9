// Package main is the entry point for the pause decision service.
//
// The service owns every intervention decision for the companion mobile
// app: the native layer streams raw app-foreground events in over a
// websocket, the engine classifies and evaluates them against timer and
// quota state, and the presentation layer renders whatever system
// session the service pushes back.
//
// Architecture:
//
//	Native layer (events)  → Go service → Presentation surface (UI)
//	Native layer (timers)  ←
//
// The server provides:
//   - Websocket ingest for foreground events
//   - Websocket push of session state
//   - REST API for intents and runtime settings
//   - Prometheus metrics
//
// Configuration is environment variables only (12-factor); see the
// config package for the full knob list.
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown
package main
