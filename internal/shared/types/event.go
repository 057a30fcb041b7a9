package types

import "time"

// AppID is an opaque platform package/bundle identifier.
// It keys all per-app state.
type AppID string

// ForegroundEvent is one foreground-app-change notification from the
// native monitoring layer. Timestamps are epoch milliseconds as reported
// by the device; duplicates (same app repeated) are expected.
type ForegroundEvent struct {
	App       AppID `json:"package_name"`
	Timestamp int64 `json:"timestamp"`
}

// Time returns the event timestamp as a time.Time.
func (e ForegroundEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// EventClass is the filter's verdict on a raw foreground event.
type EventClass string

const (
	// ClassMeaningful is a real app the user is using.
	ClassMeaningful EventClass = "meaningful"
	// ClassLauncherNoise is a launcher/home-screen package or our own
	// surface regaining focus transiently.
	ClassLauncherNoise EventClass = "launcher_noise"
	// ClassHeartbeat is a repeat of the current meaningful app with no
	// state change in between.
	ClassHeartbeat EventClass = "heartbeat"
	// ClassStale arrived with a timestamp older than one already seen
	// for the same app.
	ClassStale EventClass = "stale"
)
