package config

import (
	"sync"
	"time"

	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// Settings is the runtime-mutable view of the engine knobs. Setter
// calls take effect on the next evaluation; nothing requires a restart.
type Settings struct {
	mu        sync.RWMutex
	intention time.Duration
	quickTask time.Duration
	breathing time.Duration
	quota     types.QuotaConfig
}

// NewSettings seeds runtime settings from the process-start config.
func NewSettings(cfg EngineConfig) *Settings {
	quota := types.LimitedQuota(cfg.QuotaMaxUses, cfg.QuotaWindow())
	if cfg.QuotaUnlimited {
		quota = types.UnlimitedQuota()
	}
	return &Settings{
		intention: cfg.IntentionDuration(),
		quickTask: cfg.QuickTaskDuration(),
		breathing: cfg.BreathingDuration(),
		quota:     quota,
	}
}

// IntentionDuration returns the current intention-timer default.
func (s *Settings) IntentionDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intention
}

// SetIntentionDuration updates the intention-timer default.
func (s *Settings) SetIntentionDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intention = d
}

// QuickTaskDuration returns the current quick-task duration.
func (s *Settings) QuickTaskDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quickTask
}

// SetQuickTaskDuration updates the quick-task duration.
func (s *Settings) SetQuickTaskDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quickTask = d
}

// BreathingDuration returns the current breathing-phase length.
func (s *Settings) BreathingDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.breathing
}

// SetBreathingDuration updates the breathing-phase length.
func (s *Settings) SetBreathingDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breathing = d
}

// Quota returns the current quick-task quota configuration.
func (s *Settings) Quota() types.QuotaConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quota
}

// SetQuota updates the quick-task quota configuration.
func (s *Settings) SetQuota(q types.QuotaConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota = q
}

// Snapshot is the serializable view of current settings.
type Snapshot struct {
	IntentionMinutes int               `json:"intention_minutes"`
	QuickTaskMinutes int               `json:"quick_task_minutes"`
	BreathingSeconds int               `json:"breathing_seconds"`
	Quota            types.QuotaConfig `json:"quota"`
}

// Snapshot returns the current settings as one consistent view.
func (s *Settings) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		IntentionMinutes: int(s.intention / time.Minute),
		QuickTaskMinutes: int(s.quickTask / time.Minute),
		BreathingSeconds: int(s.breathing / time.Second),
		Quota:            s.quota,
	}
}
