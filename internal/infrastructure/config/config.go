package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all process-start configuration.
type Config struct {
	Server  ServerConfig
	Native  NativeConfig
	Logging LogConfig
	Engine  EngineConfig
	Apps    AppsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8600"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// NativeConfig holds native-bridge configuration. The native layer is
// the foreground-event source and the shadow quick-task timer store.
type NativeConfig struct {
	Address string `envconfig:"NATIVE_ADDR" default:"http://127.0.0.1:8601"`
	Enabled bool   `envconfig:"NATIVE_ENABLED" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// EngineConfig holds the initial timer/quota knobs. All of these are
// runtime-mutable afterwards through the Settings store.
type EngineConfig struct {
	IntentionMinutes   int  `envconfig:"INTENTION_MINUTES" default:"2"`
	QuickTaskMinutes   int  `envconfig:"QUICK_TASK_MINUTES" default:"5"`
	QuotaMaxUses       int  `envconfig:"QUOTA_MAX_USES" default:"3"`
	QuotaWindowHours   int  `envconfig:"QUOTA_WINDOW_HOURS" default:"1"`
	QuotaUnlimited     bool `envconfig:"QUOTA_UNLIMITED" default:"false"`
	BreathingSeconds   int  `envconfig:"BREATHING_SECONDS" default:"30"`
	SweepSeconds       int  `envconfig:"SWEEP_SECONDS" default:"5"`
	TransitionWindowMS int  `envconfig:"TRANSITION_WINDOW_MS" default:"300"`
	DevHooks           bool `envconfig:"DEV_HOOKS" default:"false"`
}

// AppsConfig points at the TOML seed for launcher and monitored sets.
type AppsConfig struct {
	SeedPath string `envconfig:"APPS_SEED" default:""`
	// SelfPackage is our own surface's package name, filtered like a
	// launcher so the intervention UI never triggers itself.
	SelfPackage string `envconfig:"SELF_PACKAGE" default:"com.pauselabs.pause"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8600", Host: "127.0.0.1"},
		Native:  NativeConfig{Address: "http://127.0.0.1:8601", Enabled: true},
		Logging: LogConfig{Level: "info"},
		Engine: EngineConfig{
			IntentionMinutes:   2,
			QuickTaskMinutes:   5,
			QuotaMaxUses:       3,
			QuotaWindowHours:   1,
			BreathingSeconds:   30,
			SweepSeconds:       5,
			TransitionWindowMS: 300,
		},
		Apps: AppsConfig{SelfPackage: "com.pauselabs.pause"},
	}
}

// IntentionDuration returns the configured intention-timer default.
func (e EngineConfig) IntentionDuration() time.Duration {
	return time.Duration(e.IntentionMinutes) * time.Minute
}

// QuickTaskDuration returns the configured quick-task duration.
func (e EngineConfig) QuickTaskDuration() time.Duration {
	return time.Duration(e.QuickTaskMinutes) * time.Minute
}

// QuotaWindow returns the configured rolling-window span.
func (e EngineConfig) QuotaWindow() time.Duration {
	return time.Duration(e.QuotaWindowHours) * time.Hour
}

// BreathingDuration returns the configured breathing-phase length.
func (e EngineConfig) BreathingDuration() time.Duration {
	return time.Duration(e.BreathingSeconds) * time.Second
}

// SweepInterval returns the periodic sweep cadence.
func (e EngineConfig) SweepInterval() time.Duration {
	return time.Duration(e.SweepSeconds) * time.Second
}

// TransitionWindow returns the launcher mid-transition threshold.
func (e EngineConfig) TransitionWindow() time.Duration {
	return time.Duration(e.TransitionWindowMS) * time.Millisecond
}
