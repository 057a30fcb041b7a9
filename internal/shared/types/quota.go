package types

import "time"

// QuotaConfig is the quick-task quota configuration: either a bounded
// rolling window or the unlimited override used by test/premium builds.
// Unlimited is a distinct variant, not a large max-uses value, so the
// rolling-window filter can be bypassed entirely.
type QuotaConfig struct {
	Unlimited bool          `json:"unlimited"`
	MaxUses   int           `json:"max_uses"`
	Window    time.Duration `json:"window"`
}

// LimitedQuota returns a bounded rolling-window configuration.
func LimitedQuota(maxUses int, window time.Duration) QuotaConfig {
	return QuotaConfig{MaxUses: maxUses, Window: window}
}

// UnlimitedQuota returns the unlimited override configuration.
func UnlimitedQuota() QuotaConfig {
	return QuotaConfig{Unlimited: true}
}
