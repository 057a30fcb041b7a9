package apps

import (
	"sort"
	"sync"

	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// defaultLaunchers covers stock Android plus the major OEM home screens.
var defaultLaunchers = []types.AppID{
	"com.android.launcher",
	"com.android.launcher3",
	"com.google.android.apps.nexuslauncher",
	"com.sec.android.app.launcher",
	"com.miui.home",
	"com.huawei.android.launcher",
	"com.oppo.launcher",
	"com.vivo.launcher",
	"com.oneplus.launcher",
	"net.oneplus.launcher",
	"com.samsung.android.app.launcher",
	"com.teslacoilsw.launcher",
	"com.microsoft.launcher",
	"com.android.systemui",
}

// Registry holds the monitored and infrastructure membership sets.
type Registry struct {
	mu        sync.RWMutex
	monitored map[types.AppID]struct{}
	launchers map[types.AppID]struct{}
	self      types.AppID
}

// NewRegistry creates a registry with the built-in launcher set.
// self is our own surface's package name; it is classified as
// infrastructure so the intervention UI never triggers itself.
func NewRegistry(self types.AppID) *Registry {
	launchers := make(map[types.AppID]struct{}, len(defaultLaunchers))
	for _, id := range defaultLaunchers {
		launchers[id] = struct{}{}
	}
	return &Registry{
		monitored: make(map[types.AppID]struct{}),
		launchers: launchers,
		self:      self,
	}
}

// IsMonitored reports whether app is a designated high-regret app.
func (r *Registry) IsMonitored(app types.AppID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.monitored[app]
	return ok
}

// IsInfrastructure reports whether app is a launcher/home screen or our
// own surface.
func (r *Registry) IsInfrastructure(app types.AppID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if app == r.self {
		return true
	}
	_, ok := r.launchers[app]
	return ok
}

// Monitor adds an app to the monitored set.
func (r *Registry) Monitor(app types.AppID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.monitored[app] = struct{}{}
}

// Unmonitor removes an app from the monitored set.
func (r *Registry) Unmonitor(app types.AppID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.monitored, app)
}

// SetMonitored replaces the monitored set wholesale.
func (r *Registry) SetMonitored(apps []types.AppID) {
	next := make(map[types.AppID]struct{}, len(apps))
	for _, id := range apps {
		next[id] = struct{}{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.monitored = next
}

// AddLauncher extends the infrastructure set, e.g. from the seed file.
func (r *Registry) AddLauncher(app types.AppID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.launchers[app] = struct{}{}
}

// Monitored returns the monitored set, sorted for stable output.
func (r *Registry) Monitored() []types.AppID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.AppID, 0, len(r.monitored))
	for id := range r.monitored {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
