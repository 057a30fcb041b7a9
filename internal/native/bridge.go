package native

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/pauselabs/pause/backend/internal/infrastructure/config"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/infrastructure/monitoring"
	"github.com/pauselabs/pause/backend/internal/infrastructure/resilience"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// Bridge talks to the native layer over localhost HTTP. All commands
// are best-effort: failures are counted and logged, never surfaced to
// the engine, and a breaker keeps a dead peer from backing anything up.
type Bridge struct {
	client  *resty.Client
	breaker *resilience.Breaker
	enabled bool
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewBridge creates the bridge from config. When the bridge is disabled
// every method is a silent no-op, which is the desktop-dev setup.
func NewBridge(cfg config.NativeConfig, log *logging.Logger, metrics *monitoring.Metrics) *Bridge {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = time.Second
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(cfg.Address).
		SetTimeout(2 * time.Second)

	breaker := resilience.New("native", resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         15 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("native bridge circuit changed",
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Bridge{
		client:  client,
		breaker: breaker,
		enabled: cfg.Enabled,
		log:     log.Named("native"),
		metrics: metrics,
	}
}

type timerPayload struct {
	App       types.AppID `json:"package_name"`
	ExpiresAt int64       `json:"expires_at"`
}

type finishPayload struct {
	Home bool `json:"home"`
}

type wakePayload struct {
	Reason types.WakeReason `json:"reason"`
}

// StoreQuickTaskTimer forwards a countdown to the native shadow store.
func (b *Bridge) StoreQuickTaskTimer(app types.AppID, expiresAt time.Time) {
	b.send("store_quick_task_timer", func() error {
		_, err := b.client.R().
			SetBody(timerPayload{App: app, ExpiresAt: expiresAt.UnixMilli()}).
			Post("/timers/quick-task")
		return err
	})
}

// ClearQuickTaskTimer removes the shadow countdown for app.
func (b *Bridge) ClearQuickTaskTimer(app types.AppID) {
	b.send("clear_quick_task_timer", func() error {
		_, err := b.client.R().
			SetPathParam("app", string(app)).
			Delete("/timers/quick-task/{app}")
		return err
	})
}

// FinishSurface tears down the presentation surface, landing on home
// when home is true, otherwise resuming the previous app.
func (b *Bridge) FinishSurface(home bool) {
	b.send("finish_surface", func() error {
		_, err := b.client.R().
			SetBody(finishPayload{Home: home}).
			Post("/surface/finish")
		return err
	})
}

// WakeReason asks the native side why the surface was last woken. The
// only synchronous call on the bridge; callers treat an error as
// "unknown" and render from session state alone.
func (b *Bridge) WakeReason(ctx context.Context) (types.WakeReason, error) {
	if !b.enabled {
		return "", fmt.Errorf("native bridge disabled")
	}
	var out wakePayload
	err := b.breaker.Execute(func() error {
		resp, err := b.client.R().
			SetContext(ctx).
			SetResult(&out).
			Get("/wake-reason")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("wake-reason query: %s", resp.Status())
		}
		return nil
	})
	if b.metrics != nil {
		b.metrics.RecordBridgeCall("wake_reason", err)
	}
	if err != nil {
		return "", err
	}
	return out.Reason, nil
}

// send runs one fire-and-forget command off the caller's goroutine so
// a slow peer never blocks a decision path.
func (b *Bridge) send(op string, fn func() error) {
	if !b.enabled {
		return
	}
	go func() {
		err := b.breaker.Execute(fn)
		if b.metrics != nil {
			b.metrics.RecordBridgeCall(op, err)
		}
		if err != nil {
			b.log.Debug("native bridge call failed",
				zap.String("op", op), zap.Error(err))
		}
	}()
}
