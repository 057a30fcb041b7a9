package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/pauselabs/pause/backend/internal/api/http"
	"github.com/pauselabs/pause/backend/internal/api/middleware"
	"github.com/pauselabs/pause/backend/internal/api/ws"
	"github.com/pauselabs/pause/backend/internal/domain/apps"
	"github.com/pauselabs/pause/backend/internal/domain/filter"
	"github.com/pauselabs/pause/backend/internal/domain/session"
	"github.com/pauselabs/pause/backend/internal/domain/store"
	"github.com/pauselabs/pause/backend/internal/domain/trigger"
	"github.com/pauselabs/pause/backend/internal/infrastructure/config"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/infrastructure/monitoring"
	"github.com/pauselabs/pause/backend/internal/native"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

// Server wires the decision pipeline and serves the API.
type Server struct {
	router  *gin.Engine
	engine  *trigger.Engine
	http    *http.Server
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics

	cancelSweeps context.CancelFunc
}

// New builds the full service from config.
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		var err error
		logger, err = logging.New(logging.Config{Level: cfg.Logging.Level})
		if err != nil {
			return nil, err
		}
	}

	logger.Info("initializing pause backend",
		zap.String("addr", cfg.Server.Host+":"+cfg.Server.Port),
		zap.Bool("native_bridge", cfg.Native.Enabled),
	)

	metrics := monitoring.NewMetrics()

	// Membership sets, then the shared stores.
	registry := apps.NewRegistry(types.AppID(cfg.Apps.SelfPackage))
	if cfg.Apps.SeedPath != "" {
		if err := apps.Seed(registry, cfg.Apps.SeedPath, logger); err != nil {
			logger.Warn("app seed failed, continuing with defaults", zap.Error(err))
		}
	}

	settings := config.NewSettings(cfg.Engine)
	intentions := store.NewIntentionStore()
	quickTasks := store.NewQuickTaskStore()
	quota := store.NewQuota(settings.Quota)
	slot := store.NewSlot()

	bridge := native.NewBridge(cfg.Native, logger, metrics)

	sessions := session.NewManager(intentions, quickTasks, quota, slot, settings, bridge, logger, metrics)
	eval := trigger.NewEvaluator(intentions, quickTasks, quota, slot, sessions, logger, metrics)
	eventFilter := filter.New(registry, cfg.Engine.TransitionWindow(), logger)
	engine := trigger.NewEngine(eventFilter, registry, eval, sessions, intentions, quickTasks,
		trigger.SystemClock{}, cfg.Engine.SweepInterval(), logger, metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	handlers := apihttp.NewHandlers(sessions, engine, settings, registry, bridge, logger)
	eventsWS := ws.NewEventsHandler(engine, logger)
	sessionWS := ws.NewSessionHandler(sessions, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	router.GET("/session", handlers.GetSession)
	router.POST("/session/intent", handlers.PostIntent)

	router.GET("/settings", handlers.GetSettings)
	router.PUT("/settings", handlers.PutSettings)

	router.GET("/ws/events", eventsWS.HandleConnection)
	router.GET("/ws/session", sessionWS.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Engine.DevHooks {
		logger.Warn("dev hooks enabled, mounting test-only facade")
		dev := apihttp.NewDevHandlers(intentions, quickTasks, quota, slot, sessions, engine, logger)
		devGroup := router.Group("/dev")
		devGroup.POST("/quota/reset", dev.ResetQuota)
		devGroup.POST("/slot/clear", dev.ClearSlot)
		devGroup.POST("/timers/expire", dev.ExpireTimers)
	}

	return &Server{
		router:  router,
		engine:  engine,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Run starts the sweep loop and serves HTTP until Shutdown.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelSweeps = cancel
	go s.engine.Run(ctx)

	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("serving", zap.String("addr", addr))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops sweeps and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	if s.cancelSweeps != nil {
		s.cancelSweeps()
	}
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.logger.Sync()
	return err
}
