package ws

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pauselabs/pause/backend/internal/domain/trigger"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
	"github.com/pauselabs/pause/backend/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	// Localhost-only service; the native layer connects without an
	// Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandler ingests the native foreground-event stream.
type EventsHandler struct {
	engine *trigger.Engine
	log    *logging.Logger
}

// NewEventsHandler creates the event-stream handler.
func NewEventsHandler(engine *trigger.Engine, log *logging.Logger) *EventsHandler {
	return &EventsHandler{engine: engine, log: log.Named("ws.events")}
}

// HandleConnection upgrades and pumps raw event frames into the engine.
// Malformed frames are dropped with a log line; the stream stays up.
func (h *EventsHandler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("event stream upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.log.Info("native event stream connected", zap.String("remote", conn.RemoteAddr().String()))

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			h.log.Info("native event stream closed", zap.Error(err))
			return
		}

		var ev types.ForegroundEvent
		if err := sonic.Unmarshal(frame, &ev); err != nil {
			h.log.Warn("dropping malformed event frame", zap.Error(err))
			continue
		}
		if ev.App == "" || ev.Timestamp <= 0 {
			h.log.Warn("dropping incomplete event frame",
				zap.String("app", string(ev.App)), zap.Int64("timestamp", ev.Timestamp))
			continue
		}

		h.engine.HandleEvent(ev)
	}
}
