package ws

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pauselabs/pause/backend/internal/domain/session"
	"github.com/pauselabs/pause/backend/internal/infrastructure/logging"
)

// SessionHandler pushes session-state changes to the presentation
// layer. The UI renders whatever arrives; it holds no logic of its own.
type SessionHandler struct {
	sessions *session.Manager
	log      *logging.Logger
}

// NewSessionHandler creates the session-push handler.
func NewSessionHandler(sessions *session.Manager, log *logging.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: log.Named("ws.session")}
}

// HandleConnection upgrades, replays the current state, then streams
// every change until the client goes away.
func (h *SessionHandler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("session stream upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates := h.sessions.Subscribe()
	defer h.sessions.Unsubscribe(updates)

	// The subscription does not replay, so seed the client explicitly.
	if err := conn.WriteJSON(h.sessions.Snapshot()); err != nil {
		return
	}

	// Read pump exists only to observe the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(state); err != nil {
				h.log.Debug("session push write failed", zap.Error(err))
				return
			}
		}
	}
}
