// Package ws streams player status, time updates, and tagged events to
// WebSocket clients.
package ws

import (
	"net/http"
	"time"

	"github.com/embedview/playerbridge/internal/id"
	"github.com/embedview/playerbridge/internal/logging"
	"github.com/embedview/playerbridge/internal/monitoring"
	"github.com/embedview/playerbridge/internal/player"
	"github.com/embedview/playerbridge/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser origin checks are the deployment's concern
	},
}

// Handler manages WebSocket event stream connections.
type Handler struct {
	sessions *session.Manager
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a WebSocket handler.
func NewHandler(sessions *session.Manager, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{
		sessions: sessions,
		log:      log.Component("ws"),
		metrics:  metrics,
	}
}

// Stream upgrades the connection and forwards one player's streams until
// the client disconnects or the player is disposed.
func (h *Handler) Stream(c *gin.Context) {
	inst, err := h.sessions.Get(id.PlayerID(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	clientID := uuid.NewString()
	log := h.log.With(
		zap.String("client_id", clientID),
		zap.String("player_id", inst.ID.String()))
	log.Info("event stream connected")

	statusCh, cancelStatus := inst.Controller.Status().Subscribe(32)
	defer cancelStatus()
	timeCh, cancelTimes := inst.Controller.TimeUpdates().Subscribe(32)
	defer cancelTimes()
	eventCh, cancelEvents := inst.Controller.Events().Subscribe(32)
	defer cancelEvents()

	// Reader: only detects disconnects; inbound frames are ignored.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_ = conn.WriteJSON(gin.H{
		"type":      "connected",
		"player_id": inst.ID.String(),
	})

	for {
		select {
		case status, ok := <-statusCh:
			if !ok {
				h.sendClosed(conn)
				return
			}
			if err := conn.WriteJSON(gin.H{
				"type":      "status",
				"status":    status.String(),
				"timestamp": time.Now().Unix(),
			}); err != nil {
				return
			}
		case update, ok := <-timeCh:
			if !ok {
				h.sendClosed(conn)
				return
			}
			if err := conn.WriteJSON(gin.H{
				"type":         "time_update",
				"current_time": update.CurrentTime,
				"duration":     update.Duration,
				"extra":        update.Extra,
			}); err != nil {
				return
			}
		case event, ok := <-eventCh:
			if !ok {
				h.sendClosed(conn)
				return
			}
			if err := conn.WriteJSON(eventBody(event)); err != nil {
				return
			}
		case <-gone:
			log.Info("event stream disconnected")
			return
		}
	}
}

func (h *Handler) sendClosed(conn *websocket.Conn) {
	_ = conn.WriteJSON(gin.H{"type": "player_closed"})
}

func eventBody(event player.Event) gin.H {
	body := gin.H{"type": "event", "kind": event.Kind.String()}
	switch event.Kind {
	case player.EventPip, player.EventFullscreen:
		body["active"] = event.Active
	case player.EventRateChange:
		body["rate"] = event.Rate
	case player.EventLog:
		body["message"] = event.Message
	}
	return body
}
