// Package http exposes the control API for remote-driving embedded
// players.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/embedview/playerbridge/internal/api/middleware"
	"github.com/embedview/playerbridge/internal/id"
	"github.com/embedview/playerbridge/internal/logging"
	"github.com/embedview/playerbridge/internal/player"
	"github.com/embedview/playerbridge/internal/session"
	"github.com/embedview/playerbridge/internal/surface/webview"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultAskTimeout bounds request-style calls at the API edge. The
// bridge itself never times out, so the handler imposes the deadline.
const defaultAskTimeout = 5 * time.Second

// Handlers serves the control API.
type Handlers struct {
	sessions   *session.Manager
	log        *logging.Logger
	askTimeout time.Duration
}

// NewHandlers creates the control API handlers.
func NewHandlers(sessions *session.Manager, log *logging.Logger) *Handlers {
	return &Handlers{
		sessions:   sessions,
		log:        log.Component("api"),
		askTimeout: defaultAskTimeout,
	}
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreatePlayerRequest is the player construction payload.
type CreatePlayerRequest struct {
	VideoID       string         `json:"video_id" binding:"required"`
	ExternalID    string         `json:"external_id"`
	BaseURL       string         `json:"base_url"`
	SeekToSeconds int            `json:"seek_to_seconds"`
	Fallback      string         `json:"fullscreen_fallback"`
	Flags         map[string]any `json:"flags"`
}

// CreatePlayer constructs a new player instance.
func (h *Handlers) CreatePlayer(c *gin.Context) {
	var req CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inst, err := h.sessions.Create(player.Parameters{
		VideoID:    req.VideoID,
		ExternalID: req.ExternalID,
		BaseURL:    req.BaseURL,
		SeekTo:     time.Duration(req.SeekToSeconds) * time.Second,
		Fallback:   player.FullscreenFallback(req.Fallback),
		Flags:      req.Flags,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, playerSummary(inst))
}

// ListPlayers returns all live players.
func (h *Handlers) ListPlayers(c *gin.Context) {
	instances := h.sessions.List()
	out := make([]gin.H, 0, len(instances))
	for _, inst := range instances {
		out = append(out, playerSummary(inst))
	}
	c.JSON(http.StatusOK, gin.H{"players": out})
}

// GetPlayer returns one player with its rendered document view.
func (h *Handlers) GetPlayer(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}

	doc := inst.Surface.Document()
	body := playerSummary(inst)
	body["document"] = gin.H{
		"url":   doc.URL,
		"title": doc.Title,
	}
	body["allowed_hosts"] = inst.Guard.AllowedHosts()
	c.JSON(http.StatusOK, body)
}

// ClosePlayer disposes a player.
func (h *Handlers) ClosePlayer(c *gin.Context) {
	playerID := id.PlayerID(c.Param("id"))
	if err := h.sessions.Close(playerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": playerID.String()})
}

// CommandRequest is one fire-and-forget command. Fields beyond the name
// are read per command.
type CommandRequest struct {
	Command       string  `json:"command" binding:"required"`
	VideoID       string  `json:"video_id"`
	SeekToSeconds int     `json:"seek_to_seconds"`
	Volume        float64 `json:"volume"`
	Fullscreen    bool    `json:"fullscreen"`
}

// Command dispatches one fire-and-forget command. The response only
// acknowledges submission; outcomes surface on the event streams.
func (h *Handlers) Command(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctrl := inst.Controller
	switch req.Command {
	case "load":
		ctrl.Load(req.VideoID)
	case "play":
		ctrl.Play()
	case "pause":
		ctrl.Pause()
	case "stop":
		ctrl.Stop()
	case "seek":
		ctrl.SeekTo(time.Duration(req.SeekToSeconds) * time.Second)
	case "set_volume":
		ctrl.SetVolume(req.Volume)
	case "set_fullscreen":
		ctrl.SetFullscreen(req.Fullscreen)
	case "mute":
		ctrl.Mute()
	case "unmute":
		ctrl.Unmute()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown command: " + req.Command})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"submitted": req.Command})
}

// CurrentTime asks the player for its playback position.
func (h *Handlers) CurrentTime(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.askTimeout)
	defer cancel()

	v, err := inst.Controller.GetCurrentTime(ctx)
	if err != nil {
		h.noReply(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_time_ms": v.Milliseconds()})
}

// Duration asks the player for the video duration.
func (h *Handlers) Duration(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.askTimeout)
	defer cancel()

	v, err := inst.Controller.GetDuration(ctx)
	if err != nil {
		h.noReply(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duration_ms": v.Milliseconds()})
}

// PlaybackRate asks the player for its playback rate.
func (h *Handlers) PlaybackRate(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.askTimeout)
	defer cancel()

	v, err := inst.Controller.GetPlaybackRate(ctx)
	if err != nil {
		h.noReply(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"playback_rate": v})
}

// Paused asks the player whether playback is paused.
func (h *Handlers) Paused(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.askTimeout)
	defer cancel()

	v, err := inst.Controller.IsPaused(ctx)
	if err != nil {
		h.noReply(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": v})
}

// NavigateRequest asks the surface to load an embed page.
type NavigateRequest struct {
	URL string `json:"url" binding:"required"`
}

// Navigate loads an embed page into the player's surface, subject to the
// navigation guard.
func (h *Handlers) Navigate(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}

	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := inst.Surface.Navigate(c.Request.Context(), req.URL); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, webview.ErrNavigationBlocked) {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	doc := inst.Surface.Document()
	c.JSON(http.StatusOK, gin.H{"url": doc.URL, "title": doc.Title})
}

// instance resolves the :id path parameter, answering 404 itself on
// failure.
func (h *Handlers) instance(c *gin.Context) (*session.Instance, bool) {
	inst, err := h.sessions.Get(id.PlayerID(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return inst, true
}

// noReply maps a timed-out ask-call to a gateway timeout, correlated by
// request ID.
func (h *Handlers) noReply(c *gin.Context, err error) {
	h.log.Warn("ask call got no reply",
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.String("player_id", c.Param("id")),
		zap.Error(err))
	c.JSON(http.StatusGatewayTimeout, gin.H{"error": "no reply from player: " + err.Error()})
}

func playerSummary(inst *session.Instance) gin.H {
	params := inst.Controller.Parameters()
	return gin.H{
		"id":          inst.ID.String(),
		"video_id":    params.VideoID,
		"external_id": params.ExternalID,
		"base_url":    params.BaseURL,
		"created_at":  inst.CreatedAt.UTC().Format(time.RFC3339),
	}
}
