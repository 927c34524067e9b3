// Package session manages the lifecycle of player instances: one guard,
// surface, bridge, and controller per player, assembled at creation and
// torn down together.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/embedview/playerbridge/internal/bridge"
	"github.com/embedview/playerbridge/internal/config"
	"github.com/embedview/playerbridge/internal/guard"
	"github.com/embedview/playerbridge/internal/id"
	"github.com/embedview/playerbridge/internal/logging"
	"github.com/embedview/playerbridge/internal/monitoring"
	"github.com/embedview/playerbridge/internal/player"
	"github.com/embedview/playerbridge/internal/surface"
	"github.com/embedview/playerbridge/internal/surface/webview"
	"go.uber.org/zap"
)

// ErrNotFound is returned for operations on unknown player IDs.
var ErrNotFound = errors.New("player not found")

// Instance bundles everything owned by one live player.
type Instance struct {
	ID         id.PlayerID
	Controller *player.Controller
	Surface    surface.Surface
	Guard      *guard.Guard
	CreatedAt  time.Time

	bridge *bridge.Bridge
}

// Manager creates, tracks, and closes player instances.
type Manager struct {
	mu      sync.RWMutex
	players map[id.PlayerID]*Instance

	cfg          *config.Config
	defaultFlags map[string]any
	log          *logging.Logger
	metrics      *monitoring.Metrics
}

// NewManager creates a manager. defaultFlags are merged under each
// player's own flags at creation; the player's values win.
func NewManager(cfg *config.Config, defaultFlags map[string]any, log *logging.Logger, metrics *monitoring.Metrics) *Manager {
	return &Manager{
		players:      make(map[id.PlayerID]*Instance),
		cfg:          cfg,
		defaultFlags: defaultFlags,
		log:          log.Component("session"),
		metrics:      metrics,
	}
}

// Create assembles a new player instance. A malformed base URL is a
// setup error and is returned; everything past construction reports
// through logs and streams instead.
func (m *Manager) Create(params player.Parameters) (*Instance, error) {
	if params.BaseURL == "" {
		params.BaseURL = m.cfg.Player.BaseURL
	}
	params.Flags = mergeFlags(m.defaultFlags, params.Flags)

	playerID := id.NewPlayerID()
	log := m.log.WithPlayer(playerID.String())

	g, err := guard.New(params.BaseURL, m.log)
	if err != nil {
		return nil, err
	}

	surf, err := webview.New(webview.Options{
		Channels: bridge.ChannelNames(),
		Policy:   m.policyFor(g),
		Logger:   m.log,
	})
	if err != nil {
		return nil, err
	}

	streams := player.NewStreams()
	br := bridge.New(surf, streams, m.log, m.metrics)
	br.Start()
	ctrl := player.NewController(playerID, params, br, streams, m.log)

	inst := &Instance{
		ID:         playerID,
		Controller: ctrl,
		Surface:    surf,
		Guard:      g,
		CreatedAt:  time.Now(),
		bridge:     br,
	}

	m.mu.Lock()
	m.players[playerID] = inst
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.PlayersActive.Inc()
	}
	log.Info("player created",
		zap.String("video_id", params.VideoID),
		zap.String("base_url", params.BaseURL))
	return inst, nil
}

// policyFor adapts a guard into a surface navigation policy, counting
// each decision.
func (m *Manager) policyFor(g *guard.Guard) surface.NavigationPolicy {
	return func(destination string) bool {
		decision := g.Decide(destination)
		if m.metrics != nil {
			m.metrics.NavigationsTotal.WithLabelValues(decision.String()).Inc()
		}
		return decision == guard.Allow
	}
}

// Get returns a live instance by ID.
func (m *Manager) Get(playerID id.PlayerID) (*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.players[playerID]
	if !ok {
		return nil, ErrNotFound
	}
	return inst, nil
}

// List returns all live instances.
func (m *Manager) List() []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Instance, 0, len(m.players))
	for _, inst := range m.players {
		out = append(out, inst)
	}
	return out
}

// Close disposes one player: streams first, then the surface. The bridge
// loop drains and exits once the surface closes its message channel.
func (m *Manager) Close(playerID id.PlayerID) error {
	m.mu.Lock()
	inst, ok := m.players[playerID]
	if ok {
		delete(m.players, playerID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	inst.Controller.Dispose()
	if err := inst.Surface.Close(); err != nil {
		m.log.Warn("surface close failed",
			zap.String("player_id", playerID.String()),
			zap.Error(err))
	}
	<-inst.bridge.Done()

	if m.metrics != nil {
		m.metrics.PlayersActive.Dec()
	}
	m.log.Info("player closed", zap.String("player_id", playerID.String()))
	return nil
}

// Shutdown closes every live player.
func (m *Manager) Shutdown() {
	for _, inst := range m.List() {
		_ = m.Close(inst.ID)
	}
}

func mergeFlags(defaults, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
