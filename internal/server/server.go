package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apihttp "github.com/embedview/playerbridge/internal/api/http"
	"github.com/embedview/playerbridge/internal/api/middleware"
	"github.com/embedview/playerbridge/internal/config"
	"github.com/embedview/playerbridge/internal/logging"
	"github.com/embedview/playerbridge/internal/monitoring"
	"github.com/embedview/playerbridge/internal/session"
	"github.com/embedview/playerbridge/internal/ws"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router   *gin.Engine
	sessions *session.Manager
	httpSrv  *http.Server
	log      *logging.Logger
}

// New builds the server: config, metrics, session manager, routes.
func New(cfg *config.Config, log *logging.Logger) (*Server, error) {
	flags, err := config.LoadPlayerFlags(cfg.Player.FlagsFile)
	if err != nil {
		return nil, fmt.Errorf("player flags: %w", err)
	}

	metrics := monitoring.NewMetrics()
	sessions := session.NewManager(cfg, flags, log, metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(middleware.RequestID(log))
	router.Use(metrics.Middleware())
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	handlers := apihttp.NewHandlers(sessions, log)
	wsHandler := ws.NewHandler(sessions, log, metrics)

	router.GET("/health", handlers.Health)
	router.GET("/metrics", metrics.Handler())

	router.POST("/players", handlers.CreatePlayer)
	router.GET("/players", handlers.ListPlayers)
	router.GET("/players/:id", handlers.GetPlayer)
	router.DELETE("/players/:id", handlers.ClosePlayer)

	router.POST("/players/:id/commands", handlers.Command)
	router.GET("/players/:id/current-time", handlers.CurrentTime)
	router.GET("/players/:id/duration", handlers.Duration)
	router.GET("/players/:id/playback-rate", handlers.PlaybackRate)
	router.GET("/players/:id/paused", handlers.Paused)
	router.POST("/players/:id/navigate", handlers.Navigate)

	router.GET("/players/:id/stream", wsHandler.Stream)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	return &Server{
		router:   router,
		sessions: sessions,
		httpSrv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log.Component("server"),
	}, nil
}

// Run starts serving. Blocks until the listener fails or Shutdown runs.
func (s *Server) Run() error {
	s.log.Info("control server listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the listener and closes every live player.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpSrv.Shutdown(ctx)
	s.sessions.Shutdown()
	s.log.Info("server stopped")
	return err
}
