// Package server exposes sessions over HTTP and serves the web UI.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alkime/audioscribe/internal/config"
	"github.com/alkime/audioscribe/internal/session"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine
	store  *session.Store
}

// New creates a new Server instance
func New(cfg *config.Config, logger *slog.Logger, store *session.Store) *Server {
	// Set Gin mode based on environment
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// Configure proxy trust for production (Fly.io)
	if cfg.Env == config.EnvProduction {
		router.TrustedPlatform = gin.PlatformFlyIO
		logger.Debug("Configured trusted platform", "platform", "fly.io")
	}

	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = min(cfg.MaxUploadBytes, 32<<20)
	}

	server := &Server{
		config: cfg,
		logger: logger,
		router: router,
		store:  store,
	}

	// Setup middleware and routes
	setupSecurityMiddleware(router, cfg, logger)
	setupStatic(router, logger)
	server.setupRoutes()

	return server
}

// Router returns the underlying handler, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Store returns the session store.
func (s *Server) Store() *session.Store {
	return s.store
}

// Run starts the HTTP server
func Run(s *Server) error {
	s.logger.Info("Server listening", "port", s.config.Port)
	return s.router.Run(":" + s.config.Port)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/config", s.handleConfig)
	api.POST("/sessions", s.handleCreateSession)

	sess := api.Group("/sessions/:id", s.loadWorkspace)
	{
		sess.GET("", s.handleSnapshot)
		sess.GET("/events", s.handleEvents)
		sess.POST("/file", s.handleUpload)
		sess.DELETE("/file", s.handleClearFile)
		sess.POST("/transcribe", s.handleTranscribe)
		sess.POST("/dismiss", s.handleDismiss)
		sess.POST("/refine", s.handleRefine)
		sess.PUT("/transcript", s.handleSetTranscript)
		sess.PUT("/remix", s.handleSetRemix)
		sess.PUT("/instruction", s.handleSetInstruction)
		sess.PUT("/final", s.handleSetFinal)
		sess.POST("/final/fragments", s.handleAddFragment)
		sess.POST("/final/commands", s.handleCommand)
		sess.PUT("/tab", s.handleSetTab)
		sess.POST("/clear", s.handleClear)
		sess.GET("/export/:target", s.handleExport)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "audioscribe",
	})
}
