package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alkime/audioscribe/internal/config"
	"github.com/alkime/audioscribe/internal/content"
	"github.com/alkime/audioscribe/internal/logger"
	"github.com/alkime/audioscribe/internal/server"
	"github.com/alkime/audioscribe/internal/session"
)

const sweepInterval = time.Minute

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	appLogger := logger.SetupLogger(cfg)

	// Log startup information
	appLogger.Info("Starting AudioScribe server",
		"env", cfg.Env,
		"port", cfg.Port,
		"transcribe_provider", cfg.TranscribeProvider,
		"refine_provider", cfg.RefineProvider,
	)

	// Set Gin mode based on environment
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	svc, err := content.New(content.OptionsFromConfig(cfg))
	if err != nil {
		var cerr *content.ConfigurationError
		if errors.As(err, &cerr) {
			appLogger.Error("Remote text service is not configured", "missing", cerr.Missing)
		}
		log.Fatalf("Fatal: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := session.NewStore(ctx, svc, cfg.SessionTTL,
		session.WithTimeout(cfg.RemoteTimeout),
		session.WithLogger(appLogger),
	)
	defer store.Close()

	go store.RunSweeper(ctx, sweepInterval)

	srv := server.New(cfg, appLogger, store)

	// Start server
	if err := server.Run(srv); err != nil {
		appLogger.Error("Failed to start server", "error", err)
		log.Fatalf("Fatal: %v", err) //nolint:gocritic // exitAfterDefer is fine on a fatal start failure
	}
}
