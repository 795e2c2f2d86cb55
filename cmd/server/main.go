package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/formpulse/backend/internal/config"
	"github.com/formpulse/backend/internal/middleware"
	"github.com/formpulse/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)

	svc := bootstrap(cfg)
	defer svc.shutdown()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS())

	registerRoutes(r, cfg, svc)

	// Stop schedulers and the worker cleanly on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info().Msg("Shutting down...")
		svc.shutdown()
		os.Exit(0)
	}()

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
