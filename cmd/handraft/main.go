package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"handraft-backend/internal/api"
	"handraft-backend/internal/docgen"
	"handraft-backend/internal/llm"
	"handraft-backend/internal/ratelimit"
	"handraft-backend/internal/render"
	"handraft-backend/internal/service"
	"handraft-backend/internal/storage"
	"handraft-backend/pkg/auth"
	"handraft-backend/pkg/config"
	"handraft-backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting handraft service")

	// Initialize storage
	store, err := storage.NewFileStore(cfg.Storage.DataDir, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize LLM client and domain services
	llmClient := llm.NewClient(&cfg.OpenAI, appLogger)
	generator := docgen.NewGenerator(llmClient, cfg.OpenAI.Model, appLogger)
	renderer := render.NewRenderer(appLogger)

	authService := service.NewAuthService(&cfg.Auth, jwtManager, appLogger)
	transcriptionService := service.NewTranscriptionService(llmClient, cfg.OpenAI.VisionModel, appLogger)
	documentService := service.NewDocumentService(llmClient, generator, renderer, store, cfg.OpenAI.Model, appLogger)

	limiter := ratelimit.NewLimiter()

	// Setup router
	app := api.SetupRouter(api.Deps{
		Config:        cfg,
		JWTManager:    jwtManager,
		AuthService:   authService,
		Transcription: transcriptionService,
		Documents:     documentService,
		Store:         store,
		Limiter:       limiter,
		Logger:        appLogger,
	})

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
