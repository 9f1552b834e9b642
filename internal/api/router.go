package api

import (
	"errors"
	"strconv"

	"handraft-backend/internal/api/handlers"
	"handraft-backend/internal/docgen"
	"handraft-backend/internal/dto"
	"handraft-backend/internal/llm"
	"handraft-backend/internal/ratelimit"
	"handraft-backend/internal/service"
	"handraft-backend/internal/storage"
	"handraft-backend/pkg/auth"
	"handraft-backend/pkg/config"
	"handraft-backend/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// Deps carries everything the router needs; main wires it up.
type Deps struct {
	Config        *config.Config
	JWTManager    *auth.JWTManager
	AuthService   *service.AuthService
	Transcription *service.TranscriptionService
	Documents     *service.DocumentService
	Store         *storage.FileStore
	Limiter       *ratelimit.Limiter
	Logger        *zap.Logger
}

func SetupRouter(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "handraft-backend",
		BodyLimit:    deps.Config.Limits.MaxRequestBytes,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		ErrorHandler: errorHandler(deps.Logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestLogging(deps.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	cfg := deps.Config
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Limiter,
		cfg.RateLimit.LoginPerMinute, cfg.Auth.TrustProxy, deps.Logger)
	transcribeHandler := handlers.NewTranscribeHandler(deps.Transcription, deps.Store,
		cfg.Limits.MaxUploadPages, deps.Logger)
	proposalHandler := handlers.NewProposalHandler(deps.Documents, deps.Limiter,
		cfg.RateLimit.GeneratePerMinute, cfg.Auth.TrustProxy, deps.Logger)
	historyHandler := handlers.NewHistoryHandler(deps.Documents, deps.Logger)
	savesHandler := handlers.NewSavesHandler(deps.Store, deps.Logger)

	authRequired := middleware.AuthMiddleware(deps.JWTManager, deps.Logger)
	adminOnly := middleware.RequireAdmin()

	api := app.Group("/api")
	api.Post("/auth/login", authHandler.Login)

	transcribe := api.Group("/transcribe", authRequired)
	transcribe.Post("/upload", transcribeHandler.Upload)

	proposals := api.Group("/proposals", authRequired)
	proposals.Post("/generate", proposalHandler.Generate)
	proposals.Get("/download/:session_id", proposalHandler.Download)

	// "/list" is registered before the ":session_id" wildcard on purpose.
	history := api.Group("/history", authRequired)
	history.Get("/list", adminOnly, historyHandler.List)
	history.Get("/:session_id", historyHandler.Get)
	history.Delete("/:session_id", adminOnly, historyHandler.Delete)

	saves := api.Group("/admin-saves", authRequired)
	saves.Get("/:kind/:entity_id", savesHandler.Get)
	saves.Put("/:kind/:entity_id", savesHandler.Put)

	return app
}

// errorHandler renders every error as the stable envelope. Domain error types
// map to fixed status codes; anything unrecognized becomes a 500 and the
// original error stays in the logs only.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID := middleware.RequestID(c)

		var apiErr *dto.APIError
		if errors.As(err, &apiErr) {
			return c.Status(apiErr.Status).JSON(dto.NewErrorEnvelope(apiErr.Code, apiErr.Message, requestID))
		}

		var rateErr *ratelimit.Error
		if errors.As(err, &rateErr) {
			c.Set("Retry-After", strconv.Itoa(rateErr.RetryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(
				dto.NewErrorEnvelope(dto.ErrCodeRateLimited, rateErr.Error(), requestID))
		}

		var schemaErr *docgen.SchemaValidationError
		if errors.As(err, &schemaErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(
				dto.NewErrorEnvelope(dto.ErrCodeSchemaValidationFailed, schemaErr.Error(), requestID))
		}

		var upstreamErr *llm.UpstreamError
		if errors.As(err, &upstreamErr) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(
				dto.NewErrorEnvelope(dto.ErrCodeUpstreamUnavailable, upstreamErr.Error(), requestID))
		}

		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(
				dto.NewErrorEnvelope(dto.ErrCodeNotFound, "Session or document not found", requestID))
		}
		if errors.Is(err, storage.ErrInvalidID) {
			return c.Status(fiber.StatusBadRequest).JSON(
				dto.NewErrorEnvelope(dto.ErrCodeValidation, "Invalid identifier", requestID))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code := dto.ErrCodeValidation
			switch fiberErr.Code {
			case fiber.StatusRequestEntityTooLarge:
				code = dto.ErrCodePayloadTooLarge
			case fiber.StatusNotFound:
				code = dto.ErrCodeNotFound
			case fiber.StatusUnauthorized:
				code = dto.ErrCodeUnauthorized
			case fiber.StatusForbidden:
				code = dto.ErrCodeForbidden
			}
			if fiberErr.Code >= fiber.StatusInternalServerError {
				code = dto.ErrCodeInternal
			}
			return c.Status(fiberErr.Code).JSON(
				dto.NewErrorEnvelope(code, fiberErr.Message, requestID))
		}

		logger.Error("unhandled error",
			zap.String("request_id", requestID),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			dto.NewErrorEnvelope(dto.ErrCodeInternal, "Internal server error", requestID))
	}
}
