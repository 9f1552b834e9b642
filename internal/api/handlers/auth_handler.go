package handlers

import (
	"errors"

	"handraft-backend/internal/dto"
	"handraft-backend/internal/ratelimit"
	"handraft-backend/internal/service"
	"handraft-backend/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	limiter     *ratelimit.Limiter
	loginLimit  int
	trustProxy  bool
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, limiter *ratelimit.Limiter, loginLimit int, trustProxy bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		limiter:     limiter,
		loginLimit:  loginLimit,
		trustProxy:  trustProxy,
		logger:      logger,
	}
}

// Login exchanges the shared password for a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	ip := middleware.ClientIP(c, h.trustProxy)
	if err := h.limiter.Check(ip, "login", h.loginLimit); err != nil {
		return err
	}

	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation, "Invalid request body")
	}
	if req.Password == "" {
		return dto.NewAPIError(fiber.StatusUnprocessableEntity, dto.ErrCodeValidation, "body.password: Field required")
	}

	resp, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return dto.NewAPIError(fiber.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid password")
		}
		h.logger.Error("login failed", zap.Error(err))
		return err
	}

	return c.JSON(resp)
}
