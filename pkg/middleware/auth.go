package middleware

import (
	"strings"

	"handraft-backend/internal/dto"
	"handraft-backend/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const LevelKey = "authLevel"

// AuthMiddleware validates the bearer token and stores the access level in
// Locals. Failures go through the app error handler so clients get the
// standard envelope.
func AuthMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(fiber.HeaderAuthorization)
		if token == "" {
			return dto.NewAPIError(fiber.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authorization token required")
		}

		parts := strings.Fields(token)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return dto.NewAPIError(fiber.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid authorization header")
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			logger.Warn("invalid token", zap.Error(err))
			return dto.NewAPIError(fiber.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid or expired token")
		}

		c.Locals(LevelKey, claims.Level)
		return c.Next()
	}
}

// RequireAdmin gates admin-only routes; it runs after AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if level, _ := c.Locals(LevelKey).(string); level != auth.LevelAdmin {
			return dto.NewAPIError(fiber.StatusForbidden, dto.ErrCodeForbidden, "Admin access required")
		}
		return c.Next()
	}
}

// ClientIP resolves the caller address, honoring the first X-Forwarded-For
// hop when proxy headers are trusted.
func ClientIP(c *fiber.Ctx, trustProxy bool) string {
	if trustProxy {
		if xff := c.Get("X-Forwarded-For"); xff != "" {
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}
