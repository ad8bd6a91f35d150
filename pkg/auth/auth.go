package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/router"
)

// UserAuth validates the JWT Bearer token on every request.
// Token format: "Bearer <jwt_token>"
func UserAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if header == "" {
			return router.ResponseUnauthorized(c, "Missing Authorization header")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return router.ResponseUnauthorized(c, "Invalid Authorization header format. Use: Bearer <token>")
		}

		claims, err := ValidateUserToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return router.ResponseUnauthorized(c, "Invalid or expired token")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("jwt_version", claims.JWTVersion)
		return c.Next()
	}
}
