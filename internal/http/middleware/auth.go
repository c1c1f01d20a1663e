package middleware

import (
	"strings"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/http/util"
	"github.com/gofiber/fiber/v2"
)

const ownerIDKey = "owner_id"

// Auth validates the Bearer token and resolves the owner identity for
// downstream handlers. Requests without a valid token never reach the
// owner-scoped operations.
func Auth(tokens *util.TokenSigner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization header is required",
			})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization header must be in format: Bearer {token}",
			})
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals(ownerIDKey, claims.UserID)
		return c.Next()
	}
}

// OwnerID extracts the authenticated owner from the request context.
func OwnerID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(ownerIDKey).(uint)
	return id, ok
}
