package middleware

import (
	"strings"

	"github.com/GSMS-B/ProjectQR/internal/app/service"
	"github.com/gofiber/fiber/v2"
)

// AccountIDKey is the locals key carrying the authenticated account id.
const AccountIDKey = "account_id"

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(tokens service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals(AccountIDKey, claims.AccountID)
		return c.Next()
	}
}

// OptionalAuth attaches the account id when a valid token is present but
// lets anonymous requests through.
func OptionalAuth(tokens service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if claims, err := tokens.ValidateToken(token); err == nil {
				c.Locals(AccountIDKey, claims.AccountID)
			}
		}
		return c.Next()
	}
}

// AccountID returns the authenticated account id, empty when anonymous.
func AccountID(c *fiber.Ctx) string {
	if id, ok := c.Locals(AccountIDKey).(string); ok {
		return id
	}
	return ""
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
