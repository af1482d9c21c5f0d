package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"flat-backend/internal/auth"
)

// AuthMiddleware returns a Fiber middleware that validates JWT tokens
// and sets the UserContext on the request.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return UnauthorizedError("Missing auth token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return UnauthorizedError("Invalid auth header format")
		}

		claims, err := auth.ParseAccessToken(parts[1], secret)
		if err != nil {
			return UnauthorizedError("Invalid or expired token")
		}

		c.Locals("user", claims.User())
		return c.Next()
	}
}

// RequireAdmin checks the authenticated user has the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return UnauthorizedError("Missing auth token")
		}
		if !user.IsAdmin() {
			return ForbiddenError("Admin access required")
		}
		return c.Next()
	}
}

// GetUser extracts the UserContext from a Fiber context.
func GetUser(c *fiber.Ctx) *auth.UserContext {
	user, _ := c.Locals("user").(*auth.UserContext)
	return user
}
