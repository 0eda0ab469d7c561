package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/services"
	"github.com/JaiminPatel345/make-my-buddy/internal/token"
)

// UsernameKey is where the auth middleware stashes the resolved acting
// username. Handlers read it once and pass it down as an explicit argument.
const UsernameKey = "username"

// Auth resolves the bearer token to a username. Missing, malformed, expired
// and tampered tokens all produce the same 401 envelope.
func Auth(tokens *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(models.Fail("Authentication required"))
		}

		username, err := tokens.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.Fail("Authentication required"))
		}

		c.Locals(UsernameKey, username)
		return c.Next()
	}
}

// AdminOnly loads the acting user and requires the admin flag. Runs after
// Auth.
func AdminOnly(dir *services.UserDirectory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, _ := c.Locals(UsernameKey).(string)
		if username == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.Fail("Authentication required"))
		}

		user, err := dir.FindByUsername(c.Context(), username)
		if err != nil {
			return err
		}
		if !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(models.Fail("Admin access required"))
		}
		return c.Next()
	}
}

// Username returns the acting username set by Auth.
func Username(c *fiber.Ctx) string {
	username, _ := c.Locals(UsernameKey).(string)
	return username
}
