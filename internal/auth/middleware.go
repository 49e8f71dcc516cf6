package auth

import (
	"strings"

	userdomain "github.com/artsense/artsense-server/internal/user/domain"
	"github.com/gofiber/fiber/v2"
)

const emailLocalKey = "auth_email"

// RequireAuth validates the Bearer token and stores the caller's email in the
// request locals.
func RequireAuth(issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "unauthorized access"})
		}
		parts := strings.SplitN(authorization, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "unauthorized access"})
		}
		email, err := issuer.Verify(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "unauthorized access"})
		}
		c.Locals(emailLocalKey, email)
		return c.Next()
	}
}

// CallerEmail returns the authenticated email set by RequireAuth, or "".
func CallerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(emailLocalKey).(string)
	return email
}

// RequireAdmin looks the caller up and rejects non-admins. Use after
// RequireAuth.
func RequireAdmin(users userdomain.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := users.GetByEmail(c.Context(), CallerEmail(c))
		if err != nil || user == nil || user.Role != userdomain.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": true, "message": "forbidden access"})
		}
		return c.Next()
	}
}
