package middleware

import (
	"atomgram-service/database"

	"github.com/gofiber/fiber/v2"
)

// RBAC enforces the casbin policy for the caller's user id against the
// requested URL and method.
func RBAC() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enforcer := database.Casbin()
		if err := enforcer.LoadPolicy(); err != nil {
			return deny(c, fiber.StatusInternalServerError, "Internal server error")
		}

		userID, _ := claims(c)["id"].(string)
		accepted, err := enforcer.Enforce(userID, c.OriginalURL(), c.Method())
		if err != nil {
			return deny(c, fiber.StatusInternalServerError, "Internal server error")
		}
		if !accepted {
			return deny(c, fiber.StatusForbidden, "Unauthorized")
		}

		return c.Next()
	}
}
