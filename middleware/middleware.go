// Package middleware carries the request gates of the REST surface:
// JWT verification, the 2FA-pending block and casbin RBAC.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// claims returns the token claims placed by the JWT middleware.
func claims(c *fiber.Ctx) jwt.MapClaims {
	token := c.Locals("user").(*jwt.Token)
	return token.Claims.(jwt.MapClaims)
}

// deny answers with the error envelope shared across the surface.
func deny(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}
