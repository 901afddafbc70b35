package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// OTP blocks tokens issued before 2FA validation. A token with the otp
// claim set only passes /v1/auth/2fa/validate.
func OTP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if pending, _ := claims(c)["otp"].(bool); pending {
			return deny(c, fiber.StatusBadRequest, "2FA required")
		}
		return c.Next()
	}
}
