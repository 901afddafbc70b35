package middleware

import (
	"atomgram-service/config"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWT verifies the access token and stores its claims on the context.
func JWT() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: "HS512",
			Key:    []byte(config.Config("JWT_ACCESS_KEY")),
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if err.Error() == "Missing or malformed JWT" {
				return deny(c, fiber.StatusBadRequest, "Missing or malformed JWT")
			}
			return deny(c, fiber.StatusUnauthorized, "Invalid or expired JWT")
		},
	})
}
