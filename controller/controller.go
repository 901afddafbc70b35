package controller

import (
	"atomgram-service/blob"
	"atomgram-service/errors"
	"atomgram-service/messenger"
	"atomgram-service/presence"
	"atomgram-service/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	Store     store.Store
	Messenger *messenger.Service
	Presence  *presence.Registry
	Blobs     *blob.Store

	validate = validator.New()
)

// Init wires the controllers to the core singletons.
func Init(st store.Store, svc *messenger.Service, reg *presence.Registry, blobs *blob.Store) {
	Store = st
	Messenger = svc
	Presence = reg
	Blobs = blobs
}

// identity extracts the authenticated identity placed by the JWT
// middleware. REST calls carry no live session, so echo suppression
// does not apply to them.
func identity(c *fiber.Ctx) messenger.Identity {
	user := c.Locals("user").(*jwt.Token)
	claims := user.Claims.(jwt.MapClaims)
	name, _ := claims["name"].(string)
	return messenger.Identity{
		UserID: claims["id"].(string),
		Name:   name,
	}
}

func success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    data,
	})
}

func failure(c *fiber.Ctx, err error) error {
	return c.Status(errors.Status(err)).JSON(fiber.Map{
		"status":  "error",
		"message": err.Error(),
		"data":    nil,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  "error",
		"message": "Internal server error",
		"data":    nil,
	})
}
