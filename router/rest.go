package router

import (
	"atomgram-service/controller"
	"atomgram-service/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func Rest(app *fiber.App) {
	api := app.Group("/v1", logger.New())

	// Auth
	auth := api.Group("/auth")
	auth.Post("/signup", controller.AuthSignup)
	auth.Post("/signin", controller.AuthSignin)
	auth.Post("/token/renew", controller.AuthTokenRenew)
	auth.Post("/2fa/secret", middleware.JWT(), middleware.OTP(), controller.AuthOtpSecret)
	auth.Post("/2fa/verify", middleware.JWT(), middleware.OTP(), controller.AuthOtpVerify)
	auth.Post("/2fa/validate", middleware.JWT(), controller.AuthOtpValidate)
	auth.Post("/2fa/disable", middleware.JWT(), middleware.OTP(), controller.AuthOtpDisable)

	// User
	user := api.Group("/user", middleware.JWT(), middleware.OTP())
	user.Get("/profile", controller.UserProfile)
	user.Put("/profile", controller.UserUpdateProfile)
	user.Get("/list", controller.UserList)
	user.Get("/search", controller.UserSearch)
	user.Post("/avatar", controller.UserAvatar)

	// Messenger
	messenger := api.Group("/messenger", middleware.JWT(), middleware.OTP())
	messenger.Get("/chats", controller.MessengerChats)
	messenger.Get("/chats/:id", controller.MessengerChat)
	messenger.Post("/chats/private", controller.MessengerCreatePrivateChat)
	messenger.Post("/chats/group", controller.MessengerCreateGroupChat)
	messenger.Get("/messages/:chatId", controller.MessengerMessages)
	messenger.Post("/upload", controller.MessengerUpload)
	api.Get("/uploads/:name", controller.MessengerFile)

	// Admin
	admin := api.Group("/admin", middleware.JWT(), middleware.OTP(), middleware.RBAC())
	admin.Post("/files/cleanup", controller.AdminFilesCleanup)
}
