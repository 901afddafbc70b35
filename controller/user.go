package controller

import (
	"strings"

	"atomgram-service/model"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type UserUpdateProfileInput struct {
	FirstName string `json:"firstName" validate:"max=64"`
	LastName  string `json:"lastName" validate:"max=64"`
	Email     string `json:"email" validate:"omitempty,email"`
	Status    string `json:"status" validate:"omitempty,oneof=online away busy"`
}

// userView strips credentials and overlays the live presence status.
func userView(user model.User) fiber.Map {
	status := user.Status
	if Presence != nil {
		status = Presence.Status(user.UserID)
	}
	return fiber.Map{
		"userId":    user.UserID,
		"username":  user.Username,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"fullName":  user.DisplayName(),
		"avatar":    user.Avatar,
		"status":    status,
		"lastSeen":  user.LastSeen,
	}
}

func UserProfile(c *fiber.Ctx) error {
	userModel, err := Store.FindUserByID(identity(c).UserID)
	if err != nil {
		return failure(c, err)
	}
	return success(c, userView(*userModel))
}

func UserUpdateProfile(c *fiber.Ctx) error {
	input := new(UserUpdateProfileInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, "Review your input")
	}

	userModel, err := Store.FindUserByID(identity(c).UserID)
	if err != nil {
		return failure(c, err)
	}

	if input.FirstName != "" {
		userModel.FirstName = input.FirstName
	}
	if input.LastName != "" {
		userModel.LastName = input.LastName
	}
	if input.Email != "" {
		userModel.Email = input.Email
	}

	if err := Store.SaveUser(userModel); err != nil {
		return internalError(c)
	}

	// Away/busy are explicit states, routed through the presence
	// registry so every contact list sees the change.
	if input.Status != "" {
		Presence.Set(userModel.UserID, input.Status)
	}

	return success(c, userView(*userModel))
}

func UserList(c *fiber.Ctx) error {
	users, err := Store.FindUsers()
	if err != nil {
		return internalError(c)
	}
	return success(c, lo.Map(users, func(u model.User, _ int) fiber.Map {
		return userView(u)
	}))
}

func UserSearch(c *fiber.Ctx) error {
	query := strings.ToLower(c.Query("q"))
	users, err := Store.FindUsers()
	if err != nil {
		return internalError(c)
	}

	matched := lo.Filter(users, func(u model.User, _ int) bool {
		return strings.Contains(strings.ToLower(u.Username), query) ||
			strings.Contains(strings.ToLower(u.DisplayName()), query)
	})

	return success(c, lo.Map(matched, func(u model.User, _ int) fiber.Map {
		return userView(u)
	}))
}

// UserAvatar accepts a multipart image, stores it and records the
// locator on the profile. Images only, capped at 5MB.
func UserAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return badRequest(c, "Avatar file is missing")
	}

	data, err := readMultipartFile(file)
	if err != nil {
		return internalError(c)
	}

	limits := avatarLimits()
	if _, err := limits.Validate(data); err != nil {
		return failure(c, err)
	}

	userModel, err := Store.FindUserByID(identity(c).UserID)
	if err != nil {
		return failure(c, err)
	}

	locator, err := Blobs.Put(data, file.Filename)
	if err != nil {
		return internalError(c)
	}

	if userModel.Avatar != "" {
		Blobs.Delete(userModel.Avatar)
	}
	userModel.Avatar = locator
	if err := Store.SaveUser(userModel); err != nil {
		return internalError(c)
	}

	return success(c, fiber.Map{"avatar": locator})
}
