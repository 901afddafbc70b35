package controller

import (
	"context"
	"fmt"
	"log"
	"net/mail"

	"atomgram-service/config"
	"atomgram-service/database"
	"atomgram-service/errors"
	"atomgram-service/model"
	"atomgram-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

type AuthSignupInput struct {
	Username  string `json:"username" validate:"required,min=3,max=32"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"max=64"`
	LastName  string `json:"lastName" validate:"max=64"`
}

type AuthLoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthRenewTokenInput struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthOtpSecretInput struct {
	Password string `json:"password"`
}

type AuthOtpVerifyInput struct {
	Token string `json:"token"`
}

type AuthOtpValidateInput struct {
	Token string `json:"token"`
}

type AuthOtpDisableInput struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

func AuthSignup(c *fiber.Ctx) error {
	input := new(AuthSignupInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, "Review your input")
	}

	// If existed username is found, return error
	if _, err := Store.FindUserByUsername(input.Username); err == nil {
		return badRequest(c, "Username is already registered")
	}

	// Generate hash from password.
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), 14)
	if err != nil {
		return internalError(c)
	}

	// Generate OTP secret
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      config.Config("OTP_ISSUER"),
		AccountName: input.Email,
		SecretSize:  15,
	})
	if err != nil {
		return internalError(c)
	}

	user := &model.User{
		UserID:     utils.ShortID(),
		Username:   input.Username,
		Email:      input.Email,
		Password:   string(hash),
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Status:     model.StatusOffline,
		Role:       "user",
		Otp_secret: key.Secret(),
	}

	if err := Store.CreateUser(user); err != nil {
		return badRequest(c, "Username or email is already registered")
	}

	// Every account starts with its favorites self-chat
	if _, err := Messenger.EnsureFavoritesChat(user.UserID); err != nil {
		log.Printf("controller: failed to create favorites chat for %s: %v", user.UserID, err)
	}

	// Add casbin policy
	database.Casbin().AddGroupingPolicy(user.UserID, user.Role)

	return success(c, fiber.Map{
		"userId": user.UserID,
	})
}

func AuthSignin(c *fiber.Ctx) error {
	input := new(AuthLoginInput)
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Review your input")
	}

	userModel, err := new(model.User), *new(error)

	_, errParse := mail.ParseAddress(input.Login)
	if errParse == nil {
		err = database.Postgres.Where(&model.User{Email: input.Login}).First(&userModel).Error
	} else {
		userModel, err = Store.FindUserByUsername(input.Login)
	}

	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid login or password",
			"data":    nil,
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userModel.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid login or password",
			"data":    nil,
		})
	}

	// Generate JWT Access & Refresh tokens
	tokens, err := utils.GenerateTokens(userModel.UserID, userModel.DisplayName(), userModel.Otp_enabled)
	if err != nil {
		return internalError(c)
	}

	if err := database.Redis[0].Set(context.Background(), userModel.UserID, tokens.Refresh, 0).Err(); err != nil {
		return internalError(c)
	}

	return success(c, fiber.Map{
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
		"2fa":     userModel.Otp_enabled,
	})
}

func AuthTokenRenew(c *fiber.Ctx) error {
	renew := &AuthRenewTokenInput{}
	if err := c.BodyParser(renew); err != nil {
		return badRequest(c, "Review your input")
	}

	claims, err := utils.CheckAndExtractTokenMetadata(renew.RefreshToken, "JWT_REFRESH_KEY")
	if err != nil {
		return failure(c, errors.ErrUnauthenticated)
	}

	userToken, err := database.Redis[0].Get(context.Background(), claims.Id).Result()
	if err != nil {
		return internalError(c)
	}

	if userToken != renew.RefreshToken {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized, your refresh token was already used",
			"data":    nil,
		})
	}

	// Generate JWT Access & Refresh tokens
	tokens, err := utils.GenerateTokens(claims.Id, claims.Name, claims.Otp)
	if err != nil {
		return internalError(c)
	}

	// Save refresh token to Redis
	if err := database.Redis[0].Set(context.Background(), claims.Id, tokens.Refresh, 0).Err(); err != nil {
		return internalError(c)
	}

	return success(c, fiber.Map{
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
		"2fa":     claims.Otp,
	})
}

func AuthOtpSecret(c *fiber.Ctx) error {
	secret := &AuthOtpSecretInput{}
	if err := c.BodyParser(secret); err != nil {
		return badRequest(c, "Review your input")
	}

	userModel, err := Store.FindUserByID(identity(c).UserID)
	if err != nil {
		return failure(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userModel.Password), []byte(secret.Password)); err != nil {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid password",
			"data":    nil,
		})
	}

	return success(c, fiber.Map{
		"secret": userModel.Otp_secret,
		"url": fmt.Sprintf("otpauth://totp/%s:%s?algorithm=SHA1&digits=6&issuer=%s&period=30&secret=%s",
			config.Config("OTP_ISSUER"),
			userModel.Email,
			config.Config("OTP_ISSUER"),
			userModel.Otp_secret,
		),
	})
}

func AuthOtpVerify(c *fiber.Ctx) error {
	verify := &AuthOtpVerifyInput{}
	if err := c.BodyParser(verify); err != nil {
		return badRequest(c, "Review your input")
	}

	userModel, err := Store.FindUserByID(identity(c).UserID)
	if err != nil {
		return failure(c, err)
	}

	if userModel.Otp_enabled {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Verification has already been performed earlier",
			"data":    nil,
		})
	}

	valid := totp.Validate(verify.Token, userModel.Otp_secret)
	if !valid {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid token",
			"data":    nil,
		})
	}

	userModel.Otp_enabled = true
	if err := Store.SaveUser(userModel); err != nil {
		return internalError(c)
	}

	return success(c, nil)
}

func AuthOtpValidate(c *fiber.Ctx) error {
	input := &AuthOtpValidateInput{}
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}

	user := c.Locals("user").(*jwt.Token)
	claims := user.Claims.(jwt.MapClaims)

	userModel, err := Store.FindUserByID(claims["id"].(string))
	if err != nil {
		return failure(c, err)
	}

	if !userModel.Otp_enabled {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "2FA has been disabled",
			"data":    nil,
		})
	}

	valid := totp.Validate(input.Token, userModel.Otp_secret)
	if !valid {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid token",
			"data":    nil,
		})
	}

	// Generate JWT Access & Refresh tokens
	tokens, err := utils.GenerateTokens(userModel.UserID, userModel.DisplayName(), false)
	if err != nil {
		return internalError(c)
	}

	// Save refresh token to Redis
	if err := database.Redis[0].Set(context.Background(), userModel.UserID, tokens.Refresh, 0).Err(); err != nil {
		return internalError(c)
	}

	return success(c, fiber.Map{
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
	})
}

func AuthOtpDisable(c *fiber.Ctx) error {
	input := &AuthOtpDisableInput{}
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}

	userModel, err := Store.FindUserByID(identity(c).UserID)
	if err != nil {
		return failure(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userModel.Password), []byte(input.Password)); err != nil {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid password",
			"data":    nil,
		})
	}

	if !totp.Validate(input.Token, userModel.Otp_secret) {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid token",
			"data":    nil,
		})
	}

	userModel.Otp_enabled = false
	if err := Store.SaveUser(userModel); err != nil {
		return internalError(c)
	}

	return success(c, nil)
}
