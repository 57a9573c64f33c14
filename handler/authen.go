package handler

import (
	"errors"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  time.Now().Add(12 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var input model.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	var existing model.User
	err := h.DB.Where("email = ?", input.Email).First(&existing).Error
	if err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
			"Email is already registered", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error checking email", err)
	}

	hashed, err := helper.HashPassword(input.Password)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error hashing password", err)
	}

	user := model.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Password:  hashed,
		Role:      model.RoleClient,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return utils.ErrorResponse(c, fiber.StatusConflict, constants.ERROR_CONFLICT,
				"Email is already registered", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error creating user", err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var input model.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	var user model.User
	if err := h.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED,
			"Invalid email or password", nil)
	}
	if !helper.CheckPasswordHash(input.Password, user.Password) {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED,
			"Invalid email or password", nil)
	}

	principal := model.Principal{UserID: user.ID, Role: user.Role, RestaurantID: user.RestaurantID}

	accessToken, err := helper.GenerateAccessToken(principal)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error generating token", err)
	}
	refreshToken, err := helper.GenerateRefreshToken(principal)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error generating token", err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// RefreshToken issues a fresh access token from a valid refresh token. The
// role and restaurant scope are re-read from the database so revoked staff
// lose access on refresh.
func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies("refresh_token")
	if token == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.BodyParser(&body); err == nil {
			token = body.RefreshToken
		}
	}
	if token == "" {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED,
			"Missing refresh token", nil)
	}

	jwtToken, err := helper.ParseToken(token)
	if err != nil || !jwtToken.Valid {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED,
			"Invalid refresh token", err)
	}
	principal, err := helper.PrincipalFromToken(jwtToken)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED,
			"Invalid token claims", err)
	}

	var user model.User
	if err := h.DB.First(&user, principal.UserID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED,
			"User no longer exists", nil)
	}

	fresh := model.Principal{UserID: user.ID, Role: user.Role, RestaurantID: user.RestaurantID}
	accessToken, err := helper.GenerateAccessToken(fresh)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error generating token", err)
	}
	refreshToken, err := helper.GenerateRefreshToken(fresh)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error generating token", err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return utils.SuccessResponse(c, fiber.StatusOK, model.TokenData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "access_token", Value: "", Expires: expired, HTTPOnly: true})
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: "", Expires: expired, HTTPOnly: true})
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Logged out"})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)

	var user model.User
	if err := h.DB.Preload("Address").First(&user, principal.UserID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "User not found", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, user)
}
