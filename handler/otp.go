package handler

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	otpTTL         = 5 * time.Minute
	otpResendDelay = time.Minute
)

func otpKey(phone, purpose string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, phone)
}

func otpCooldownKey(phone, purpose string) string {
	return fmt.Sprintf("otp:cooldown:%s:%s", purpose, phone)
}

func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendOtp issues a 6-digit code, stores it in redis with a 5 minute TTL and
// dispatches it through the SMS collaborator. Resends are rate limited per
// phone and purpose.
func (h *Handler) SendOtp(c *fiber.Ctx) error {
	var input model.SendOtpInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	ctx := c.Context()

	set, err := h.Redis.SetNX(ctx, otpCooldownKey(input.Phone, input.Purpose), "1", otpResendDelay).Result()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error issuing code", err)
	}
	if !set {
		return utils.ErrorResponse(c, fiber.StatusTooManyRequests, constants.ERROR_CONFLICT,
			"A code was sent recently. Please wait before requesting another.", nil)
	}

	code, err := generateOtpCode()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error generating code", err)
	}

	if err := h.Redis.Set(ctx, otpKey(input.Phone, input.Purpose), code, otpTTL).Err(); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error storing code", err)
	}

	if err := h.Sms.SendOtp(input.Phone, code, input.Purpose); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error sending code", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"message":   "Verification code sent",
		"expiresIn": int(otpTTL.Seconds()),
	})
}

// VerifyOtp checks a submitted code against the stored one. Codes are single
// use: a match deletes the key.
func (h *Handler) VerifyOtp(c *fiber.Ctx) error {
	var input model.VerifyOtpInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
	}

	ctx := c.Context()

	stored, err := h.Redis.Get(ctx, otpKey(input.Phone, input.Purpose)).Result()
	if err == redis.Nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Code expired or not found", nil)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error verifying code", err)
	}

	if stored != input.Code {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Invalid verification code", nil)
	}

	h.Redis.Del(ctx, otpKey(input.Phone, input.Purpose))

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"verified": true})
}
