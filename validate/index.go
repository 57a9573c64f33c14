package validate

import (
	"strconv"

	"restaurant_manager/constants"
	"restaurant_manager/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// GetById parses the named route param as a numeric id and stores it in
// Locals under "inputId".
func GetById(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Params(key)
		valueKey, err := strconv.Atoi(params)
		if err != nil || valueKey <= 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
				"Invalid id parameter", err)
		}

		c.Locals("inputId", valueKey)

		return c.Next()
	}
}

// parseBody parses and validates the request body into input. Returns false
// after writing the error response; callers must stop the chain on false.
func parseBody(c *fiber.Ctx, input interface{}) bool {
	if err := c.BodyParser(input); err != nil {
		utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Cannot parse request body", err)
		return false
	}
	if err := validate.Struct(input); err != nil {
		utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST, err.Error(), nil)
		return false
	}
	return true
}
