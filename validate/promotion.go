package validate

import (
	"restaurant_manager/model"

	"github.com/gofiber/fiber/v2"
)

func CreatePromotion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreatePromotionInput
		if !parseBody(c, &input) {
			return nil
		}

		c.Locals("input", input)

		return c.Next()
	}
}

func UpdatePromotion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdatePromotionInput
		if !parseBody(c, &input) {
			return nil
		}

		c.Locals("input", input)

		return c.Next()
	}
}
