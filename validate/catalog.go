package validate

import (
	"restaurant_manager/model"

	"github.com/gofiber/fiber/v2"
)

func UpdateDishStock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdateDishStockInput
		if !parseBody(c, &input) {
			return nil
		}

		c.Locals("input", input)

		return c.Next()
	}
}

func UpdateIngredientStock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdateIngredientStockInput
		if !parseBody(c, &input) {
			return nil
		}

		c.Locals("input", input)

		return c.Next()
	}
}

func UpdateReservationStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.ReservationStatusInput
		if !parseBody(c, &input) {
			return nil
		}

		c.Locals("input", input)

		return c.Next()
	}
}
