package validate

import (
	"restaurant_manager/model"

	"github.com/gofiber/fiber/v2"
)

func UpdateOrderStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.OrderStatusInput
		if !parseBody(c, &input) {
			return nil
		}

		c.Locals("input", input)

		return c.Next()
	}
}

func UpdatePaymentStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.PaymentStatusInput
		if !parseBody(c, &input) {
			return nil
		}

		c.Locals("input", input)

		return c.Next()
	}
}
