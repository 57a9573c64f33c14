package handler

import (
	"restaurant_manager/constants"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// GetRestaurantDishes lists a restaurant's catalog. Public; inactive dishes
// are hidden unless the caller is staff of that restaurant.
func (h *Handler) GetRestaurantDishes(c *fiber.Ctx) error {
	restaurantId := uint(c.Locals("inputId").(int))

	query := h.DB.Where("restaurant_id = ?", restaurantId).Order("name asc")

	principal, ok := helper.GetPrincipal(c)
	staffView := ok && principal.IsStaff() && principal.CanAccessRestaurant(restaurantId)
	if !staffView {
		query = query.Where("status = ?", constants.StatusActive)
	}
	if categoryId := c.QueryInt("categoryId", 0); categoryId > 0 {
		query = query.Where("category_id = ?", categoryId)
	}
	if c.QueryBool("availableOnly", false) {
		query = query.Where("is_available = ?", true)
	}

	var dishes model.Dishes
	if err := query.Find(&dishes).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading dishes", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, dishes)
}

func (h *Handler) GetDish(c *fiber.Ctx) error {
	dishId := c.Locals("inputId").(int)

	var dish model.Dish
	if err := h.DB.Preload("Category").First(&dish, dishId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Dish not found", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, dish)
}

// UpdateDishStock sets quantity and availability directly. Setting quantity
// to zero clears availability; restocking above zero restores it unless the
// caller pinned isAvailable explicitly.
func (h *Handler) UpdateDishStock(c *fiber.Ctx) error {
	principal, _ := helper.GetPrincipal(c)
	dishId := c.Locals("inputId").(int)
	input := c.Locals("input").(model.UpdateDishStockInput)

	var dish model.Dish
	if err := h.DB.First(&dish, dishId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ERROR_NOT_FOUND, "Dish not found", err)
	}

	if !principal.CanAccessRestaurant(dish.RestaurantID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
			"You can only manage dishes of your own restaurant", nil)
	}

	updates := map[string]interface{}{}
	if input.Quantity != nil {
		updates["quantity"] = *input.Quantity
		updates["is_available"] = *input.Quantity > 0
	}
	if input.IsAvailable != nil {
		updates["is_available"] = *input.IsAvailable
	}
	if len(updates) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INVALID_REQUEST,
			"Nothing to update", nil)
	}

	if err := h.DB.Model(&dish).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error updating dish stock", err)
	}

	var updated model.Dish
	if err := h.DB.First(&updated, dish.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL,
			"Error loading dish", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, updated)
}
